package sql

const saveRecordQuery = `
INSERT INTO benchmark_records (
    run_id, competitor, route, origin, destination,
    quoted_amount, direct_rate, inverse_rate,
    source, confidence, status, observed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (run_id, competitor, route) DO UPDATE SET
    quoted_amount = EXCLUDED.quoted_amount,
    direct_rate   = EXCLUDED.direct_rate,
    inverse_rate  = EXCLUDED.inverse_rate,
    source        = EXCLUDED.source,
    confidence    = EXCLUDED.confidence,
    status        = EXCLUDED.status,
    observed_at   = EXCLUDED.observed_at
`

const listRecordsQuery = `
SELECT run_id, competitor, route, quoted_amount, direct_rate, inverse_rate,
       source, confidence, status, observed_at,
       COUNT(*) OVER () AS total
FROM benchmark_records
WHERE ($1::TEXT IS NULL OR competitor = $1)
  AND ($2::TEXT IS NULL OR route = $2)
  AND ($3::TEXT IS NULL OR status = $3)
  AND ($4::TEXT IS NULL OR run_id = $4)
ORDER BY observed_at DESC, competitor, route
LIMIT $5 OFFSET $6
`

const listCompetitorsQuery = `
SELECT DISTINCT competitor
FROM benchmark_records
ORDER BY competitor
`

const listRoutesQuery = `
SELECT DISTINCT route
FROM benchmark_records
ORDER BY route
`
