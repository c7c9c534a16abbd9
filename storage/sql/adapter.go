package sql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/xid"

	"github.com/sig-0/fxbench/storage/types"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// DBTX is the subset of the pgx API the storage needs.
// It is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) SaveRecord(
	ctx context.Context,
	record *types.BenchmarkRecord,
) error {
	values := make([]pgtype.Numeric, 0, 3)

	for _, f := range []float64{record.QuotedAmount, record.DirectRate, record.InverseRate} {
		n, err := floatToNumeric(f)
		if err != nil {
			return fmt.Errorf("unable to encode benchmark record: %w", err)
		}

		values = append(values, n)
	}

	_, err := s.db.Exec(
		ctx,
		saveRecordQuery,
		record.RunID.String(),
		record.Competitor,
		record.Route.String(),
		record.Route.Origin.String(),
		record.Route.Destination.String(),
		values[0],
		values[1],
		values[2],
		record.Source,
		record.Confidence,
		record.Status.String(),
		timeToTimestampz(record.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("unable to save benchmark record: %w", err)
	}

	return nil
}

func (s *Storage) ListRecords(
	ctx context.Context,
	query *types.RecordQuery,
) (*types.Page[*types.BenchmarkRecord], error) {
	var (
		route, status, runID *string
		limit                = query.Limit
		offset               = max(query.Offset, 0)
	)

	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	if query.Route != nil {
		r := query.Route.String()
		route = &r
	}

	if query.Status != nil {
		st := query.Status.String()
		status = &st
	}

	if query.RunID != nil {
		id := query.RunID.String()
		runID = &id
	}

	rows, err := s.db.Query(
		ctx,
		listRecordsQuery,
		query.Competitor,
		route,
		status,
		runID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch benchmark records: %w", err)
	}
	defer rows.Close()

	var (
		items = make([]*types.BenchmarkRecord, 0)
		total int64
	)

	for rows.Next() {
		var (
			rawRunID, rawRoute, rawStatus string
			amount, direct, inverse      pgtype.Numeric
			observedAt                   pgtype.Timestamptz

			record types.BenchmarkRecord
		)

		if err = rows.Scan(
			&rawRunID,
			&record.Competitor,
			&rawRoute,
			&amount,
			&direct,
			&inverse,
			&record.Source,
			&record.Confidence,
			&rawStatus,
			&observedAt,
			&total,
		); err != nil {
			return nil, fmt.Errorf("unable to scan benchmark record: %w", err)
		}

		if record.RunID, err = xid.FromString(rawRunID); err != nil {
			return nil, fmt.Errorf("unable to parse run id %q: %w", rawRunID, err)
		}

		if record.Route, err = types.ParseRoute(rawRoute); err != nil {
			return nil, fmt.Errorf("unable to parse route %q: %w", rawRoute, err)
		}

		record.QuotedAmount = numericToFloat(amount)
		record.DirectRate = numericToFloat(direct)
		record.InverseRate = numericToFloat(inverse)
		record.Status = types.Status(rawStatus)
		record.Timestamp = timestampzToTime(observedAt)

		items = append(items, &record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to fetch benchmark records: %w", err)
	}

	if len(items) == 0 {
		return &types.Page[*types.BenchmarkRecord]{
			Results: nil,
			Total:   0,
		}, nil // valid case
	}

	return &types.Page[*types.BenchmarkRecord]{
		Results: items,
		Total:   total,
	}, nil
}

func (s *Storage) ListCompetitors(ctx context.Context) ([]string, error) {
	results, err := collectStrings(ctx, s.db, listCompetitorsQuery)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch competitors: %w", err)
	}

	return results, nil
}

func (s *Storage) ListRoutes(ctx context.Context) ([]types.Route, error) {
	results, err := collectStrings(ctx, s.db, listRoutesQuery)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch routes: %w", err)
	}

	out := make([]types.Route, 0, len(results))

	for _, raw := range results {
		r, err := types.ParseRoute(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse route %q: %w", raw, err)
		}

		out = append(out, r)
	}

	return out, nil
}

// collectStrings runs a single-column text query
func collectStrings(ctx context.Context, db DBTX, query string) ([]string, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// floatToNumeric converts the float value to postgres numeric.
// The shortest decimal form is stored, so the value reads back unchanged
func floatToNumeric(value float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric

	if err := n.Scan(strconv.FormatFloat(value, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("unable to convert %v to numeric: %w", value, err)
	}

	return n, nil
}

// numericToFloat converts the postgres value to float
func numericToFloat(value pgtype.Numeric) float64 {
	f, err := value.Float64Value()
	if err != nil || !f.Valid {
		return 0
	}

	return f.Float64
}

// timeToTimestampz converts the time value to postgres timestamp
func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}

// timestampzToTime converts the postgres timestamp value to time
func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time.UTC()
}
