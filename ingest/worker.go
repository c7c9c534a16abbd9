package ingest

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/fxbench/bench"
	"github.com/sig-0/fxbench/storage/types"
)

// scheduledRun is a single scheduled competitor benchmark job
type scheduledRun struct {
	at           time.Time
	competitor   Competitor
	competitorID xid.ID
}

// Less is utilized to sort scheduled runs by their due-time (earliest == first)
func (a scheduledRun) Less(b scheduledRun) bool {
	return a.at.Before(b.at)
}

// workerInfo is the work context for the benchmark routine
type workerInfo struct {
	runner       *bench.Runner
	competitor   Competitor
	resCh        chan<- *workerResponse
	competitorID xid.ID
}

// workerResponse is the benchmark routine response
type workerResponse struct {
	records      []*types.BenchmarkRecord // the produced records, one per route
	competitorID xid.ID                   // the competitor ID
	runID        xid.ID                   // the run ID shared by the records
}

// handleJob benchmarks every route of the competitor, under a fresh run ID
func handleJob(
	ctx context.Context,
	info *workerInfo,
) {
	runID := xid.New()

	response := &workerResponse{
		records:      info.runner.RunDriver(ctx, runID, info.competitor),
		competitorID: info.competitorID,
		runID:        runID,
	}

	select {
	case <-ctx.Done():
	case info.resCh <- response:
	}
}

// allFailed returns true if the job produced records, and none of them are OK
func (r *workerResponse) allFailed() bool {
	if len(r.records) == 0 {
		return false
	}

	for _, record := range r.records {
		if record.Status == types.StatusOK {
			return false
		}
	}

	return true
}
