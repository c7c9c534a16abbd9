package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

var errDriverPanic = errors.New("driver panicked")

// Run is the result of a single benchmark run
type Run struct {
	StartedAt time.Time
	Records   []*types.BenchmarkRecord
	ID        xid.ID
}

// Runner executes benchmark runs over competitor drivers.
// Competitors and their routes are processed strictly one after the other
type Runner struct {
	engine  *extract.Engine
	logger  *slog.Logger
	now     func() time.Time
	amounts currencies.Amounts
}

// NewRunner creates a new benchmark runner
func NewRunner(engine *extract.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:  engine,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		amounts: currencies.DefaultAmounts(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run benchmarks all the given drivers, under a single run ID.
// Exactly one record is produced per (driver, route)
func (r *Runner) Run(ctx context.Context, drivers []Driver) *Run {
	run := &Run{
		ID:        xid.New(),
		StartedAt: r.now().UTC(),
	}

	r.logger.Info(
		"starting benchmark run",
		"run_id", run.ID.String(),
		"competitors", len(drivers),
	)

	for _, d := range drivers {
		run.Records = append(run.Records, r.RunDriver(ctx, run.ID, d)...)
	}

	var failed int

	for _, record := range run.Records {
		if record.Status == types.StatusFailed {
			failed++
		}
	}

	r.logger.Info(
		"benchmark run complete",
		"run_id", run.ID.String(),
		"records", len(run.Records),
		"failed", failed,
	)

	return run
}

// RunDriver benchmarks every route of a single driver
func (r *Runner) RunDriver(ctx context.Context, runID xid.ID, d Driver) []*types.BenchmarkRecord {
	routes := d.Routes()
	records := make([]*types.BenchmarkRecord, 0, len(routes))

	for _, route := range routes {
		request := types.QuoteRequest{
			Route:  route,
			Amount: r.amounts.For(route.Origin),
		}

		result := r.observe(ctx, d, request)

		record := types.NewBenchmarkRecord(
			runID,
			d.Name(),
			request,
			result.Rate,
			r.now(),
		)

		record.Source = result.Source.String()
		record.Confidence = result.Confidence.String()

		r.logger.Info(
			"benchmarked route",
			"competitor", d.Name(),
			"route", route.String(),
			"amount", request.Amount,
			"rate", record.DirectRate,
			"source", record.Source,
			"status", record.Status.String(),
		)

		records = append(records, record)
	}

	return records
}

// observe fetches and extracts a single route, isolating driver failures
func (r *Runner) observe(
	ctx context.Context,
	d Driver,
	request types.QuoteRequest,
) (result extract.RateResult) {
	result = extract.Failed()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(
				"unable to observe quote",
				"competitor", d.Name(),
				"route", request.Route.String(),
				"err", fmt.Errorf("%w: %v", errDriverPanic, p),
			)

			result = extract.Failed()
		}
	}()

	if err := ctx.Err(); err != nil {
		r.logger.Warn(
			"skipping quote, run canceled",
			"competitor", d.Name(),
			"route", request.Route.String(),
		)

		return result
	}

	observations, err := d.Observe(ctx, request)
	if err != nil {
		r.logger.Error(
			"unable to observe quote",
			"competitor", d.Name(),
			"route", request.Route.String(),
			"err", err,
		)

		return result
	}

	qc := extract.QuoteContext{
		Route:  request.Route,
		Amount: request.Amount,
	}

	return r.engine.ExtractFirst(qc, observations...)
}
