package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/sig-0/fxbench/bench"
	"github.com/sig-0/fxbench/storage"
)

var (
	errInvalidCompetitor = errors.New("invalid competitor")
	errInvalidInterval   = errors.New("invalid interval")
)

const (
	defaultRetryInterval = 10 * time.Second
	saveTimeout          = 10 * time.Second
)

// Orchestrator is the periodic benchmark scheduler for registered competitors.
// Due jobs are executed one at a time
type Orchestrator struct {
	storage storage.Storage
	runner  *bench.Runner
	logger  *slog.Logger

	registeredCompetitors sync.Map

	q             iq.Queue[scheduledRun]
	queryInterval time.Duration
	retryInterval time.Duration
	qMux          sync.Mutex
}

// New creates a new Orchestrator instance
func New(storage storage.Storage, runner *bench.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:       storage,
		runner:        runner,
		q:             iq.NewQueue[scheduledRun](),
		queryInterval: time.Second, // every second
		retryInterval: defaultRetryInterval,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new competitor with the orchestrator.
// The competitor is immediately queued up for execution
func (o *Orchestrator) Register(c Competitor) error {
	if c == nil || c.Name() == "" {
		return errInvalidCompetitor
	}

	if c.Interval() <= 0 {
		return errInvalidInterval
	}

	// Register the competitor
	id := xid.New()
	o.registeredCompetitors.Store(id, c)

	o.logger.Info(
		"registered new competitor",
		"name", c.Name(),
		"routes", len(c.Routes()),
		"interval", c.Interval().String(),
	)

	// Schedule the job
	o.scheduleRun(
		time.Now().UTC(),
		id,
		c,
	)

	return nil
}

// Start starts the benchmark orchestration service loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, 1)

	// Start a listener for monitoring jobs
	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// busy is only touched by the loop goroutine
	var busy bool

	// handleRun starts the next due job, if no job is in flight
	handleRun := func() {
		if busy || ctx.Err() != nil {
			return
		}

		next := o.nextRun()
		if next == nil {
			return // nothing due
		}

		o.logger.Info(
			"scheduling benchmark",
			"name", next.competitor.Name(),
		)

		// Spawn worker
		info := &workerInfo{
			runner:       o.runner,
			competitor:   next.competitor,
			competitorID: next.competitorID,
			resCh:        collectorCh,
		}

		busy = true

		go handleJob(ctx, info)
	}

	// Start the first due job (on boot)
	handleRun()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator service shut down")

			return nil
		case <-ticker.C:
			handleRun()
		case response := <-collectorCh:
			busy = false

			now := time.Now().UTC()

			rcRaw, ok := o.registeredCompetitors.Load(response.competitorID)
			if !ok {
				o.logger.Error(
					"unable to load registered competitor",
					"id", response.competitorID.String(),
				)

				continue
			}

			rc, _ := rcRaw.(Competitor)

			// Save the benchmark records
			o.saveRecords(ctx, response)

			// Schedule the next benchmark for this competitor
			next := now.Add(rc.Interval())

			if response.allFailed() {
				o.logger.Error(
					"every route failed during benchmark",
					"name", rc.Name(),
					"run_id", response.runID.String(),
				)

				// Retry soon, but never later than the regular run
				if retry := now.Add(o.retryInterval); retry.Before(next) {
					next = retry
				}
			}

			o.scheduleRun(
				next,
				response.competitorID,
				rc,
			)

			// Pick up any job that became due while this one ran
			handleRun()
		}
	}
}

// saveRecords persists the records of a finished job.
// A failed save is logged, and does not stop the remaining saves
func (o *Orchestrator) saveRecords(ctx context.Context, response *workerResponse) {
	for _, record := range response.records {
		saveCtx, cancelFn := context.WithTimeout(ctx, saveTimeout)

		if err := o.storage.SaveRecord(saveCtx, record); err != nil {
			o.logger.Error(
				"unable to save benchmark record",
				"competitor", record.Competitor,
				"route", record.Route.String(),
				"run_id", record.RunID.String(),
				"err", err,
			)

			cancelFn()

			continue
		}

		cancelFn()

		o.logger.Debug(
			"saved benchmark record",
			"competitor", record.Competitor,
			"route", record.Route.String(),
			"status", record.Status.String(),
			"rate", record.DirectRate,
		)
	}
}

// scheduleRun schedules a new competitor benchmark
func (o *Orchestrator) scheduleRun(
	at time.Time,
	competitorID xid.ID,
	competitor Competitor,
) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	o.q.Push(scheduledRun{
		at:           at,
		competitorID: competitorID,
		competitor:   competitor,
	})
}

// nextRun fetches the next due benchmark job, as of the moment of calling
func (o *Orchestrator) nextRun() *scheduledRun {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if o.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	// Check if the top element is due
	if o.q.Index(0).at.After(now) {
		return nil // nothing to schedule, earliest job is in the future
	}

	// Grab the next job
	return o.q.PopFront()
}
