package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxbench/bench"
	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/mock"
	"github.com/sig-0/fxbench/storage/types"
)

const testCompetitorName = "test-competitor"

var (
	clpves = types.Route{Origin: types.CurrencyCLP, Destination: types.CurrencyVES}
	eurves = types.Route{Origin: types.CurrencyEUR, Destination: types.CurrencyVES}
)

func newRunner() *bench.Runner {
	return bench.NewRunner(extract.NewEngine())
}

// quoting returns an observe delegate yielding the given rate text
func quoting(text string) observeDelegate {
	return func(_ context.Context, _ types.QuoteRequest) ([]extract.Observation, error) {
		return []extract.Observation{
			extract.TextBlob{Content: text},
		}, nil
	}
}

func TestOrchestrator_New(t *testing.T) {
	t.Parallel()

	t.Run("default orchestrator", func(t *testing.T) {
		t.Parallel()

		o := New(&mock.Storage{}, newRunner())

		require.NotNil(t, o)

		assert.NotNil(t, o.storage)
		assert.NotNil(t, o.runner)
		assert.NotNil(t, o.logger)
		assert.Equal(t, time.Second, o.queryInterval)
		assert.Equal(t, defaultRetryInterval, o.retryInterval)
	})

	t.Run("intervals", func(t *testing.T) {
		t.Parallel()

		o := New(
			&mock.Storage{},
			newRunner(),
			WithQueryInterval(time.Minute),
			WithRetryInterval(time.Hour),
		)

		require.NotNil(t, o)
		assert.Equal(t, time.Minute, o.queryInterval)
		assert.Equal(t, time.Hour, o.retryInterval)
	})
}

func TestOrchestrator_Register(t *testing.T) {
	t.Parallel()

	t.Run("nil competitor", func(t *testing.T) {
		t.Parallel()

		o := New(&mock.Storage{}, newRunner())

		assert.ErrorIs(t, o.Register(nil), errInvalidCompetitor)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		var (
			o = New(&mock.Storage{}, newRunner())

			competitor = &mockCompetitor{
				nameFn: func() string {
					return ""
				},
				intervalFn: func() time.Duration {
					return time.Hour
				},
			}
		)

		assert.ErrorIs(t, o.Register(competitor), errInvalidCompetitor)
	})

	t.Run("invalid interval", func(t *testing.T) {
		t.Parallel()

		for _, interval := range []time.Duration{0, -time.Hour} {
			var (
				o = New(&mock.Storage{}, newRunner())

				competitor = &mockCompetitor{
					nameFn: func() string {
						return testCompetitorName
					},
					intervalFn: func() time.Duration {
						return interval
					},
				}
			)

			assert.ErrorIs(t, o.Register(competitor), errInvalidInterval)
		}
	})

	t.Run("schedule competitor", func(t *testing.T) {
		t.Parallel()

		var (
			o = New(&mock.Storage{}, newRunner())

			competitor = &mockCompetitor{
				nameFn: func() string {
					return testCompetitorName
				},
				intervalFn: func() time.Duration {
					return time.Hour
				},
			}
		)

		require.NoError(t, o.Register(competitor))

		// Verify the competitor was registered
		var count int

		o.registeredCompetitors.Range(
			func(_, _ any) bool {
				count++

				return true
			},
		)

		assert.Equal(t, 1, count)
		require.Equal(t, 1, o.q.Len())

		// The scheduled time should be in the past or now (immediate)
		scheduled := o.q.Index(0)
		assert.True(t, scheduled.at.Before(time.Now().Add(time.Second)))
	})
}

func TestOrchestrator_Start(t *testing.T) {
	t.Parallel()

	t.Run("ctx canceled", func(t *testing.T) {
		t.Parallel()

		var (
			o     = New(&mock.Storage{}, newRunner(), WithQueryInterval(time.Millisecond*10))
			errCh = make(chan error, 1)
		)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- o.Start(ctx)
		}()

		cancel()

		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("orchestrator did not shut down in time")
		}
	})

	t.Run("records saved", func(t *testing.T) {
		t.Parallel()

		var (
			savedMux sync.Mutex
			saved    []*types.BenchmarkRecord
			saveDone = make(chan struct{})

			storage = &mock.Storage{
				SaveRecordFn: func(_ context.Context, record *types.BenchmarkRecord) error {
					savedMux.Lock()
					defer savedMux.Unlock()

					saved = append(saved, record)

					if len(saved) == 2 {
						close(saveDone)
					}

					return nil
				},
			}

			competitor = &mockCompetitor{
				nameFn: func() string {
					return testCompetitorName
				},
				intervalFn: func() time.Duration {
					return time.Hour
				},
				routesFn: func() []types.Route {
					return []types.Route{clpves, eurves}
				},
				observeFn: quoting("Tasa: 4,50"),
			}
		)

		var (
			o     = New(storage, newRunner(), WithQueryInterval(time.Millisecond*10))
			errCh = make(chan error, 1)
		)

		require.NoError(t, o.Register(competitor))

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- o.Start(ctx)
		}()

		select {
		case <-saveDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for records to be saved")
		}

		cancel()
		require.NoError(t, <-errCh)

		savedMux.Lock()
		defer savedMux.Unlock()

		require.Len(t, saved, 2)

		assert.Equal(t, clpves, saved[0].Route)
		assert.Equal(t, eurves, saved[1].Route)

		// Records of a single job share the run ID
		assert.Equal(t, saved[0].RunID, saved[1].RunID)

		for _, record := range saved {
			assert.Equal(t, testCompetitorName, record.Competitor)
			assert.Equal(t, types.StatusOK, record.Status)
			assert.Equal(t, 4.50, record.DirectRate)
		}
	})

	t.Run("reschedule competitor", func(t *testing.T) {
		t.Parallel()

		var (
			observeCount atomic.Int32
			observeDone  = make(chan struct{})
		)

		var (
			o = New(&mock.Storage{}, newRunner(), WithQueryInterval(time.Millisecond*10))

			competitor = &mockCompetitor{
				nameFn: func() string {
					return testCompetitorName
				},
				intervalFn: func() time.Duration {
					return time.Millisecond * 50
				},
				routesFn: func() []types.Route {
					return []types.Route{clpves}
				},
				observeFn: func(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
					if observeCount.Add(1) == 2 {
						close(observeDone)
					}

					return quoting("Tasa: 4,50")(ctx, req)
				},
			}
			errCh = make(chan error, 1)
		)

		require.NoError(t, o.Register(competitor))

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- o.Start(ctx)
		}()

		select {
		case <-observeDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for reschedule")
		}

		cancel()
		require.NoError(t, <-errCh)

		assert.GreaterOrEqual(t, observeCount.Load(), int32(2))
	})

	t.Run("retries when every route fails", func(t *testing.T) {
		t.Parallel()

		var (
			observeCount atomic.Int32
			retryDone    = make(chan struct{})
		)

		var (
			competitor = &mockCompetitor{
				nameFn: func() string {
					return testCompetitorName
				},
				intervalFn: func() time.Duration {
					return time.Hour
				},
				routesFn: func() []types.Route {
					return []types.Route{clpves}
				},
				observeFn: func(_ context.Context, _ types.QuoteRequest) ([]extract.Observation, error) {
					if observeCount.Add(1) == 2 {
						close(retryDone)
					}

					return nil, errors.New("observe error")
				},
			}

			o = New(
				&mock.Storage{},
				newRunner(),
				WithQueryInterval(time.Millisecond*10),
				WithRetryInterval(time.Millisecond*20),
			)

			errCh = make(chan error, 1)
		)

		require.NoError(t, o.Register(competitor))

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- o.Start(ctx)
		}()

		select {
		case <-retryDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for retry")
		}

		cancel()
		require.NoError(t, <-errCh)

		assert.GreaterOrEqual(t, observeCount.Load(), int32(2))
	})

	t.Run("one job at a time", func(t *testing.T) {
		t.Parallel()

		var (
			inFlight    atomic.Int32
			maxInFlight atomic.Int32
			saveCount   atomic.Int32
			allSaved    = make(chan struct{})
			errCh       = make(chan error, 1)

			storage = &mock.Storage{
				SaveRecordFn: func(_ context.Context, _ *types.BenchmarkRecord) error {
					if saveCount.Add(1) == 3 {
						close(allSaved)
					}

					return nil
				},
			}

			observe = func(_ context.Context, _ types.QuoteRequest) ([]extract.Observation, error) {
				current := inFlight.Add(1)
				defer inFlight.Add(-1)

				for {
					peak := maxInFlight.Load()
					if current <= peak || maxInFlight.CompareAndSwap(peak, current) {
						break
					}
				}

				time.Sleep(time.Millisecond * 20)

				return []extract.Observation{extract.TextBlob{Content: "Tasa: 4,50"}}, nil
			}

			o = New(storage, newRunner(), WithQueryInterval(time.Millisecond*5))
		)

		for _, name := range []string{"competitor-1", "competitor-2", "competitor-3"} {
			require.NoError(t, o.Register(&mockCompetitor{
				nameFn: func() string {
					return name
				},
				intervalFn: func() time.Duration {
					return time.Hour
				},
				routesFn: func() []types.Route {
					return []types.Route{clpves}
				},
				observeFn: observe,
			}))
		}

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- o.Start(ctx)
		}()

		select {
		case <-allSaved:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for competitors")
		}

		cancel()
		require.NoError(t, <-errCh)

		assert.Equal(t, int32(1), maxInFlight.Load())
	})

	t.Run("storage save error", func(t *testing.T) {
		t.Parallel()

		var (
			saveAttempts atomic.Int32
			savesDone    = make(chan struct{})
			errCh        = make(chan error, 1)

			storage = &mock.Storage{
				SaveRecordFn: func(_ context.Context, _ *types.BenchmarkRecord) error {
					if saveAttempts.Add(1) == 2 {
						close(savesDone)
					}

					return errors.New("storage error")
				},
			}
			competitor = &mockCompetitor{
				nameFn: func() string {
					return testCompetitorName
				},
				intervalFn: func() time.Duration {
					return time.Millisecond * 50
				},
				routesFn: func() []types.Route {
					return []types.Route{clpves}
				},
				observeFn: quoting("Tasa: 4,50"),
			}

			o = New(storage, newRunner(), WithQueryInterval(time.Millisecond*10))
		)

		require.NoError(t, o.Register(competitor))

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- o.Start(ctx)
		}()

		select {
		case <-savesDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for save attempts")
		}

		cancel()
		require.NoError(t, <-errCh)
	})
}

func TestWorkerResponse_AllFailed(t *testing.T) {
	t.Parallel()

	var (
		ok     = &types.BenchmarkRecord{Status: types.StatusOK}
		failed = &types.BenchmarkRecord{Status: types.StatusFailed}
	)

	assert.False(t, (&workerResponse{}).allFailed())
	assert.False(t, (&workerResponse{records: []*types.BenchmarkRecord{failed, ok}}).allFailed())
	assert.True(t, (&workerResponse{records: []*types.BenchmarkRecord{failed, failed}}).allFailed())
}
