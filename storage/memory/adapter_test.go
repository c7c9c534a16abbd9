package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxbench/storage/types"
)

func mustRoute(t *testing.T, raw string) types.Route {
	t.Helper()

	r, err := types.ParseRoute(raw)
	require.NoError(t, err)

	return r
}

func newRecord(
	t *testing.T,
	runID xid.ID,
	competitor, route string,
	rate float64,
	at time.Time,
) *types.BenchmarkRecord {
	t.Helper()

	return types.NewBenchmarkRecord(
		runID,
		competitor,
		types.QuoteRequest{
			Route:  mustRoute(t, route),
			Amount: 100000,
		},
		rate,
		at,
	)
}

func TestStorage_ListRecords(t *testing.T) {
	t.Parallel()

	var (
		ctx   = context.Background()
		runA  = xid.New()
		runB  = xid.New()
		older = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
		newer = older.Add(time.Hour)
	)

	s := NewStorage()

	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runA, "Arcadi", "CLPVES", 0.0045, older)))
	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runA, "Global66", "CLPVES", 0, older)))
	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runB, "Arcadi", "CLPVES", 0.0046, newer)))
	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runB, "Arcadi", "COPVES", 0.009, newer)))

	t.Run("all records newest first", func(t *testing.T) {
		t.Parallel()

		page, err := s.ListRecords(ctx, &types.RecordQuery{})
		require.NoError(t, err)

		require.Len(t, page.Results, 4)
		assert.EqualValues(t, 4, page.Total)
		assert.True(t, page.Results[0].Timestamp.Equal(newer))
		assert.True(t, page.Results[3].Timestamp.Equal(older))
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()

		var (
			competitor = "Arcadi"
			route      = mustRoute(t, "CLPVES")
			failed     = types.StatusFailed
		)

		page, err := s.ListRecords(ctx, &types.RecordQuery{
			Competitor: &competitor,
			Route:      &route,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)

		page, err = s.ListRecords(ctx, &types.RecordQuery{Status: &failed})
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "Global66", page.Results[0].Competitor)

		page, err = s.ListRecords(ctx, &types.RecordQuery{RunID: &runB})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()

		page, err := s.ListRecords(ctx, &types.RecordQuery{Limit: 1, Offset: 1})
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		assert.EqualValues(t, 4, page.Total)

		page, err = s.ListRecords(ctx, &types.RecordQuery{Offset: 10})
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.EqualValues(t, 4, page.Total)
	})

	t.Run("limit is capped", func(t *testing.T) {
		t.Parallel()

		big := NewStorage()

		for i := range maxLimit + 10 {
			require.NoError(t, big.SaveRecord(
				ctx,
				newRecord(t, xid.New(), fmt.Sprintf("competitor-%d", i), "CLPVES", 1, older),
			))
		}

		page, err := big.ListRecords(ctx, &types.RecordQuery{Limit: maxLimit * 2})
		require.NoError(t, err)

		assert.Len(t, page.Results, maxLimit)
		assert.EqualValues(t, maxLimit+10, page.Total)
	})

	t.Run("empty storage", func(t *testing.T) {
		t.Parallel()

		page, err := NewStorage().ListRecords(ctx, &types.RecordQuery{})
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.Zero(t, page.Total)
	})
}

func TestStorage_SaveRecord_Overwrite(t *testing.T) {
	t.Parallel()

	var (
		ctx   = context.Background()
		runID = xid.New()
		now   = time.Now()
		s     = NewStorage()
	)

	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runID, "XE", "EURUSD", 1.1, now)))
	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runID, "XE", "EURUSD", 1.2, now)))

	page, err := s.ListRecords(ctx, &types.RecordQuery{})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, 1.2, page.Results[0].DirectRate)
}

func TestStorage_ListCompetitorsAndRoutes(t *testing.T) {
	t.Parallel()

	var (
		ctx   = context.Background()
		runID = xid.New()
		now   = time.Now()
		s     = NewStorage()
	)

	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runID, "XE", "EURUSD", 1.1, now)))
	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runID, "Arcadi", "CLPVES", 0.004, now)))
	require.NoError(t, s.SaveRecord(ctx, newRecord(t, runID, "Arcadi", "EURUSD", 1.1, now)))

	competitors, err := s.ListCompetitors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arcadi", "XE"}, competitors)

	routes, err := s.ListRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Route{mustRoute(t, "CLPVES"), mustRoute(t, "EURUSD")}, routes)
}
