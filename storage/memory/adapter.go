package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sig-0/fxbench/storage/types"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type key struct {
	runID, competitor, route string
}

type Storage struct {
	data map[key]types.BenchmarkRecord

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]types.BenchmarkRecord),
	}
}

func (s *Storage) SaveRecord(_ context.Context, r *types.BenchmarkRecord) error {
	k := key{
		runID:      r.RunID.String(),
		competitor: r.Competitor,
		route:      r.Route.String(),
	}

	elem := *r
	elem.Timestamp = elem.Timestamp.UTC()

	s.mu.Lock()
	s.data[k] = elem // one record per competitor route, per run
	s.mu.Unlock()

	return nil
}

func (s *Storage) ListRecords(
	_ context.Context,
	query *types.RecordQuery,
) (*types.Page[*types.BenchmarkRecord], error) {
	s.mu.RLock()

	out := make([]*types.BenchmarkRecord, 0)

	for _, v := range s.data {
		if query.Competitor != nil && v.Competitor != *query.Competitor {
			continue
		}

		if query.Route != nil && v.Route != *query.Route {
			continue
		}

		if query.Status != nil && v.Status != *query.Status {
			continue
		}

		if query.RunID != nil && v.RunID != *query.RunID {
			continue
		}

		cp := v
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}

		if out[i].Competitor != out[j].Competitor {
			return out[i].Competitor < out[j].Competitor
		}

		return out[i].Route.String() < out[j].Route.String()
	})

	total := int64(len(out))
	if total == 0 {
		return &types.Page[*types.BenchmarkRecord]{
			Results: nil,
			Total:   0,
		}, nil
	}

	lim := query.Limit
	if lim <= 0 {
		lim = defaultLimit
	}

	if lim > maxLimit {
		lim = maxLimit
	}

	off := query.Offset
	if off < 0 || off >= total {
		return &types.Page[*types.BenchmarkRecord]{
			Results: nil,
			Total:   total,
		}, nil
	}

	start := int(off)
	end := start + int(lim)

	if end > len(out) {
		end = len(out)
	}

	return &types.Page[*types.BenchmarkRecord]{
		Results: out[start:end],
		Total:   total,
	}, nil
}

func (s *Storage) ListCompetitors(_ context.Context) ([]string, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.competitor] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]string, 0, len(seen))

	for v := range seen {
		out = append(out, v)
	}

	sort.Strings(out)

	return out, nil
}

func (s *Storage) ListRoutes(_ context.Context) ([]types.Route, error) {
	s.mu.RLock()

	seen := make(map[types.Route]struct{})

	for _, v := range s.data {
		seen[v.Route] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]types.Route, 0, len(seen))

	for v := range seen {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out, nil
}
