package mock

import (
	"context"

	"github.com/sig-0/fxbench/storage/types"
)

type (
	SaveRecordDelegate      func(context.Context, *types.BenchmarkRecord) error
	ListRecordsDelegate     func(context.Context, *types.RecordQuery) (*types.Page[*types.BenchmarkRecord], error)
	ListCompetitorsDelegate func(context.Context) ([]string, error)
	ListRoutesDelegate      func(context.Context) ([]types.Route, error)
)

type Storage struct {
	SaveRecordFn      SaveRecordDelegate
	ListRecordsFn     ListRecordsDelegate
	ListCompetitorsFn ListCompetitorsDelegate
	ListRoutesFn      ListRoutesDelegate
}

func (m *Storage) SaveRecord(ctx context.Context, record *types.BenchmarkRecord) error {
	if m.SaveRecordFn != nil {
		return m.SaveRecordFn(ctx, record)
	}

	return nil
}

func (m *Storage) ListRecords(
	ctx context.Context,
	query *types.RecordQuery,
) (*types.Page[*types.BenchmarkRecord], error) {
	if m.ListRecordsFn != nil {
		return m.ListRecordsFn(ctx, query)
	}

	return nil, nil
}

func (m *Storage) ListCompetitors(ctx context.Context) ([]string, error) {
	if m.ListCompetitorsFn != nil {
		return m.ListCompetitorsFn(ctx)
	}

	return nil, nil
}

func (m *Storage) ListRoutes(ctx context.Context) ([]types.Route, error) {
	if m.ListRoutesFn != nil {
		return m.ListRoutesFn(ctx)
	}

	return nil, nil
}
