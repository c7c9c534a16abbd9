package ingest

import (
	"context"
	"time"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

type (
	nameDelegate     func() string
	intervalDelegate func() time.Duration
	routesDelegate   func() []types.Route
	observeDelegate  func(context.Context, types.QuoteRequest) ([]extract.Observation, error)
)

type mockCompetitor struct {
	nameFn     nameDelegate
	intervalFn intervalDelegate
	routesFn   routesDelegate
	observeFn  observeDelegate
}

func (m *mockCompetitor) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockCompetitor) Interval() time.Duration {
	if m.intervalFn != nil {
		return m.intervalFn()
	}

	return 0
}

func (m *mockCompetitor) Routes() []types.Route {
	if m.routesFn != nil {
		return m.routesFn()
	}

	return nil
}

func (m *mockCompetitor) Observe(
	ctx context.Context,
	request types.QuoteRequest,
) ([]extract.Observation, error) {
	if m.observeFn != nil {
		return m.observeFn(ctx, request)
	}

	return nil, nil
}
