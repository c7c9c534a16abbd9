package bench

import (
	"context"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

type (
	nameDelegate    func() string
	routesDelegate  func() []types.Route
	observeDelegate func(context.Context, types.QuoteRequest) ([]extract.Observation, error)
)

type mockDriver struct {
	nameFn    nameDelegate
	routesFn  routesDelegate
	observeFn observeDelegate
}

func (m *mockDriver) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockDriver) Routes() []types.Route {
	if m.routesFn != nil {
		return m.routesFn()
	}

	return nil
}

func (m *mockDriver) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	if m.observeFn != nil {
		return m.observeFn(ctx, req)
	}

	return nil, nil
}
