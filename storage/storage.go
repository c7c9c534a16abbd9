package storage

import (
	"context"

	"github.com/sig-0/fxbench/storage/types"
)

// Storage is an abstraction over benchmark record data
type Storage interface {
	// SaveRecord saves the given benchmark record
	SaveRecord(context.Context, *types.BenchmarkRecord) error

	// ListRecords fetches the records matching the query, newest first
	ListRecords(context.Context, *types.RecordQuery) (*types.Page[*types.BenchmarkRecord], error)

	// ListCompetitors lists all competitors with at least one record
	ListCompetitors(context.Context) ([]string, error)

	// ListRoutes lists all routes with at least one record
	ListRoutes(context.Context) ([]types.Route, error)
}
