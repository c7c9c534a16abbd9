package bench

import (
	"context"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

// Driver is a single competitor site driver
type Driver interface {
	// Name returns the human-readable name of the competitor
	Name() string

	// Routes returns the routes the competitor is benchmarked on
	Routes() []types.Route

	// Observe reaches the quote state for the request, and returns the
	// candidate observations in the order they should be tried.
	// An error signals the quote could not be obtained
	Observe(context.Context, types.QuoteRequest) ([]extract.Observation, error)
}
