package ingest

import (
	"time"

	"github.com/sig-0/fxbench/bench"
)

// Competitor is a single benchmarked competitor, run periodically
type Competitor interface {
	bench.Driver

	// Interval returns the interval at which the competitor should be benchmarked
	Interval() time.Duration
}
