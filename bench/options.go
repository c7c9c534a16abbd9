package bench

import (
	"log/slog"
	"time"

	"github.com/sig-0/fxbench/provider/currencies"
)

type Option func(r *Runner)

// WithLogger specifies the logger for the runner
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithAmounts specifies the quote amount table.
// Defaults to currencies.DefaultAmounts
func WithAmounts(a currencies.Amounts) Option {
	return func(r *Runner) {
		r.amounts = a
	}
}

// WithClock specifies the time source for record timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}
