package extract

import (
	"log/slog"

	"github.com/sig-0/fxbench/storage/types"
)

type Option func(e *Engine)

// WithLogger specifies the logger for the engine
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithBand specifies the plausibility band for scanned text numbers.
// Defaults to DefaultBand
func WithBand(b Band) Option {
	return func(e *Engine) {
		e.band = b
	}
}

// WithAliases specifies the currency alias table used by text templates.
// Defaults to DefaultAliases
func WithAliases(aliases map[types.Currency][]string) Option {
	return func(e *Engine) {
		e.aliases = aliases
	}
}

// WithRules specifies the default text rule table.
// Observation rules are always tried before these
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}
