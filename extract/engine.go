package extract

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sig-0/fxbench/storage/types"
)

// MaxPlausibleRate is the exclusive upper bound for any extracted rate
const MaxPlausibleRate = 1_000_000

// Engine dispatches observations to the matching extraction path,
// and enforces the rate validation on every result
type Engine struct {
	logger  *slog.Logger
	matcher *Matcher
	aliases map[types.Currency][]string

	rules []Rule
	band  Band
}

// NewEngine creates a new extraction engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		band:   DefaultBand,
		rules:  DefaultRules(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.matcher = NewMatcher(e.aliases, e.band)

	return e
}

// Extract runs a single observation through its extraction path.
// It never fails: a miss or an implausible rate yields the Failed result
func (e *Engine) Extract(obs Observation, qc QuoteContext) RateResult {
	var result RateResult

	switch o := deref(obs).(type) {
	case TextBlob:
		rules := make([]Rule, 0, len(o.Rules)+len(e.rules))
		rules = append(rules, o.Rules...)
		rules = append(rules, e.rules...)

		result = e.matcher.Match(o.Content, qc.Route, rules)
	case StructuredPayload:
		result = Resolve(o.Value, o.Fields, qc.Amount)
	case AmountPair:
		result = Implied(o.Sent, o.Received)
	default:
		e.logger.Warn(
			"unsupported observation",
			"route", qc.Route.String(),
			"type", fmt.Sprintf("%T", obs),
		)

		return Failed()
	}

	return e.validate(result, qc)
}

// deref unwraps pointer observations, nil pointers stay unsupported
func deref(obs Observation) Observation {
	switch o := obs.(type) {
	case *TextBlob:
		if o != nil {
			return *o
		}
	case *StructuredPayload:
		if o != nil {
			return *o
		}
	case *AmountPair:
		if o != nil {
			return *o
		}
	}

	return obs
}

// ExtractFirst tries the observations in the given order,
// and returns the first successful result
func (e *Engine) ExtractFirst(qc QuoteContext, observations ...Observation) RateResult {
	for _, obs := range observations {
		if obs == nil {
			continue
		}

		if result := e.Extract(obs, qc); result.OK() {
			return result
		}
	}

	return Failed()
}

// validate downgrades any rate outside (0, MaxPlausibleRate) to the Failed result
func (e *Engine) validate(result RateResult, qc QuoteContext) RateResult {
	if result.Source == SourceNone {
		return Failed()
	}

	if result.Rate > 0 && result.Rate < MaxPlausibleRate {
		return result
	}

	e.logger.Warn(
		"discarding implausible rate",
		"route", qc.Route.String(),
		"rate", result.Rate,
		"source", result.Source.String(),
	)

	return Failed()
}
