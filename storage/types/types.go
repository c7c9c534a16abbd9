package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
)

var (
	ErrInvalidRoute    = errors.New("invalid route")
	ErrInvalidCurrency = errors.New("invalid currency")
)

type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyBRL Currency = "BRL"
	CurrencyCLP Currency = "CLP"
	CurrencyCOP Currency = "COP"
	CurrencyEUR Currency = "EUR"
	CurrencyMXN Currency = "MXN"
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
	CurrencyVES Currency = "VES"
)

// legacyAliases maps the 2-letter destination codes found in older route tables
var legacyAliases = map[string]Currency{
	"US": CurrencyUSD,
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency parses a 3-letter currency code (case-insensitive)
func ParseCurrency(raw string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))

	if alias, ok := legacyAliases[code]; ok {
		return alias, nil
	}

	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
	}

	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
		}
	}

	return Currency(code), nil
}

// Route is an ordered (origin, destination) currency pair.
// It is encoded in its compact form (CLPVES)
type Route struct {
	Origin      Currency
	Destination Currency
}

// NewRoute creates a new route, validating origin != destination
func NewRoute(origin, destination Currency) (Route, error) {
	if origin == "" || destination == "" || origin == destination {
		return Route{}, fmt.Errorf("%w: %s -> %s", ErrInvalidRoute, origin, destination)
	}

	return Route{
		Origin:      origin,
		Destination: destination,
	}, nil
}

// ParseRoute parses the compact route form, ex. CLPVES.
// The legacy 2-letter destination alias is accepted (CLPUS -> CLP/USD)
func ParseRoute(raw string) (Route, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))

	if len(code) < 5 || len(code) > 6 {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, raw)
	}

	origin, err := ParseCurrency(code[:3])
	if err != nil {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, raw)
	}

	destination, err := ParseCurrency(code[3:])
	if err != nil {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidRoute, raw)
	}

	return NewRoute(origin, destination)
}

// String returns the compact route form (CLPVES)
func (r Route) String() string {
	return r.Origin.String() + r.Destination.String()
}

// MarshalText encodes the route in its compact form
func (r Route) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes the route from its compact form
func (r *Route) UnmarshalText(text []byte) error {
	parsed, err := ParseRoute(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

// QuoteRequest is a single (route, amount) quote the driver needs to observe
type QuoteRequest struct {
	Route  Route   `json:"route"`
	Amount float64 `json:"amount"`
}

type Status string

const (
	StatusOK     Status = "OK"
	StatusFailed Status = "FALLO"
)

func (s Status) String() string {
	return string(s)
}

// BenchmarkRecord is a single benchmark row, one per (competitor, route) per run
type BenchmarkRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Competitor   string    `json:"competitor"`
	Source       string    `json:"source"`
	Confidence   string    `json:"confidence"`
	Status       Status    `json:"status"`
	Route        Route     `json:"route"`
	QuotedAmount float64   `json:"quoted_amount"`
	DirectRate   float64   `json:"direct_rate"`
	InverseRate  float64   `json:"inverse_rate"`
	RunID        xid.ID    `json:"run_id"`
}

// NewBenchmarkRecord builds a record for the given observed rate.
// The inverse rate and status are derived from the direct rate
func NewBenchmarkRecord(
	runID xid.ID,
	competitor string,
	request QuoteRequest,
	rate float64,
	at time.Time,
) *BenchmarkRecord {
	r := &BenchmarkRecord{
		RunID:        runID,
		Competitor:   competitor,
		Route:        request.Route,
		QuotedAmount: request.Amount,
		Timestamp:    at.UTC(),
		Status:       StatusFailed,
	}

	if rate > 0 {
		r.DirectRate = rate
		r.InverseRate = InverseRate(rate)
		r.Status = StatusOK
	}

	return r
}

// InverseRate returns 1/direct, or 0 if the direct rate is not positive
func InverseRate(direct float64) float64 {
	if direct <= 0 {
		return 0
	}

	return 1 / direct
}

// RecordQuery filters benchmark records
type RecordQuery struct {
	Competitor *string `json:"competitor"`
	Route      *Route  `json:"route"`
	Status     *Status `json:"status"`
	RunID      *xid.ID `json:"run_id"`
	Offset     int64   `json:"offset"`
	Limit      int32   `json:"limit"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
