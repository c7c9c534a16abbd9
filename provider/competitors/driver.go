package competitors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/fxbench/bench"
	"github.com/sig-0/fxbench/storage/types"
)

var (
	// ErrUnsupportedRoute is returned when the competitor has no quote for the route
	ErrUnsupportedRoute = errors.New("unsupported route")

	errUnknownKind = errors.New("unknown driver kind")
	errInvalidName = errors.New("invalid driver name")
	errInvalidURL  = errors.New("invalid driver URL")
)

const (
	defaultTimeout  = 30 * time.Second
	defaultInterval = time.Hour
)

// Kinds of drivers
const (
	KindArcadi       = "arcadi"
	KindGlobal66     = "global66"
	KindCurrencyBird = "currencybird"
	KindBCV          = "bcv"
	KindBinanceP2P   = "binance_p2p"
	KindPage         = "page"
)

// Driver is a competitor driver, with its benchmark interval
type Driver interface {
	bench.Driver

	// Interval returns the interval at which the competitor should be benchmarked
	Interval() time.Duration
}

// Settings are the common driver settings
type Settings struct {
	Name     string
	URL      string
	Routes   []types.Route
	Timeout  time.Duration
	Interval time.Duration
}

// base implements the common driver accessors
type base struct {
	name     string
	url      string
	routes   []types.Route
	timeout  time.Duration
	interval time.Duration
}

func newBase(s Settings) (base, error) {
	if strings.TrimSpace(s.Name) == "" {
		return base{}, errInvalidName
	}

	if strings.TrimSpace(s.URL) == "" {
		return base{}, fmt.Errorf("%w: %s", errInvalidURL, s.Name)
	}

	b := base{
		name:     s.Name,
		url:      s.URL,
		routes:   s.Routes,
		timeout:  s.Timeout,
		interval: s.Interval,
	}

	if b.timeout <= 0 {
		b.timeout = defaultTimeout
	}

	if b.interval <= 0 {
		b.interval = defaultInterval
	}

	return b, nil
}

func (b base) Name() string {
	return b.name
}

func (b base) Routes() []types.Route {
	return b.routes
}

func (b base) Interval() time.Duration {
	return b.interval
}

// New creates a new driver of the given kind.
// The page settings are only used by the page driver
func New(kind string, s Settings, page PageSettings) (Driver, error) {
	switch strings.ToLower(kind) {
	case KindArcadi:
		return NewArcadi(s)
	case KindGlobal66:
		return NewGlobal66(s)
	case KindCurrencyBird:
		return NewCurrencyBird(s)
	case KindBCV:
		return NewBCV(s)
	case KindBinanceP2P:
		return NewBinanceP2P(s)
	case KindPage:
		return NewPage(s, page)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, kind)
	}
}

// formatAmount formats the quoted amount for query parameters
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// unsupported wraps ErrUnsupportedRoute with the route
func unsupported(route types.Route, reason string) error {
	return fmt.Errorf("%w: %s (%s)", ErrUnsupportedRoute, route.String(), reason)
}
