package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/competitors"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

var (
	ErrInvalidBand       = errors.New("invalid plausibility band")
	ErrInvalidAmount     = errors.New("invalid quote amount")
	ErrInvalidCompetitor = errors.New("invalid competitor")
	ErrDuplicateName     = errors.New("duplicate competitor name")
)

// Rule kinds, as written in the configuration
const (
	RuleKindTemplate   = "template"
	RuleKindConversion = "conversion"
	RuleKindScan       = "scan"
)

// Config defines the benchmark configuration
type Config struct {
	// The per-origin-currency quote amounts
	Amounts AmountsConfig `toml:"amounts"`

	// The benchmarked competitors
	Competitors []CompetitorConfig `toml:"competitors"`

	// The text extraction settings
	Extraction ExtractionConfig `toml:"extraction"`
}

// ExtractionConfig defines the text extraction settings
type ExtractionConfig struct {
	// The inclusive plausibility band for scanned text numbers
	ScanMin float64 `toml:"scan_min"`
	ScanMax float64 `toml:"scan_max"`
}

// AmountsConfig defines the quote amount table
type AmountsConfig struct {
	// The amount quoted per origin currency code
	ByCurrency map[string]float64 `toml:"by_currency"`

	// The amount quoted for origins missing from the table
	Default float64 `toml:"default"`
}

// RuleConfig defines a single site text rule
type RuleConfig struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Template string `toml:"template"`
	Inverse  bool   `toml:"inverse"`
}

// CompetitorConfig defines a single benchmarked competitor
type CompetitorConfig struct {
	URLs             map[string]string `toml:"urls"`
	Name             string            `toml:"name"`
	Kind             string            `toml:"kind"`
	URL              string            `toml:"url"`
	URLTemplate      string            `toml:"url_template"`
	Timeout          string            `toml:"timeout"`
	Interval         string            `toml:"interval"`
	Selector         string            `toml:"selector"`
	StateSelector    string            `toml:"state_selector"`
	SentSelector     string            `toml:"sent_selector"`
	ReceivedSelector string            `toml:"received_selector"`
	Routes           []string          `toml:"routes"`
	StateFields      []string          `toml:"state_fields"`
	Rules            []RuleConfig      `toml:"rules"`
	Disabled         bool              `toml:"disabled"`
	Insecure         bool              `toml:"insecure"`
}

// Read reads the configuration from the given path.
// Sections missing from the file keep their default values
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills the sections left out of the file
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Extraction.ScanMin == 0 && c.Extraction.ScanMax == 0 {
		c.Extraction = defaults.Extraction
	}

	if c.Amounts.Default == 0 {
		c.Amounts.Default = defaults.Amounts.Default
	}

	if c.Amounts.ByCurrency == nil {
		c.Amounts.ByCurrency = defaults.Amounts.ByCurrency
	}

	if c.Competitors == nil {
		c.Competitors = defaults.Competitors
	}
}

// ValidateConfig validates the benchmark configuration
func ValidateConfig(config *Config) error {
	if config.Extraction.ScanMin <= 0 || config.Extraction.ScanMax <= config.Extraction.ScanMin {
		return ErrInvalidBand
	}

	if config.Extraction.ScanMax >= extract.MaxPlausibleRate {
		return fmt.Errorf("%w: scan max must be below %d", ErrInvalidBand, extract.MaxPlausibleRate)
	}

	if config.Amounts.Default <= 0 {
		return fmt.Errorf("%w: default amount", ErrInvalidAmount)
	}

	for code, amount := range config.Amounts.ByCurrency {
		if _, err := types.ParseCurrency(code); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
		}

		if amount <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, code)
		}
	}

	seen := make(map[string]struct{}, len(config.Competitors))

	for i := range config.Competitors {
		c := &config.Competitors[i]

		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
		}

		seen[key] = struct{}{}

		if _, err := c.driver(); err != nil {
			return err
		}
	}

	return nil
}

// Band returns the scan plausibility band
func (c *Config) Band() extract.Band {
	return extract.Band{
		Min: c.Extraction.ScanMin,
		Max: c.Extraction.ScanMax,
	}
}

// QuoteAmounts returns the quote amount table
func (c *Config) QuoteAmounts() currencies.Amounts {
	byCurrency := make(map[types.Currency]float64, len(c.Amounts.ByCurrency))

	for code, amount := range c.Amounts.ByCurrency {
		currency, err := types.ParseCurrency(code)
		if err != nil {
			continue
		}

		byCurrency[currency] = amount
	}

	return currencies.NewAmounts(byCurrency, c.Amounts.Default)
}

// Drivers constructs the drivers of all enabled competitors
func (c *Config) Drivers() ([]competitors.Driver, error) {
	drivers := make([]competitors.Driver, 0, len(c.Competitors))

	for i := range c.Competitors {
		if c.Competitors[i].Disabled {
			continue
		}

		d, err := c.Competitors[i].driver()
		if err != nil {
			return nil, err
		}

		drivers = append(drivers, d)
	}

	return drivers, nil
}

// driver constructs the competitor driver
func (c *CompetitorConfig) driver() (competitors.Driver, error) {
	invalid := func(err error) error {
		return fmt.Errorf("%w %q: %w", ErrInvalidCompetitor, c.Name, err)
	}

	routes := make([]types.Route, 0, len(c.Routes))

	for _, raw := range c.Routes {
		r, err := types.ParseRoute(raw)
		if err != nil {
			return nil, invalid(err)
		}

		routes = append(routes, r)
	}

	timeout, err := parseDuration(c.Timeout)
	if err != nil {
		return nil, invalid(err)
	}

	interval, err := parseDuration(c.Interval)
	if err != nil {
		return nil, invalid(err)
	}

	page, err := c.pageSettings()
	if err != nil {
		return nil, invalid(err)
	}

	d, err := competitors.New(
		c.Kind,
		competitors.Settings{
			Name:     c.Name,
			URL:      c.URL,
			Routes:   routes,
			Timeout:  timeout,
			Interval: interval,
		},
		page,
	)
	if err != nil {
		return nil, invalid(err)
	}

	return d, nil
}

// pageSettings converts the page driver settings
func (c *CompetitorConfig) pageSettings() (competitors.PageSettings, error) {
	page := competitors.PageSettings{
		URLs:             make(map[string]string, len(c.URLs)),
		URLTemplate:      c.URLTemplate,
		Selector:         c.Selector,
		StateSelector:    c.StateSelector,
		SentSelector:     c.SentSelector,
		ReceivedSelector: c.ReceivedSelector,
		Insecure:         c.Insecure,
	}

	// URL tables are keyed by the compact route form
	for raw, url := range c.URLs {
		r, err := types.ParseRoute(raw)
		if err != nil {
			return competitors.PageSettings{}, err
		}

		page.URLs[r.String()] = url
	}

	for _, raw := range c.StateFields {
		field, err := extract.ParseFieldPath(raw)
		if err != nil {
			return competitors.PageSettings{}, err
		}

		page.StateFields = append(page.StateFields, field)
	}

	for _, rc := range c.Rules {
		rule, err := rc.rule()
		if err != nil {
			return competitors.PageSettings{}, err
		}

		page.Rules = append(page.Rules, rule)
	}

	return page, nil
}

// rule converts the configured rule
func (r RuleConfig) rule() (extract.Rule, error) {
	rule := extract.Rule{
		Name:     r.Name,
		Template: r.Template,
		Inverse:  r.Inverse,
	}

	switch strings.ToLower(r.Kind) {
	case RuleKindTemplate, "":
		rule.Kind = extract.RuleTemplate
	case RuleKindConversion:
		rule.Kind = extract.RuleConversion
	case RuleKindScan:
		rule.Kind = extract.RuleScan
	default:
		return extract.Rule{}, fmt.Errorf("%w: unknown kind %q", extract.ErrInvalidRule, r.Kind)
	}

	if err := rule.Validate(); err != nil {
		return extract.Rule{}, err
	}

	return rule, nil
}

// parseDuration parses an optional duration
func parseDuration(raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}

	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}

	return d, nil
}
