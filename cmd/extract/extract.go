package extract

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxbench/cmd/env"
	"github.com/sig-0/fxbench/config"
	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

const (
	kindText = "text"
	kindJSON = "json"

	stdinPath = "-"
)

var (
	errMissingRoute  = errors.New("missing route")
	errUnknownKind   = errors.New("unknown input kind")
	errMissingFields = errors.New("json input requires at least one field path")
	errTooManyInputs = errors.New("at most one input file is supported")
)

// extractCfg wraps the extract configuration
type extractCfg struct {
	configPath string
	route      string
	kind       string
	fields     string
	logLevel   string
	amount     float64
}

// result is the printed extraction result
type result struct {
	Route      types.Route `json:"route"`
	Source     string      `json:"source"`
	Confidence string      `json:"confidence"`
	Amount     float64     `json:"amount"`
	Rate       float64     `json:"rate"`
	Inverse    float64     `json:"inverse_rate"`
}

// NewExtractCmd creates the extract subcommand
func NewExtractCmd() *ffcli.Command {
	cfg := &extractCfg{}

	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "extract",
		ShortUsage: "extract -route <route> [flags] [<file>]",
		LongHelp:   "Extracts a rate from a saved page text or JSON payload (stdin if no file is given)",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *extractCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the benchmark TOML configuration, if any",
	)

	fs.StringVar(
		&c.route,
		"route",
		"",
		"the quoted route, in compact form (ex. CLPVES)",
	)

	fs.Float64Var(
		&c.amount,
		"amount",
		0,
		"the quoted origin amount (the configured default if 0)",
	)

	fs.StringVar(
		&c.kind,
		"kind",
		kindText,
		"the input kind (text, json)",
	)

	fs.StringVar(
		&c.fields,
		"fields",
		"",
		"comma-separated field paths for json input (ex. amount:quoteData.destinationAmount)",
	)

	fs.StringVar(
		&c.logLevel,
		"log-level",
		"warn",
		"the log level (debug, info, warn, error)",
	)
}

func (c *extractCfg) exec(_ context.Context, args []string) error {
	if len(args) > 1 {
		return errTooManyInputs
	}

	path := stdinPath
	if len(args) == 1 {
		path = args[0]
	}

	raw, err := readInput(path, os.Stdin)
	if err != nil {
		return err
	}

	res, err := c.extract(raw)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(res)
}

// extract runs the raw input through the extraction engine
func (c *extractCfg) extract(raw []byte) (*result, error) {
	if c.route == "" {
		return nil, errMissingRoute
	}

	route, err := types.ParseRoute(c.route)
	if err != nil {
		return nil, err
	}

	logger, err := env.NewLogger(os.Stderr, c.logLevel)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()

	if c.configPath != "" {
		if cfg, err = config.Read(c.configPath); err != nil {
			return nil, fmt.Errorf("unable to read benchmark config, %w", err)
		}
	}

	amount := c.amount
	if amount <= 0 {
		amount = cfg.QuoteAmounts().For(route.Origin)
	}

	obs, err := c.observation(raw)
	if err != nil {
		return nil, err
	}

	engine := extract.NewEngine(
		extract.WithLogger(logger),
		extract.WithBand(cfg.Band()),
	)

	rate := engine.Extract(obs, extract.QuoteContext{
		Route:  route,
		Amount: amount,
	})

	return &result{
		Route:      route,
		Amount:     amount,
		Source:     rate.Source.String(),
		Confidence: rate.Confidence.String(),
		Rate:       rate.Rate,
		Inverse:    types.InverseRate(rate.Rate),
	}, nil
}

// observation wraps the raw input into the observation of the configured kind
func (c *extractCfg) observation(raw []byte) (extract.Observation, error) {
	switch c.kind {
	case kindText:
		return extract.TextBlob{Content: string(raw)}, nil
	case kindJSON:
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, c.kind)
	}

	rawFields := env.SplitList(c.fields)
	if len(rawFields) == 0 {
		return nil, errMissingFields
	}

	fields := make([]extract.FieldPath, 0, len(rawFields))

	for _, rawField := range rawFields {
		field, err := extract.ParseFieldPath(rawField)
		if err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	payload, err := extract.ParsePayload(raw)
	if err != nil {
		return nil, err
	}

	return extract.StructuredPayload{
		Value:  payload,
		Fields: fields,
	}, nil
}

// readInput reads the whole input file, or stdin for "-"
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinPath {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("unable to read stdin: %w", err)
		}

		return raw, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	return raw, nil
}
