package run

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxbench/bench"
	"github.com/sig-0/fxbench/cmd/env"
	"github.com/sig-0/fxbench/report"
	"github.com/sig-0/fxbench/storage/types"
)

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
)

var errUnknownFormat = errors.New("unknown report format")

// runCfg wraps the run configuration
type runCfg struct {
	configPath  string
	competitors string
	outDir      string
	formats     string
	prefix      string
	chartRoute  string
	logLevel    string
}

// NewRunCmd creates the run subcommand
func NewRunCmd() *ffcli.Command {
	cfg := &runCfg{}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "run [flags]",
		LongHelp:   "Runs a single benchmark over the configured competitors, and writes the report",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *runCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the benchmark TOML configuration, if any",
	)

	fs.StringVar(
		&c.competitors,
		"competitors",
		"",
		"comma-separated competitor names to benchmark (all enabled if empty)",
	)

	fs.StringVar(
		&c.outDir,
		"out-dir",
		".",
		"the directory the report files are written to",
	)

	fs.StringVar(
		&c.formats,
		"format",
		formatXLSX,
		"comma-separated report formats (xlsx, csv)",
	)

	fs.StringVar(
		&c.prefix,
		"prefix",
		report.DefaultPrefix,
		"the report file name prefix",
	)

	fs.StringVar(
		&c.chartRoute,
		"chart-route",
		"",
		"the route to render a PNG rate chart for (ex. CLPVES), if any",
	)

	fs.StringVar(
		&c.logLevel,
		"log-level",
		env.DefaultLogLevel,
		"the log level (debug, info, warn, error)",
	)
}

func (c *runCfg) exec(ctx context.Context, _ []string) error {
	// Validate the output flags before any competitor is reached
	formats, err := parseFormats(c.formats)
	if err != nil {
		return err
	}

	var chartRoute *types.Route

	if c.chartRoute != "" {
		route, err := types.ParseRoute(c.chartRoute)
		if err != nil {
			return fmt.Errorf("invalid chart route, %w", err)
		}

		chartRoute = &route
	}

	// Logs go to stderr, the table to stdout
	logger, err := env.NewLogger(os.Stderr, c.logLevel)
	if err != nil {
		return err
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Debug("unable to load .env file")
	}

	b, err := env.LoadBenchmark(c.configPath, env.SplitList(c.competitors), logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancelFn()

	run := b.Runner.Run(runCtx, b.BenchDrivers())

	report.RenderTable(os.Stdout, run.Records)

	return c.writeReports(logger, run, formats, chartRoute)
}

// writeReports writes every requested report file for the run
func (c *runCfg) writeReports(
	logger *slog.Logger,
	run *bench.Run,
	formats []string,
	chartRoute *types.Route,
) error {
	for _, format := range formats {
		write := report.WriteXLSX
		if format == formatCSV {
			write = report.WriteCSV
		}

		path := filepath.Join(c.outDir, report.FileName(c.prefix, run.StartedAt, format))

		if err := writeFile(path, func(w io.Writer) error {
			return write(w, run.Records)
		}); err != nil {
			return err
		}

		logger.Info("report written", "path", path)
	}

	if chartRoute == nil {
		return nil
	}

	prefix := fmt.Sprintf("%s_%s", c.prefix, strings.ToLower(chartRoute.String()))
	path := filepath.Join(c.outDir, report.FileName(prefix, run.StartedAt, "png"))

	if err := writeFile(path, func(w io.Writer) error {
		return report.WriteChart(w, *chartRoute, run.Records)
	}); err != nil {
		// A missing chart is not fatal
		logger.Warn(
			"unable to write chart",
			"route", chartRoute.String(),
			"err", err,
		)

		return nil
	}

	logger.Info("chart written", "path", path)

	return nil
}

// parseFormats parses the comma-separated report formats
func parseFormats(raw string) ([]string, error) {
	formats := env.SplitList(strings.ToLower(raw))
	if len(formats) == 0 {
		return []string{formatXLSX}, nil
	}

	for _, format := range formats {
		if format != formatXLSX && format != formatCSV {
			return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
		}
	}

	return formats, nil
}

// writeFile creates the file at path, and removes it if the write fails
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return fmt.Errorf("unable to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close %s: %w", path, err)
	}

	return nil
}
