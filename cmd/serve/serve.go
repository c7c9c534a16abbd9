package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/fxbench/cmd/env"
	"github.com/sig-0/fxbench/ingest"
	"github.com/sig-0/fxbench/server"
	"github.com/sig-0/fxbench/server/config"
	"github.com/sig-0/fxbench/storage"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath      string
	benchConfigPath string
	competitors     string
	logLevel        string
	queryInterval   time.Duration
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		LongHelp:   "Serves the fxbench API, and benchmarks competitors periodically",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.StringVar(
		&c.benchConfigPath,
		"bench-config",
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
		&c.logLevel,
		"log-level",
		env.DefaultLogLevel,
		"the log level (debug, info, warn, error)",
	)

	fs.DurationVar(
		&c.queryInterval,
		"query-interval",
		time.Second,
		"the interval at which due benchmark jobs are checked",
	)
}

// setup reads the server configuration, creates the logger and loads .env
func (c *serveCfg) setup() (*slog.Logger, error) {
	// Read the server configuration, if any
	if c.configPath != "" {
		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read server config, %w", err)
		}

		c.config = serverCfg
	}

	logger, err := env.NewLogger(os.Stdout, c.logLevel)
	if err != nil {
		return nil, err
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	return logger, nil
}

// run starts the HTTP server and the benchmark scheduler over the given store [BLOCKING]
func (c *serveCfg) run(ctx context.Context, logger *slog.Logger, store storage.Storage) error {
	b, err := env.LoadBenchmark(c.benchConfigPath, env.SplitList(c.competitors), logger)
	if err != nil {
		return err
	}

	// Create the benchmark scheduler
	orchestrator := ingest.New(
		store,
		b.Runner,
		ingest.WithLogger(logger),
		ingest.WithQueryInterval(c.queryInterval),
	)

	for _, d := range b.Drivers {
		if err = orchestrator.Register(d); err != nil {
			return fmt.Errorf("unable to register competitor %q: %w", d.Name(), err)
		}
	}

	// Create the server instance
	s, err := server.New(
		store,
		server.WithLogger(logger),
		server.WithConfig(c.config),
		server.WithEngine(b.Engine),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the benchmark scheduler
	group.Go(func() error {
		return orchestrator.Start(gCtx)
	})

	return group.Wait()
}
