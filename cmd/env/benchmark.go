package env

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sig-0/fxbench/bench"
	"github.com/sig-0/fxbench/config"
	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/competitors"
)

// Benchmark is the wired benchmark stack shared by the commands
type Benchmark struct {
	Config  *config.Config
	Engine  *extract.Engine
	Runner  *bench.Runner
	Drivers []competitors.Driver
}

// LoadBenchmark reads the benchmark configuration at path (defaults if empty),
// keeps the selected competitors (all if none), and wires the engine,
// runner and competitor drivers
func LoadBenchmark(path string, selected []string, logger *slog.Logger) (*Benchmark, error) {
	cfg := config.DefaultConfig()

	if path != "" {
		read, err := config.Read(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read benchmark config, %w", err)
		}

		cfg = read
	}

	if err := cfg.Select(selected); err != nil {
		return nil, fmt.Errorf("unable to select competitors, %w", err)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid benchmark config, %w", err)
	}

	drivers, err := cfg.Drivers()
	if err != nil {
		return nil, fmt.Errorf("unable to create drivers, %w", err)
	}

	engine := extract.NewEngine(
		extract.WithLogger(logger),
		extract.WithBand(cfg.Band()),
	)

	runner := bench.NewRunner(
		engine,
		bench.WithLogger(logger),
		bench.WithAmounts(cfg.QuoteAmounts()),
	)

	return &Benchmark{
		Config:  cfg,
		Engine:  engine,
		Runner:  runner,
		Drivers: drivers,
	}, nil
}

// BenchDrivers returns the drivers as runner drivers
func (b *Benchmark) BenchDrivers() []bench.Driver {
	drivers := make([]bench.Driver, 0, len(b.Drivers))

	for _, d := range b.Drivers {
		drivers = append(drivers, d)
	}

	return drivers
}

// SplitList splits a comma-separated flag value, dropping empty items
func SplitList(raw string) []string {
	var items []string

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
