package sql

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxbench/cmd/env"
	dbpkg "github.com/sig-0/fxbench/storage/sql"
)

const schemaDir = "schema"

// migrateCfg wraps the migrate configuration
type migrateCfg struct {
	rootCfg *sqlCfg
}

// newMigrateCmd creates the migrate command
func newMigrateCmd(rootCfg *sqlCfg) *ffcli.Command {
	cfg := &migrateCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	rootCfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "migrate",
		ShortUsage: "sql migrate [migration.sql, migration2.sql ...]",
		LongHelp:   "Runs the embedded DB migrations (all of them, in order, if none are specified)",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *migrateCfg) exec(ctx context.Context, args []string) error {
	// Default to every embedded migration
	names := args
	if len(names) == 0 {
		all, err := migrationNames()
		if err != nil {
			return err
		}

		names = all
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Unable to load .env file, using the environment")
	}

	dsn := os.Getenv(env.Prefix + env.DBURLSuffix)
	if dsn == "" {
		return fmt.Errorf("missing %s", env.Prefix+env.DBURLSuffix)
	}

	// Open the DB
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("unable to open DB connection: %w", err)
	}

	defer func() {
		closeCtx, cancelFn := context.WithTimeout(context.Background(), time.Second*5)
		defer cancelFn()

		if err := conn.Close(closeCtx); err != nil {
			fmt.Printf("Unable to gracefully close DB: %s\n", err.Error())
		}
	}()

	// Ping the DB
	if err = conn.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping DB: %w", err)
	}

	for _, name := range names {
		sqlBytes, err := dbpkg.SchemaFS.ReadFile(path.Join(schemaDir, name))
		if err != nil {
			return fmt.Errorf("unable to read migration %q: %w", name, err)
		}

		fmt.Printf("Running migration %s...\n", name)

		if _, err := conn.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("unable to run migration %q: %w", name, err)
		}

		fmt.Printf("Migration %q complete\n", name)
	}

	fmt.Println("All migrations complete!")

	return nil
}

// migrationNames returns the embedded migration file names, in lexical order
func migrationNames() ([]string, error) {
	matches, err := fs.Glob(dbpkg.SchemaFS, path.Join(schemaDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("unable to list migrations: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, path.Base(match))
	}

	return names, nil
}
