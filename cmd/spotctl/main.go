// Command spotctl runs administrative tasks against the spots database:
// applying migrations, backfilling slugs and importing spots.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/kasuboski/remote-work-directory/internal/config"
	"github.com/kasuboski/remote-work-directory/internal/domain"
	"github.com/kasuboski/remote-work-directory/internal/repo"
	"github.com/kasuboski/remote-work-directory/internal/service"
	"github.com/kasuboski/remote-work-directory/internal/slug"
	"github.com/kasuboski/remote-work-directory/migrations"
)

const usage = `usage: spotctl <command> [flags]

commands:
  migrate                        apply pending database migrations
  backfill-slugs [-missing-only] recompute slugs for existing spots
  derive-slug <name>             print the base slug for a name
  import <file.json>             create spots from a JSON array
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "spotctl:", err)
		os.Exit(1)
	}
}

// run dispatches one subcommand. Commands that need the database load
// configuration and open a pool themselves.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "derive-slug":
		if len(rest) != 1 {
			return errUsage
		}
		fmt.Fprintln(stdout, slug.Derive(rest[0]))
		return nil

	case "migrate":
		return withPool(ctx, stderr, func(pool *pgxpool.Pool) error {
			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()
			applied, err := migrations.Up(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "applied %d migration(s)\n", len(applied))
			return nil
		})

	case "backfill-slugs":
		fs := flag.NewFlagSet("backfill-slugs", flag.ContinueOnError)
		fs.SetOutput(stderr)
		missingOnly := fs.Bool("missing-only", false, "only assign slugs to spots that have none")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		mode := domain.BackfillAll
		if *missingOnly {
			mode = domain.BackfillMissing
		}
		return withPool(ctx, stderr, func(pool *pgxpool.Pool) error {
			report, err := service.NewSpotService(repo.NewSpotRepo(pool)).BackfillSlugs(ctx, mode)
			printBackfill(stdout, report)
			return err
		})

	case "import":
		if len(rest) != 1 {
			return errUsage
		}
		f, err := os.Open(rest[0])
		if err != nil {
			return err
		}
		defer f.Close()
		spots, err := decodeImport(f)
		if err != nil {
			return fmt.Errorf("%s: %w", rest[0], err)
		}
		return withPool(ctx, stderr, func(pool *pgxpool.Pool) error {
			return importSpots(ctx, service.NewSpotService(repo.NewSpotRepo(pool)), spots, stdout)
		})
	}
	return errUsage
}

// withPool loads configuration, connects, and hands the pool to fn.
func withPool(ctx context.Context, stderr io.Writer, fn func(*pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.Logger(stderr)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	log.Debug("database connection established")
	return fn(pool)
}

func printBackfill(w io.Writer, r domain.BackfillReport) {
	for _, c := range r.Changes {
		old := c.OldSlug
		if old == "" {
			old = "(none)"
		}
		fmt.Fprintf(w, "%s: %s -> %s\n", c.SpotName, old, c.NewSlug)
	}
	fmt.Fprintf(w, "scanned %d, updated %d, unchanged %d\n", r.Scanned, r.Updated, r.Unchanged)
}
