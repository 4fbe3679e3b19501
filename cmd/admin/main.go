package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"grocery/internal/domain/item"
	"grocery/internal/infrastructure/sqlstore"
	"grocery/internal/shared/config"
)

const usage = `Grocery Admin CLI - Maintenance commands for the grocery list store

Usage:
  admin <command> [options]

Commands:
  migrate    Create the items table and indexes if missing
  sweep      Remove items checked off before the retention cutoff
  reindex    Renumber positions to 0..N-1, closing any gaps
  check      Report gaps or duplicate positions (exit status 2 if found)

Examples:
  # Sweep with the configured retention
  admin sweep

  # Keep checked-off items for two extra days, cut off at midnight in Sao Paulo
  admin sweep --retention-days=2 --timezone=America/Sao_Paulo

  # Verify and repair positions
  admin check || admin reindex

The database comes from DATABASE_URL (or the DB_* variables) as for the API.
`

// errNotDense makes check exit with a distinct status.
var errNotDense = errors.New("positions are not dense")

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage, "\n")
		os.Exit(1)
	}

	var err error
	switch command := os.Args[1]; command {
	case "migrate":
		err = runMigrate(os.Args[2:], os.Stdout)
	case "sweep":
		err = runSweep(os.Args[2:], os.Stdout)
	case "reindex":
		err = runReindex(os.Args[2:], os.Stdout)
	case "check":
		err = runCheck(os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		fmt.Print(usage, "\n")
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage, "\n")
		os.Exit(1)
	}

	switch {
	case errors.Is(err, errNotDense):
		log.Print(err)
		os.Exit(2)
	case err != nil:
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// session bundles what every command needs once flags are parsed.
type session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config.Config
	db      *sqlstore.DB
	repo    *sqlstore.ItemRepository
	service *item.Service
}

func openSession(timeout time.Duration) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sqlstore.New(cfg.Database.DSN(), cfg.Database.MaxConnections)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Printf("Connected to %s database", db.System())

	retention, err := item.NewRetention(cfg.Sweep.RetentionDays, cfg.Sweep.Timezone)
	if err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	repo := sqlstore.NewItemRepository(db)

	return &session{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		db:      db,
		repo:    repo,
		service: item.NewService(repo, retention),
	}, nil
}

func (s *session) Close() {
	s.cancel()
	s.db.Close()
}

func newFlagSet(name, synopsis string) (*flag.FlagSet, *time.Duration) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	timeout := fs.Duration("timeout", 5*time.Minute, "Timeout for the operation (e.g., 30s, 5m)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: admin %s\n\nOptions:\n", synopsis)
		fs.PrintDefaults()
	}
	return fs, timeout
}

func runMigrate(args []string, out io.Writer) error {
	fs, timeout := newFlagSet("migrate", "migrate [--timeout=5m]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*timeout)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.db.Migrate(s.ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "Schema is up to date")
	return nil
}

func runSweep(args []string, out io.Writer) error {
	fs, timeout := newFlagSet("sweep", "sweep [--retention-days=N] [--timezone=TZ] [--timeout=5m]")
	retentionDays := fs.Int("retention-days", -1, "Days to keep checked-off items past today (default from SWEEP_RETENTION_DAYS)")
	timezone := fs.String("timezone", "", "IANA timezone that defines the start of day (default from SWEEP_TIMEZONE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*timeout)
	if err != nil {
		return err
	}
	defer s.Close()

	days := s.cfg.Sweep.RetentionDays
	if *retentionDays >= 0 {
		days = *retentionDays
	}
	tz := s.cfg.Sweep.Timezone
	if *timezone != "" {
		tz = *timezone
	}

	retention, err := item.NewRetention(days, tz)
	if err != nil {
		return err
	}

	service := item.NewService(s.repo, retention)
	removed, err := service.SweepExpired(s.ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Removed %d items checked off before %s\n",
		removed, retention.Cutoff(time.Now()).In(retention.Location).Format(time.RFC3339))
	return nil
}

func runReindex(args []string, out io.Writer) error {
	fs, timeout := newFlagSet("reindex", "reindex [--timeout=5m]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*timeout)
	if err != nil {
		return err
	}
	defer s.Close()

	moved, err := s.service.Reindex(s.ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Renumbered %d items\n", moved)
	return nil
}

func runCheck(args []string, out io.Writer) error {
	fs, timeout := newFlagSet("check", "check [--timeout=5m]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*timeout)
	if err != nil {
		return err
	}
	defer s.Close()

	items, err := s.repo.List(s.ctx)
	if err != nil {
		return err
	}

	if err := item.CheckDense(items); err != nil {
		fmt.Fprintf(out, "%d items, %v\n", len(items), err)
		return fmt.Errorf("%w: run `admin reindex` to repair", errNotDense)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No items")
		return nil
	}

	fmt.Fprintf(out, "%d items, positions 0..%d are dense\n", len(items), len(items)-1)
	return nil
}
