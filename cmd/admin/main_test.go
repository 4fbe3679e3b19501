package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grocery/internal/domain/item"
	"grocery/internal/infrastructure/sqlstore"
)

// setupDatabase points the commands at a fresh SQLite file and returns a
// handle on the same file for arranging state.
func setupDatabase(t *testing.T) (*sqlstore.ItemRepository, *sqlstore.DB) {
	t.Helper()

	dsn := "sqlite://" + filepath.Join(t.TempDir(), "items.db")
	t.Setenv("DATABASE_URL", dsn)

	var out bytes.Buffer
	if err := runMigrate(nil, &out); err != nil {
		t.Fatalf("runMigrate() failed: %v", err)
	}

	db, err := sqlstore.New(dsn, 1)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlstore.NewItemRepository(db), db
}

func TestCheckAndReindex(t *testing.T) {
	repo, _ := setupDatabase(t)
	ctx := context.Background()

	for _, name := range []string{"milk", "eggs", "bread"} {
		if _, err := repo.Create(ctx, item.CreateParams{Name: name, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	var out bytes.Buffer
	if err := runCheck(nil, &out); err != nil {
		t.Fatalf("runCheck() on dense list failed: %v", err)
	}
	if !strings.Contains(out.String(), "3 items") {
		t.Errorf("unexpected check output %q", out.String())
	}

	checked := time.Now().Add(-72 * time.Hour)
	if err := repo.Replace(ctx, 1, item.ReplaceParams{Name: "milk", CheckedOff: true, CheckedOffAt: &checked}); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if err := runSweep([]string{"--retention-days=0", "--timezone=UTC"}, &out); err != nil {
		t.Fatalf("runSweep() failed: %v", err)
	}

	out.Reset()
	if err := runCheck(nil, &out); err != nil {
		t.Fatalf("runCheck() after sweep failed: %v (%s)", err, out.String())
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items after sweep, got %d", len(items))
	}

	out.Reset()
	if err := runReindex(nil, &out); err != nil {
		t.Fatalf("runReindex() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Renumbered 0 items") {
		t.Errorf("unexpected reindex output %q", out.String())
	}
}

func TestCheck_ReportsGap(t *testing.T) {
	repo, db := setupDatabase(t)
	ctx := context.Background()

	for _, name := range []string{"milk", "eggs"} {
		if _, err := repo.Create(ctx, item.CreateParams{Name: name, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	// The repository never leaves gaps, so forge one directly.
	if _, err := db.ExecContext(ctx, `UPDATE items SET position = 5 WHERE id = 2`); err != nil {
		t.Fatalf("failed to forge gap: %v", err)
	}

	var out bytes.Buffer
	if err := runCheck(nil, &out); !errors.Is(err, errNotDense) {
		t.Fatalf("runCheck() error = %v, want errNotDense", err)
	}

	out.Reset()
	if err := runReindex(nil, &out); err != nil {
		t.Fatalf("runReindex() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Renumbered 1 items") {
		t.Errorf("unexpected reindex output %q", out.String())
	}

	if err := runCheck(nil, &out); err != nil {
		t.Errorf("runCheck() after reindex failed: %v", err)
	}
}

func TestSweep_InvalidTimezone(t *testing.T) {
	setupDatabase(t)

	var out bytes.Buffer
	if err := runSweep([]string{"--timezone=Nowhere/Special"}, &out); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestUnknownFlag(t *testing.T) {
	var out bytes.Buffer
	if err := runCheck([]string{"--verbose"}, &out); err == nil {
		t.Error("expected flag parse error")
	}
}
