// internal/db/db_test.go
package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/courtsidehq/courtside/internal/config"
)

func TestEnsureForeignKeysEnabledDSN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"app.db", "app.db?_fk=1"},
		{"app.db?cache=shared", "app.db?cache=shared&_fk=1"},
		{"app.db?_fk=0", "app.db?_fk=0"},
		{"app.db?_fk=1", "app.db?_fk=1"},
	}
	for _, tc := range cases {
		if got := ensureForeignKeysEnabledDSN(tc.in); got != tc.want {
			t.Errorf("ensureForeignKeysEnabledDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewAppliesMigrations(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	for _, table := range []string{"courts", "coaches", "equipment", "pricing_rules", "bookings"} {
		var name string
		err := database.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing after migrations: %v", table, err)
		}
	}
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}

func TestNewFromConfigRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "postgres"
	cfg.Database.Filename = "ignored.db"

	if _, err := NewFromConfig(cfg); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	sentinel := errors.New("boom")

	err = database.RunInTx(ctx, func(tx *DB) error {
		if _, err := tx.Queries.CreateCourt(ctx, "Court A", "indoor"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}

	courts, err := database.Queries.ListCourts(ctx)
	if err != nil {
		t.Fatalf("list courts: %v", err)
	}
	if len(courts) != 0 {
		t.Errorf("rolled-back insert is visible: %d courts", len(courts))
	}
}
