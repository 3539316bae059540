package migrate

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"

	"contactbook/internal/platform/database"
)

func TestEmbeddedMigrationsAreSequential(t *testing.T) {
	if err := configure(nil); err != nil {
		t.Fatalf("configure: %v", err)
	}
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	found, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("collect migrations: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 embedded migrations, got %d", len(found))
	}
	for i, m := range found {
		if m.Version != int64(i+1) {
			t.Fatalf("expected migration %d to have version %d, got %d", i, i+1, m.Version)
		}
	}
}

func TestApplyPostgresIsIdempotent(t *testing.T) {
	dsn := os.Getenv("CONTACTBOOK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CONTACTBOOK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, db, logger); err != nil {
			t.Fatalf("apply run %d: %v", i+1, err)
		}
	}

	version, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != 3 {
		t.Fatalf("expected schema version 3, got %d", version)
	}
	if !strings.Contains(buf.String(), "database schema up to date") {
		t.Fatalf("expected schema version to be logged, got %q", buf.String())
	}
}
