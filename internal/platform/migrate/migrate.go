package migrate

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"contactbook/migrations"
)

// Apply runs any pending SQL migrations bundled with the binary and logs the
// resulting schema version.
func Apply(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	if err := configure(logger); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("migrate: goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("migrate: read schema version: %w", err)
	}
	if logger != nil {
		logger.Info("database schema up to date", "version", version)
	}
	return nil
}

// configure points goose at the embedded migrations.
func configure(logger *slog.Logger) error {
	goose.SetBaseFS(migrations.Files)
	goose.SetLogger(slogGooseLogger{logger: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: set goose dialect: %w", err)
	}
	return nil
}
