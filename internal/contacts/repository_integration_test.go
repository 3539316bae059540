package contacts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"contactbook/internal/platform/database"
	"contactbook/internal/platform/docstore"
	"contactbook/internal/platform/migrate"
)

// exerciseRepository runs the same document-store contract against any backend.
func exerciseRepository(t *testing.T, repo Repository, missingID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	created, err := repo.Create(ctx, Contact{
		FirstName:     "Ana",
		LastName:      "Lima",
		Email:         "ana@example.com",
		FavoriteColor: "Red",
		Birthday:      time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.DeleteByID(context.Background(), created.ID) })

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found.Email != "ana@example.com" || !found.Birthday.Equal(created.Birthday) {
		t.Fatalf("unexpected contact %+v", found)
	}

	found.FavoriteColor = "Teal"
	found.UpdatedAt = now.Add(time.Minute)
	updated, err := repo.UpdateByID(ctx, created.ID, found)
	if err != nil {
		t.Fatalf("UpdateByID returned error: %v", err)
	}
	if updated.FavoriteColor != "Teal" {
		t.Fatalf("expected update to persist, got %q", updated.FavoriteColor)
	}

	all, err := repo.Find(ctx)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	seen := false
	for _, c := range all {
		seen = seen || c.ID == created.ID
	}
	if !seen {
		t.Fatal("expected created contact in Find results")
	}

	if err := repo.DeleteByID(ctx, created.ID); err != nil {
		t.Fatalf("DeleteByID returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := repo.UpdateByID(ctx, missingID, found); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing contact, got %v", err)
	}
	if err := repo.DeleteByID(ctx, "bogus"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestInMemoryRepositoryContract(t *testing.T) {
	exerciseRepository(t, NewInMemoryRepository(nil), "6f1c2a00-0000-4000-8000-000000000000")
}

func TestPostgresRepositoryContract(t *testing.T) {
	dsn := os.Getenv("CONTACTBOOK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CONTACTBOOK_TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate.Apply(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	exerciseRepository(t, NewPostgresRepository(db), "6f1c2a00-0000-4000-8000-000000000000")
}

func TestMongoRepositoryContract(t *testing.T) {
	uri := os.Getenv("CONTACTBOOK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CONTACTBOOK_TEST_MONGO_URI not set")
	}

	db, disconnect, err := docstore.NewMongo(context.Background(), uri, "contactbook_test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = disconnect(context.Background()) })

	exerciseRepository(t, NewMongoRepository(db), "64ffbe1f8f1c2a00123abcd5")
}
