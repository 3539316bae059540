package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"contactbook/internal/contacts"
)

func TestCSVExporter_ExportEmpty(t *testing.T) {
	exporter := NewCSVExporter()
	var buf bytes.Buffer

	if err := exporter.Export(&buf, []contacts.Contact{}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}

	// Should have only header row
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header), got %d", len(records))
	}
	if len(records[0]) != len(csvColumns) {
		t.Fatalf("expected %d columns, got %d", len(csvColumns), len(records[0]))
	}
}

func TestCSVExporter_ExportContacts(t *testing.T) {
	id := uuid.NewString()
	created := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
	list := []contacts.Contact{{
		ID:            id,
		FirstName:     "Ana",
		LastName:      "Lima, Jr.",
		Email:         "ana@example.com",
		FavoriteColor: "Red",
		Birthday:      time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC),
		CreatedAt:     created,
		UpdatedAt:     created.Add(time.Hour),
	}}

	var buf bytes.Buffer
	if err := NewCSVExporter().Export(&buf, list); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(records))
	}

	want := []string{
		SchemaVersion,
		id,
		"Ana",
		"Lima, Jr.",
		"ana@example.com",
		"Red",
		"1990-05-17",
		"2024-01-02T15:04:05Z",
		"2024-01-02T16:04:05Z",
	}
	row := records[1]
	for i, value := range want {
		if row[i] != value {
			t.Errorf("column %s: expected %q, got %q", csvColumns[i], value, row[i])
		}
	}
}

func TestCSVExporter_BirthdayWithTimeKeepsTimestamp(t *testing.T) {
	list := []contacts.Contact{{
		ID:       uuid.NewString(),
		Birthday: time.Date(1990, time.May, 17, 8, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := NewCSVExporter().Export(&buf, list); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if got := records[1][6]; got != "1990-05-17T08:30:00Z" {
		t.Fatalf("expected RFC3339 birthday, got %q", got)
	}
	if got := records[1][7]; got != "" {
		t.Fatalf("expected empty createdAt for zero time, got %q", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVExporter_WriterError(t *testing.T) {
	err := NewCSVExporter().Export(failingWriter{}, []contacts.Contact{{ID: "1"}})
	if err == nil {
		t.Fatal("expected writer error to surface")
	}
}
