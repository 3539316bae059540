package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"contactbook/internal/contacts"
)

// SchemaVersion identifies the CSV export format version.
// This version should be incremented when adding new columns or changing the format.
const SchemaVersion = "1"

// csvColumns defines the column order for export. They are a superset of the
// import columns so an export can be re-imported as is.
var csvColumns = []string{
	"schemaVersion",
	"id",
	"firstName",
	"lastName",
	"email",
	"favoriteColor",
	"birthday",
	"createdAt",
	"updatedAt",
}

// CSVExporter exports contacts to CSV format.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes contacts to w in CSV format.
func (e *CSVExporter) Export(w io.Writer, list []contacts.Contact) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, contact := range list {
		if err := writer.Write(contactToRow(contact)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func contactToRow(c contacts.Contact) []string {
	return []string{
		SchemaVersion,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.FavoriteColor,
		formatDate(c.Birthday),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	}
}

// formatDate writes calendar dates without a time part.
func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	if value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0 {
		return value.UTC().Format(time.DateOnly)
	}
	return value.UTC().Format(time.RFC3339)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
