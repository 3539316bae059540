package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"contactbook/internal/contacts"
)

// ContactStore is the part of the contacts service the importer writes through.
type ContactStore interface {
	Create(ctx context.Context, input contacts.CreateContactInput) (contacts.Contact, error)
	List(ctx context.Context) ([]contacts.Contact, error)
}

type Summary struct {
	TotalRows         int             `json:"totalRows"`
	Imported          int             `json:"imported"`
	SkippedDuplicates []SkippedRecord `json:"skippedDuplicates"`
	Failed            []FailedRecord  `json:"failed"`
	TruncatedRecords  bool            `json:"truncatedRecords,omitempty"`
}

type SkippedRecord struct {
	Row    int    `json:"row"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

type FailedRecord struct {
	Row   int    `json:"row"`
	Email string `json:"email,omitempty"`
	Error string `json:"error"`
}

var ErrInvalidCSV = errors.New("invalid csv upload")

// MaxImportRows limits the number of data rows processed per CSV import to
// prevent excessive memory usage and long-running requests.
const MaxImportRows = 1000

// MaxFailedRecords caps the number of failed/skipped records stored in the
// summary to avoid unbounded memory growth from malformed uploads.
const MaxFailedRecords = 100

var requiredColumns = []string{
	"firstname",
	"lastname",
	"email",
	"favoritecolor",
	"birthday",
}

// CSVImporter creates contacts from CSV rows. Rows whose email already exists
// are skipped rather than duplicated.
type CSVImporter struct {
	contacts ContactStore
}

func NewCSVImporter(store ContactStore) *CSVImporter {
	return &CSVImporter{contacts: store}
}

func (i *CSVImporter) Import(ctx context.Context, reader io.Reader) (Summary, error) {
	if i.contacts == nil {
		return Summary{}, fmt.Errorf("%w: contact store is not configured", ErrInvalidCSV)
	}

	existing, err := i.contacts.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		seen[normalizeEmail(c.Email)] = struct{}{}
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Summary{}, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
		}
		return Summary{}, fmt.Errorf("%w: failed to read header", ErrInvalidCSV)
	}

	columns, err := normalizeHeader(header)
	if err != nil {
		return Summary{}, err
	}

	type parsedRow struct {
		number int
		values map[string]string
	}

	var rows []parsedRow
	rowNumber := 1
	for {
		record, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Summary{}, fmt.Errorf("%w: failed to read row %d", ErrInvalidCSV, rowNumber+1)
		}
		rowNumber++
		values := mapRecord(columns, record)
		if isRowEmpty(values) {
			continue
		}
		if len(rows) == MaxImportRows {
			return Summary{}, fmt.Errorf("%w: CSV exceeds maximum of %d rows", ErrInvalidCSV, MaxImportRows)
		}
		rows = append(rows, parsedRow{number: rowNumber, values: values})
	}

	summary := Summary{
		TotalRows:         len(rows),
		SkippedDuplicates: []SkippedRecord{},
		Failed:            []FailedRecord{},
	}

	for _, row := range rows {
		input := contacts.CreateContactInput{
			FirstName:     row.values["firstname"],
			LastName:      row.values["lastname"],
			Email:         row.values["email"],
			FavoriteColor: row.values["favoritecolor"],
			Birthday:      row.values["birthday"],
		}
		email := normalizeEmail(input.Email)

		if _, dup := seen[email]; dup && email != "" {
			if len(summary.SkippedDuplicates) < MaxFailedRecords {
				summary.SkippedDuplicates = append(summary.SkippedDuplicates, SkippedRecord{
					Row:    row.number,
					Email:  email,
					Reason: "a contact with this email already exists",
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		if _, err := i.contacts.Create(ctx, input); err != nil {
			var verr *contacts.ValidationError
			if !errors.As(err, &verr) {
				return summary, fmt.Errorf("import row %d: %w", row.number, err)
			}
			if len(summary.Failed) < MaxFailedRecords {
				summary.Failed = append(summary.Failed, FailedRecord{
					Row:   row.number,
					Email: email,
					Error: verr.Problems.String(),
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		seen[email] = struct{}{}
		summary.Imported++
	}

	return summary, nil
}

func normalizeHeader(header []string) (map[int]string, error) {
	columns := make(map[int]string, len(header))
	present := make(map[string]bool, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if key == "" {
			continue
		}
		columns[idx] = key
		present[key] = true
	}

	var missing []string
	for _, required := range requiredColumns {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrInvalidCSV, strings.Join(missing, ", "))
	}
	return columns, nil
}

func mapRecord(columns map[int]string, record []string) map[string]string {
	values := make(map[string]string, len(columns))
	for idx, value := range record {
		if key, ok := columns[idx]; ok {
			values[key] = strings.TrimSpace(value)
		}
	}
	return values
}

func isRowEmpty(values map[string]string) bool {
	for _, value := range values {
		if value != "" {
			return false
		}
	}
	return true
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
