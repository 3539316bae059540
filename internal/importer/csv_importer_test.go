package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"contactbook/internal/contacts"
)

const header = "firstName,lastName,email,favoriteColor,birthday\n"

type stubStore struct {
	created   []contacts.CreateContactInput
	existing  []contacts.Contact
	createErr error
	listErr   error
}

func (s *stubStore) Create(ctx context.Context, input contacts.CreateContactInput) (contacts.Contact, error) {
	if s.createErr != nil {
		return contacts.Contact{}, s.createErr
	}
	s.created = append(s.created, input)
	return contacts.Contact{FirstName: input.FirstName, Email: input.Email}, nil
}

func (s *stubStore) List(ctx context.Context) ([]contacts.Contact, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.existing, nil
}

func newServiceImporter(existing ...contacts.Contact) (*CSVImporter, *contacts.Service) {
	service := contacts.NewService(contacts.NewInMemoryRepository(existing))
	return NewCSVImporter(service), service
}

func TestCSVImporter_ImportCreatesContactsAndSkipsDuplicates(t *testing.T) {
	importer, service := newServiceImporter(contacts.Contact{Email: "existing@example.com"})
	csv := header +
		"Ana,Lima,ana@example.com,Red,1990-05-17\n" +
		"Someone,Else,EXISTING@example.com,Blue,1991-01-01\n"

	summary, err := importer.Import(context.Background(), bytes.NewBufferString(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.TotalRows != 2 || summary.Imported != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.SkippedDuplicates) != 1 || summary.SkippedDuplicates[0].Row != 3 {
		t.Fatalf("expected row 3 to be skipped, got %+v", summary.SkippedDuplicates)
	}
	if summary.SkippedDuplicates[0].Email != "existing@example.com" {
		t.Fatalf("expected normalized email, got %q", summary.SkippedDuplicates[0].Email)
	}

	list, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 contacts after import, got %d", len(list))
	}
}

func TestCSVImporter_DuplicatesWithinUpload(t *testing.T) {
	importer, _ := newServiceImporter()
	csv := header +
		"Ana,Lima,ana@example.com,Red,1990-05-17\n" +
		"Ana,Lima,Ana@Example.com,Red,1990-05-17\n"

	summary, err := importer.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Imported != 1 || len(summary.SkippedDuplicates) != 1 {
		t.Fatalf("expected second row to be skipped, got %+v", summary)
	}
}

func TestCSVImporter_ValidationFailuresAreReported(t *testing.T) {
	importer, _ := newServiceImporter()
	csv := header +
		"Ana,Lima,not-an-email,Red,1990-05-17\n" +
		",Lima,blank@example.com,Red,yesterday\n" +
		"Kenji,Watanabe,kenji@example.com,Green,1988-11-02\n"

	summary, err := importer.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("expected one valid row, got %+v", summary)
	}
	if len(summary.Failed) != 2 {
		t.Fatalf("expected two failures, got %+v", summary.Failed)
	}
	if summary.Failed[0].Row != 2 || !strings.Contains(summary.Failed[0].Error, "email") {
		t.Fatalf("unexpected first failure %+v", summary.Failed[0])
	}
	if summary.Failed[1].Row != 3 || !strings.Contains(summary.Failed[1].Error, ";") {
		t.Fatalf("expected both problems on row 3, got %+v", summary.Failed[1])
	}
}

func TestCSVImporter_HeaderIsCaseInsensitiveAndSkipsBlankRows(t *testing.T) {
	store := &stubStore{}
	importer := NewCSVImporter(store)
	csv := "\ufeffFirstName, LASTNAME ,Email,FavoriteColor,Birthday,extra\n" +
		",,,,,\n" +
		"Ana,Lima,ana@example.com,Red,1990-05-17,ignored\n"

	summary, err := importer.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.TotalRows != 1 || summary.Imported != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if store.created[0].LastName != "Lima" || store.created[0].Birthday != "1990-05-17" {
		t.Fatalf("unexpected mapped input %+v", store.created[0])
	}
}

func TestCSVImporter_InvalidUploads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "missing columns", body: "firstName,lastName\nAna,Lima\n"},
		{name: "bad quoting", body: header + "\"Ana,Lima,ana@example.com,Red,1990-05-17\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer := NewCSVImporter(&stubStore{})
			if _, err := importer.Import(context.Background(), strings.NewReader(tt.body)); !errors.Is(err, ErrInvalidCSV) {
				t.Fatalf("expected ErrInvalidCSV, got %v", err)
			}
		})
	}
}

func TestCSVImporter_RowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i <= MaxImportRows; i++ {
		fmt.Fprintf(&b, "First,Last,user%d@example.com,Blue,1990-01-01\n", i)
	}

	store := &stubStore{}
	_, err := NewCSVImporter(store).Import(context.Background(), strings.NewReader(b.String()))
	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV for oversized upload, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected nothing to be created, got %d", len(store.created))
	}
}

func TestCSVImporter_FailedRecordsAreCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < MaxFailedRecords+5; i++ {
		b.WriteString("First,Last,broken,Blue,1990-01-01\n")
	}

	importer, _ := newServiceImporter()
	summary, err := importer.Import(context.Background(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(summary.Failed) != MaxFailedRecords || !summary.TruncatedRecords {
		t.Fatalf("expected %d failures and truncation, got %d truncated=%v", MaxFailedRecords, len(summary.Failed), summary.TruncatedRecords)
	}
}

func TestCSVImporter_StoreErrorsAbort(t *testing.T) {
	store := &stubStore{createErr: errors.New("connection reset")}
	_, err := NewCSVImporter(store).Import(context.Background(), strings.NewReader(header+"Ana,Lima,ana@example.com,Red,1990-05-17\n"))
	if err == nil || errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected store error to surface, got %v", err)
	}

	store = &stubStore{listErr: errors.New("timeout")}
	if _, err := NewCSVImporter(store).Import(context.Background(), strings.NewReader(header)); err == nil {
		t.Fatal("expected list error to surface")
	}
}
