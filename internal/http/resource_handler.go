package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contactbook/internal/contacts"
	"contactbook/internal/notes"
	"contactbook/internal/validate"
)

// resourceService is the CRUD surface shared by the contacts and notes services.
type resourceService[T, C, U any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, input C) (T, error)
	Update(ctx context.Context, id string, input U) (T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler exposes list/get/create/update/delete for one resource.
type ResourceHandler[T, C, U any] struct {
	service      resourceService[T, C, U]
	idOf         func(T) string
	notFound     string
	errNotFound  error
	errInvalidID error
	logger       *slog.Logger
}

// NewContactHandler creates the /api/contacts handler.
func NewContactHandler(service *contacts.Service, logger *slog.Logger) *ResourceHandler[contacts.Contact, contacts.CreateContactInput, contacts.UpdateContactInput] {
	return &ResourceHandler[contacts.Contact, contacts.CreateContactInput, contacts.UpdateContactInput]{
		service:      service,
		idOf:         func(c contacts.Contact) string { return c.ID },
		notFound:     "Contact not found",
		errNotFound:  contacts.ErrNotFound,
		errInvalidID: contacts.ErrInvalidID,
		logger:       logger,
	}
}

// NewNoteHandler creates the /api/notes handler.
func NewNoteHandler(service *notes.Service, logger *slog.Logger) *ResourceHandler[notes.Note, notes.CreateNoteInput, notes.UpdateNoteInput] {
	return &ResourceHandler[notes.Note, notes.CreateNoteInput, notes.UpdateNoteInput]{
		service:      service,
		idOf:         func(n notes.Note) string { return n.ID },
		notFound:     "Note not found",
		errNotFound:  notes.ErrNotFound,
		errInvalidID: notes.ErrInvalidID,
		logger:       logger,
	}
}

// List returns every record.
func (h *ResourceHandler[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(records), "data": records})
}

// Get returns one record.
func (h *ResourceHandler[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": record})
}

// Create stores a new record.
func (h *ResourceHandler[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	var input C
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}

	record, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": h.idOf(record), "data": record})
}

// Update applies a partial update.
func (h *ResourceHandler[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	var input U
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}

	record, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": record})
}

// Delete removes a record.
func (h *ResourceHandler[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Deleted"})
}

func (h *ResourceHandler[T, C, U]) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, h.errNotFound) {
		writeError(w, http.StatusNotFound, h.notFound)
		return
	}
	if errors.Is(err, h.errInvalidID) {
		writeFieldErrors(w, []validate.FieldError{{Field: "id", Message: "id must be a valid identifier"}})
		return
	}
	var fe fieldErrorer
	if errors.As(err, &fe) {
		writeFieldErrors(w, fe.Fields())
		return
	}
	h.logger.Error("service error", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
