package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"contactbook/internal/contacts"
	"contactbook/internal/exporter"
	"contactbook/internal/importer"
)

const maxCSVUploadBytes = 5 << 20 // 5 MiB

// ContactTransferHandler moves contacts in and out as CSV.
type ContactTransferHandler struct {
	service  *contacts.Service
	exporter *exporter.CSVExporter
	importer *importer.CSVImporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewContactTransferHandler wires CSV export and import over the contacts service.
func NewContactTransferHandler(service *contacts.Service, logger *slog.Logger) *ContactTransferHandler {
	return &ContactTransferHandler{
		service:  service,
		exporter: exporter.NewCSVExporter(),
		importer: importer.NewCSVImporter(service),
		logger:   logger,
		now:      time.Now,
	}
}

// ExportCSV streams every contact as a CSV attachment.
func (h *ContactTransferHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("contact export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// Render before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, list); err != nil {
		h.logger.Error("contact export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	filename := fmt.Sprintf("contactbook-export-%s.csv", h.now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ImportCSV creates contacts from an uploaded CSV file in the "file" field.
func (h *ContactTransferHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUploadBytes)
	if err := r.ParseMultipartForm(maxCSVUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("CSV upload is too large (max %d bytes)", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid CSV upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer func() { _ = file.Close() }()

	summary, err := h.importer.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidCSV) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("csv import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("contacts imported", "rows", summary.TotalRows, "imported", summary.Imported, "skipped", len(summary.SkippedDuplicates), "failed", len(summary.Failed))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": summary})
}
