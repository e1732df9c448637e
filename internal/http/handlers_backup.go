package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"enriquecer/internal/backup"
	"enriquecer/internal/services"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleExport downloads the whole history as JSON (default), CSV or XLSX.
// Only the JSON backup can be imported again.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}

	txs, err := s.backend.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, "Export failed", err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "json":
		contentType = contentTypeJSON
		err = backup.WriteJSON(&buf, txs)
	case "csv":
		contentType = contentTypeCSV
		err = backup.WriteCSV(&buf, txs)
	case "xlsx":
		contentType = contentTypeXLSX
		err = backup.WriteXLSX(&buf, txs)
	default:
		BadRequestError("unsupported format " + format).Write(w)
		return
	}
	if err != nil {
		s.internalError(w, r, "Export failed", err)
		return
	}

	s.logger.InfoContext(r.Context(), "Export generated", "format", format, "count", len(txs), "bytes", buf.Len())
	NewResponse().
		Attachment(contentType, backup.Filename(s.now(), format), buf.Bytes()).
		Write(w)
}

// handleImport replaces the history with an uploaded JSON backup, sent either
// as the multipart field "file" or as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				ErrorResponse(http.StatusRequestEntityTooLarge, "file too large").Write(w)
				return
			}
			BadRequestError(backup.ErrInvalidFile.Error()).Write(w)
			return
		}
		defer file.Close()
		src = file
	}

	n, err := s.backend.ImportTransactions(r.Context(), src)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, backup.ErrInvalidFile):
			BadRequestError(backup.ErrInvalidFile.Error()).Write(w)
		case errors.Is(err, services.ErrImportInProgress):
			ConflictError(err.Error()).Write(w)
		case errors.As(err, &tooLarge):
			ErrorResponse(http.StatusRequestEntityTooLarge, "file too large").Write(w)
		default:
			s.internalError(w, r, "Import failed", err)
		}
		return
	}

	NewResponse().JSON(map[string]int{"imported": n}).Write(w)
}
