package handlers

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/plataforma-eventos/server/internal/api/middleware"
	"github.com/plataforma-eventos/server/internal/api/problem"
	"github.com/plataforma-eventos/server/internal/domain/events"
	"github.com/plataforma-eventos/server/internal/uploads"
)

// multipartMemory is the in-memory threshold for multipart parsing; larger
// parts spill to temp files.
const multipartMemory = 10 << 20

type ReportsHandler struct {
	Service *events.Service
	Env     string
}

func NewReportsHandler(service *events.Service, env string) *ReportsHandler {
	return &ReportsHandler{Service: service, Env: env}
}

// Upload handles POST /api/v1/eventos/{id}/informe. The body is a
// multipart form: a "resumen" text field, one to five "imagenes" files and
// optional "videos" files.
func (h *ReportsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid multipart body", err, h.Env)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	imagenes, err := readFormFiles(r, "imagenes", uploads.MaxImageSize)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid image upload", err, h.Env)
		return
	}
	videos, err := readFormFiles(r, "videos", uploads.MaxVideoSize)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid video upload", err, h.Env)
		return
	}

	informe, err := h.Service.AttachReport(r.Context(), middleware.SessionUser(r), id, events.ReportInput{
		Resumen:  r.FormValue("resumen"),
		Imagenes: imagenes,
		Videos:   videos,
	})
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, informe)
}

// DownloadZip handles GET /api/v1/eventos/{id}/informe/descargar-zip.
// Streams a ZIP of the report media plus a resumen.txt with the summary.
func (h *ReportsHandler) DownloadZip(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	event, paths, err := h.Service.ReportFiles(r.Context(), middleware.SessionUser(r), id)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "informe_"+event.ID+".zip"))
	w.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(w)

	summary, err := zw.Create("resumen.txt")
	if err == nil {
		_, _ = summary.Write([]byte(event.Informe.Resumen))
	}

	for _, p := range paths {
		if err := addFileToZip(zw, p); err != nil {
			// The response status is already committed; nothing to do but
			// log and carry on with the remaining entries.
			middleware.LoggerFromContext(r.Context()).Warn().Str("path", p).Err(err).Msg("skipping zip entry")
		}
	}

	_ = zw.Close()
}

func (h *ReportsHandler) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr events.ValidationError
	switch {
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient permissions", err, h.Env)
	case errors.Is(err, events.ErrFinalized):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Event is finalized", err, h.Env)
	case errors.Is(err, events.ErrNoReport):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event has no report", err, h.Env)
	case errors.As(err, &validationErr),
		errors.Is(err, uploads.ErrInvalidImageType),
		errors.Is(err, uploads.ErrInvalidVideoType),
		errors.Is(err, uploads.ErrImageTooLarge),
		errors.Is(err, uploads.ErrVideoTooLarge):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}

// readFormFiles buffers the named multipart files. maxSize bounds each read
// so a mislabeled giant part cannot exhaust memory; the uploads package
// re-checks sizes against its own limits.
func readFormFiles(r *http.Request, field string, maxSize int64) ([]uploads.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[field]
	files := make([]uploads.File, 0, len(headers))
	for _, header := range headers {
		part, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s %q: %w", field, header.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(part, maxSize+1))
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s %q: %w", field, header.Filename, err)
		}
		files = append(files, uploads.File{Name: header.Filename, Data: data})
	}
	return files, nil
}

func addFileToZip(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := strings.TrimSpace(filepath.Base(path))
	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
