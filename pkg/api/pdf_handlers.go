package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/middleware"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/pdfs"
)

// PDFHandlers serves the caller's PDF library.
type PDFHandlers struct {
	service        *pdfs.Service
	quota          *middleware.QuotaMiddleware
	maxUploadBytes int64
	logger         *observability.Logger
}

// NewPDFHandlers creates PDF library handlers
func NewPDFHandlers(service *pdfs.Service, quota *middleware.QuotaMiddleware, maxUploadBytes int64, logger *observability.Logger) *PDFHandlers {
	return &PDFHandlers{
		service:        service,
		quota:          quota,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.WithField("component", "pdf_handlers"),
	}
}

// RegisterRoutes registers PDF routes. Only the upload route carries
// the quota check.
func (h *PDFHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/api/pdfs", h.quota.EnforceUploadQuota(http.HandlerFunc(h.upload))).Methods("POST")
	router.HandleFunc("/api/pdfs", h.list).Methods("GET")
	router.HandleFunc("/api/pdfs/{id}", h.get).Methods("GET")
	router.HandleFunc("/api/pdfs/{id}/download", h.download).Methods("GET")
	router.HandleFunc("/api/pdfs/{id}", h.rename).Methods("PATCH")
	router.HandleFunc("/api/pdfs/{id}", h.deletePDF).Methods("DELETE")
}

func (h *PDFHandlers) upload(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.logger.WithError(err).Error("failed to read upload")
		httputil.WriteInternalError(w, err)
		return
	}
	if int64(len(content)) > h.maxUploadBytes {
		httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes))
		return
	}

	title := r.FormValue("title")
	pdf, err := h.service.Upload(r.Context(), caller, title, header.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, pdfs.ErrNotAPDF):
			httputil.WriteValidationError(w, "file is not a PDF document")
		case errors.Is(err, pdfs.ErrQuotaExceeded):
			httputil.WriteForbidden(w, "upload quota exceeded")
		default:
			h.logger.WithError(err).Error("upload failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteCreated(w, pdf)
}

func (h *PDFHandlers) list(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if query := httputil.ParseQueryString(r, "q", ""); query != "" {
		limit, _ := pageParams(r)
		results, err := h.service.Search(r.Context(), caller.ID, query, limit)
		if err != nil {
			h.logger.WithError(err).Error("search failed")
			httputil.WriteInternalError(w, err)
			return
		}
		httputil.WriteSuccess(w, map[string]interface{}{"pdfs": results})
		return
	}

	limit, offset := pageParams(r)
	results, total, err := h.service.List(r.Context(), caller.ID, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("list failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"pdfs":   results,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *PDFHandlers) get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	pdf, err := h.service.Get(r.Context(), caller.ID, id)
	if err != nil {
		if errors.Is(err, pdfs.ErrNotFound) {
			httputil.WriteNotFoundError(w, "pdf not found")
			return
		}
		h.logger.WithError(err).Error("failed to load pdf")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, pdf)
}

func (h *PDFHandlers) download(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	pdf, reader, err := h.service.Download(r.Context(), caller.ID, id)
	if err != nil {
		if errors.Is(err, pdfs.ErrNotFound) {
			httputil.WriteNotFoundError(w, "pdf not found")
			return
		}
		h.logger.WithError(err).Error("download failed")
		httputil.WriteInternalError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.FormatInt(pdf.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.Filename))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.WithError(err).Warn("download stream interrupted")
	}
}

type renameRequest struct {
	Title string `json:"title"`
}

func (h *PDFHandlers) rename(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req renameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Title, "title") {
		return
	}

	if err := h.service.Rename(r.Context(), caller.ID, id, req.Title); err != nil {
		if errors.Is(err, pdfs.ErrNotFound) {
			httputil.WriteNotFoundError(w, "pdf not found")
			return
		}
		h.logger.WithError(err).Error("rename failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PDFHandlers) deletePDF(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller.ID, id); err != nil {
		if errors.Is(err, pdfs.ErrNotFound) {
			httputil.WriteNotFoundError(w, "pdf not found")
			return
		}
		h.logger.WithError(err).Error("delete failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
