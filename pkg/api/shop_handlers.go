package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/shop"
)

// ShopHandlers serves the curated PDF shop, both the public catalog
// and the admin management routes.
type ShopHandlers struct {
	service *shop.Service
	logger  *observability.Logger
}

// NewShopHandlers creates shop handlers
func NewShopHandlers(service *shop.Service, logger *observability.Logger) *ShopHandlers {
	return &ShopHandlers{
		service: service,
		logger:  logger.WithField("component", "shop_handlers"),
	}
}

// RegisterRoutes registers shop routes
func (h *ShopHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/shop", h.browse).Methods("GET")
	router.HandleFunc("/api/shop/{id}", h.get).Methods("GET")
	router.HandleFunc("/api/shop/{id}/download", h.download).Methods("GET")

	router.HandleFunc("/admin/shop", h.listAll).Methods("GET")
	router.HandleFunc("/admin/shop", h.upload).Methods("POST")
	router.HandleFunc("/admin/shop/{id}", h.update).Methods("PATCH")
	router.HandleFunc("/admin/shop/{id}/publish", h.setPublished).Methods("PUT")
	router.HandleFunc("/admin/shop/{id}", h.deleteItem).Methods("DELETE")
}

func (h *ShopHandlers) browse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}

	limit, offset := pageParams(r)
	items, err := h.service.Browse(r.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("failed to list shop items")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"items": items})
}

func (h *ShopHandlers) get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			httputil.WriteNotFoundError(w, "shop item not found")
			return
		}
		h.logger.WithError(err).Error("failed to load shop item")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, item)
}

func (h *ShopHandlers) download(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	item, reader, err := h.service.Download(r.Context(), caller, id)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrNotFound):
			httputil.WriteNotFoundError(w, "shop item not found")
		case errors.Is(err, shop.ErrProRequired):
			httputil.WriteForbidden(w, "a pro subscription is required for premium items")
		default:
			h.logger.WithError(err).Error("shop download failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.Title+".pdf"))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.WithError(err).Warn("shop download stream interrupted")
	}
}

func (h *ShopHandlers) listAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	items, err := h.service.ListAll(r.Context(), caller, limit, offset)
	if err != nil {
		if errors.Is(err, shop.ErrPermissionDenied) {
			httputil.WriteForbidden(w, "shop management requires super admin")
			return
		}
		h.logger.WithError(err).Error("failed to list shop items")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"items": items})
}

func (h *ShopHandlers) upload(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.WithError(err).Error("failed to read shop upload")
		httputil.WriteInternalError(w, err)
		return
	}

	title := r.FormValue("title")
	if !httputil.RequireNonEmpty(w, title, "title") {
		return
	}
	priceCents := 0
	if raw := r.FormValue("price_cents"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteValidationError(w, "price_cents must be a non-negative integer")
			return
		}
		priceCents = parsed
	}

	item, err := h.service.Upload(r.Context(), caller, title, r.FormValue("description"), priceCents, content)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrPermissionDenied):
			httputil.WriteForbidden(w, "shop uploads require admin access")
		default:
			h.logger.WithError(err).Error("shop upload failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteCreated(w, item)
}

type updateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int    `json:"price_cents"`
}

func (h *ShopHandlers) update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateItemRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.service.Update(r.Context(), caller, id, req.Title, req.Description, req.PriceCents); err != nil {
		h.writeShopError(w, err, "failed to update shop item")
		return
	}

	httputil.WriteNoContent(w)
}

type publishRequest struct {
	Published bool `json:"published"`
}

func (h *ShopHandlers) setPublished(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req publishRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.service.SetPublished(r.Context(), caller, id, req.Published); err != nil {
		h.writeShopError(w, err, "failed to change publish state")
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ShopHandlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.writeShopError(w, err, "failed to delete shop item")
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ShopHandlers) writeShopError(w http.ResponseWriter, err error, logMessage string) {
	switch {
	case errors.Is(err, shop.ErrNotFound):
		httputil.WriteNotFoundError(w, "shop item not found")
	case errors.Is(err, shop.ErrPermissionDenied):
		httputil.WriteForbidden(w, "shop management requires super admin")
	default:
		h.logger.WithError(err).Error(logMessage)
		httputil.WriteInternalError(w, err)
	}
}
