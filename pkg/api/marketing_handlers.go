package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/marketing"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

// MarketingHandlers serves campaign management and the public active
// campaign listing.
type MarketingHandlers struct {
	service *marketing.Service
	logger  *observability.Logger
}

// NewMarketingHandlers creates marketing handlers
func NewMarketingHandlers(service *marketing.Service, logger *observability.Logger) *MarketingHandlers {
	return &MarketingHandlers{
		service: service,
		logger:  logger.WithField("component", "marketing_handlers"),
	}
}

// RegisterRoutes registers marketing routes
func (h *MarketingHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/marketing", h.create).Methods("POST")
	router.HandleFunc("/admin/marketing", h.list).Methods("GET")
	router.HandleFunc("/admin/marketing/{id}/active", h.setActive).Methods("PUT")
	router.HandleFunc("/admin/marketing/{id}", h.deleteCampaign).Methods("DELETE")

	router.HandleFunc("/api/campaigns", h.active).Methods("GET")
}

type createCampaignRequest struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

func (h *MarketingHandlers) create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req createCampaignRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	campaign, err := h.service.Create(r.Context(), caller, req.Name, req.Slug,
		req.StartsAt, req.EndsAt)
	if err != nil {
		switch {
		case errors.Is(err, marketing.ErrPermissionDenied):
			httputil.WriteForbidden(w, "campaign management requires admin access")
		case errors.Is(err, marketing.ErrSlugTaken):
			httputil.WriteConflict(w, "a campaign with that slug already exists")
		case errors.Is(err, marketing.ErrInvalidCampaign):
			httputil.WriteValidationError(w, err.Error())
		default:
			h.logger.WithError(err).Error("failed to create campaign")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteCreated(w, campaign)
}

func (h *MarketingHandlers) list(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	campaigns, err := h.service.List(r.Context(), caller, limit, offset)
	if err != nil {
		if errors.Is(err, marketing.ErrPermissionDenied) {
			httputil.WriteForbidden(w, "campaign management requires admin access")
			return
		}
		h.logger.WithError(err).Error("failed to list campaigns")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"campaigns": campaigns})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *MarketingHandlers) setActive(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req setActiveRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.service.SetActive(r.Context(), caller, id, req.Active); err != nil {
		switch {
		case errors.Is(err, marketing.ErrPermissionDenied):
			httputil.WriteForbidden(w, "campaign management requires admin access")
		case errors.Is(err, marketing.ErrNotFound):
			httputil.WriteNotFoundError(w, "campaign not found")
		default:
			h.logger.WithError(err).Error("failed to toggle campaign")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *MarketingHandlers) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		switch {
		case errors.Is(err, marketing.ErrPermissionDenied):
			httputil.WriteForbidden(w, "campaign management requires admin access")
		case errors.Is(err, marketing.ErrNotFound):
			httputil.WriteNotFoundError(w, "campaign not found")
		default:
			h.logger.WithError(err).Error("failed to delete campaign")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *MarketingHandlers) active(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.Active(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list active campaigns")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"campaigns": campaigns})
}
