package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/promotions"
)

// PromotionHandlers serves promotion management and redemption.
type PromotionHandlers struct {
	service *promotions.Service
	logger  *observability.Logger
}

// NewPromotionHandlers creates promotion handlers
func NewPromotionHandlers(service *promotions.Service, logger *observability.Logger) *PromotionHandlers {
	return &PromotionHandlers{
		service: service,
		logger:  logger.WithField("component", "promotion_handlers"),
	}
}

// RegisterRoutes registers promotion routes
func (h *PromotionHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/promotions", h.create).Methods("POST")
	router.HandleFunc("/admin/promotions", h.list).Methods("GET")
	router.HandleFunc("/admin/promotions/{id}", h.deletePromotion).Methods("DELETE")

	router.HandleFunc("/api/promotions/redeem", h.redeem).Methods("POST")
}

type createPromotionRequest struct {
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DiscountPercent int       `json:"discount_percent"`
	MaxUses         int       `json:"max_uses"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

func (h *PromotionHandlers) create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req createPromotionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	promo, err := h.service.Create(r.Context(), caller, req.Code, req.Description,
		req.DiscountPercent, req.MaxUses, req.StartsAt, req.EndsAt)
	if err != nil {
		switch {
		case errors.Is(err, promotions.ErrPermissionDenied):
			httputil.WriteForbidden(w, "promotion management requires admin access")
		case errors.Is(err, promotions.ErrCodeTaken):
			httputil.WriteConflict(w, "a promotion with that code already exists")
		case errors.Is(err, promotions.ErrInvalidPromotion):
			httputil.WriteValidationError(w, err.Error())
		default:
			h.logger.WithError(err).Error("failed to create promotion")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteCreated(w, promo)
}

func (h *PromotionHandlers) list(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	limit, offset := pageParams(r)
	promos, err := h.service.List(r.Context(), caller, limit, offset)
	if err != nil {
		if errors.Is(err, promotions.ErrPermissionDenied) {
			httputil.WriteForbidden(w, "promotion management requires admin access")
			return
		}
		h.logger.WithError(err).Error("failed to list promotions")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"promotions": promos})
}

func (h *PromotionHandlers) deletePromotion(w http.ResponseWriter, r *http.Request) {
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
		case errors.Is(err, promotions.ErrPermissionDenied):
			httputil.WriteForbidden(w, "promotion management requires admin access")
		case errors.Is(err, promotions.ErrNotFound):
			httputil.WriteNotFoundError(w, "promotion not found")
		default:
			h.logger.WithError(err).Error("failed to delete promotion")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteNoContent(w)
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (h *PromotionHandlers) redeem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req redeemRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Code, "code") {
		return
	}

	promo, err := h.service.Redeem(r.Context(), caller.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, promotions.ErrNotFound):
			httputil.WriteNotFoundError(w, "unknown promotion code")
		case errors.Is(err, promotions.ErrNotActive):
			httputil.WriteValidationError(w, "promotion is not currently active")
		case errors.Is(err, promotions.ErrExhausted):
			httputil.WriteValidationError(w, "promotion has no uses left")
		case errors.Is(err, promotions.ErrAlreadyRedeemed):
			httputil.WriteConflict(w, "promotion already redeemed")
		default:
			h.logger.WithError(err).Error("redemption failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"code":             promo.Code,
		"discount_percent": promo.DiscountPercent,
	})
}
