package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/billing"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

// webhookSignatureHeader carries the HMAC-SHA256 signature of the
// webhook payload, hex encoded with a sha256= prefix.
const webhookSignatureHeader = "X-Webhook-Signature"

// BillingHandlers serves subscription state and the payment provider
// webhook. The webhook route is public; it authenticates by signature.
type BillingHandlers struct {
	service       *billing.Service
	webhookSecret string
	logger        *observability.Logger
}

// NewBillingHandlers creates billing handlers
func NewBillingHandlers(service *billing.Service, webhookSecret string, logger *observability.Logger) *BillingHandlers {
	return &BillingHandlers{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger.WithField("component", "billing_handlers"),
	}
}

// RegisterRoutes registers billing routes
func (h *BillingHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/billing/subscription", h.getSubscription).Methods("GET")
	router.HandleFunc("/api/billing/plans", h.listPlans).Methods("GET")
	router.HandleFunc("/api/billing/subscribe", h.subscribe).Methods("POST")
	router.HandleFunc("/api/billing/cancel", h.cancel).Methods("POST")

	router.HandleFunc("/api/webhooks/billing", h.webhook).Methods("POST")
}

func (h *BillingHandlers) getSubscription(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	sub, err := h.service.Get(r.Context(), caller.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to load subscription")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, sub)
}

func (h *BillingHandlers) listPlans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{"plans": billing.Pricing()})
}

type subscribeRequest struct {
	Plan        string `json:"plan"`
	ExternalRef string `json:"external_ref"`
}

func (h *BillingHandlers) subscribe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req subscribeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	sub, err := h.service.Subscribe(r.Context(), caller.ID, billing.Plan(req.Plan), req.ExternalRef)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			httputil.WriteValidationError(w, "unknown plan")
			return
		}
		h.logger.WithError(err).Error("subscribe failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, sub)
}

func (h *BillingHandlers) cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), caller.ID); err != nil {
		if errors.Is(err, billing.ErrNoSubscription) {
			httputil.WriteNotFoundError(w, "no active subscription")
			return
		}
		h.logger.WithError(err).Error("cancel failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// webhook ingests payment provider events. The payload must carry a
// valid signature; unsigned or tampered payloads are rejected before
// any parsing.
func (h *BillingHandlers) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteBadRequest(w, "failed to read payload")
		return
	}

	if !h.verifySignature(payload, r.Header.Get(webhookSignatureHeader)) {
		h.logger.Warn("rejected webhook with bad signature")
		httputil.WriteUnauthorized(w, "invalid signature")
		return
	}

	var event billing.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		httputil.WriteBadRequest(w, "malformed event payload")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), event); err != nil {
		h.logger.WithError(err).WithField("event_type", event.Type).Error("webhook processing failed")
		httputil.WriteInternalError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *BillingHandlers) verifySignature(payload []byte, signature string) bool {
	if h.webhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
