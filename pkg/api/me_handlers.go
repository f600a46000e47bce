package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

// MeHandlers serves the signed-in user's profile and derived features.
type MeHandlers struct {
	profiles *profiles.Store
	usage    *usage.Store
	logger   *observability.Logger
}

// NewMeHandlers creates profile handlers
func NewMeHandlers(profileStore *profiles.Store, usageStore *usage.Store, logger *observability.Logger) *MeHandlers {
	return &MeHandlers{
		profiles: profileStore,
		usage:    usageStore,
		logger:   logger.WithField("component", "me_handlers"),
	}
}

// RegisterRoutes registers profile routes
func (h *MeHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/me", h.getProfile).Methods("GET")
	router.HandleFunc("/api/me", h.updateProfile).Methods("PATCH")
	router.HandleFunc("/api/me/features", h.getFeatures).Methods("GET")
	router.HandleFunc("/api/me/usage", h.getUsage).Methods("GET")
	router.HandleFunc("/api/me/stats", h.getStats).Methods("GET")
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	user, err := h.profiles.GetProfile(r.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			httputil.WriteNotFoundError(w, "profile not found")
			return
		}
		h.logger.WithError(err).Error("failed to load profile")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *MeHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.profiles.UpdateProfile(r.Context(), caller.ID, req.Name, req.AvatarURL); err != nil {
		h.logger.WithError(err).Error("failed to update profile")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// getFeatures returns the capability projection for the caller's role
// and current usage counters.
func (h *MeHandlers) getFeatures(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	snapshot, err := h.usage.Snapshot(r.Context(), caller.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to load usage snapshot")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, auth.DeriveFeatures(caller.Role, snapshot))
}

func (h *MeHandlers) getUsage(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	snapshot, err := h.usage.Snapshot(r.Context(), caller.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to load usage snapshot")
		httputil.WriteInternalError(w, err)
		return
	}

	perms := caller.Permissions()
	httputil.WriteSuccess(w, map[string]interface{}{
		"pdf_count":       snapshot.PDFCount,
		"monthly_uploads": snapshot.MonthlyUploads,
		"pdf_limit":       perms.PDFLimit,
		"upload_limit":    perms.MonthlyUploads,
	})
}

// getStats returns the dashboard summary, combining the profile with
// current counters and remaining headroom.
func (h *MeHandlers) getStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	user, err := h.profiles.GetProfile(r.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			httputil.WriteNotFoundError(w, "profile not found")
			return
		}
		h.logger.WithError(err).Error("failed to load profile")
		httputil.WriteInternalError(w, err)
		return
	}

	snapshot, err := h.usage.Snapshot(r.Context(), caller.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to load usage snapshot")
		httputil.WriteInternalError(w, err)
		return
	}

	perms := user.Permissions()
	remainingPDFs := perms.PDFLimit - snapshot.PDFCount
	if remainingPDFs < 0 {
		remainingPDFs = 0
	}
	remainingUploads := perms.MonthlyUploads - snapshot.MonthlyUploads
	if remainingUploads < 0 {
		remainingUploads = 0
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"role":              user.Role,
		"is_admin":          user.IsAdmin,
		"member_since":      user.CreatedAt,
		"pdf_count":         snapshot.PDFCount,
		"monthly_uploads":   snapshot.MonthlyUploads,
		"pdfs_remaining":    remainingPDFs,
		"uploads_remaining": remainingUploads,
		"features":          auth.DeriveFeatures(user.Role, snapshot),
	})
}
