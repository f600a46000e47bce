package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/audit"
	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/pdfs"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
)

// AdminHandlers serves the admin dashboard routes. The route guard
// already enforces admin access on /admin* and super admin access on
// /admin/super*; handlers re-check the specific permission so direct
// service calls stay safe.
type AdminHandlers struct {
	profiles *profiles.Store
	sessions *session.Manager
	pdfs     *pdfs.Service
	audit    *audit.Recorder
	logger   *observability.Logger
}

// NewAdminHandlers creates admin handlers. audit may be nil.
func NewAdminHandlers(profileStore *profiles.Store, sessions *session.Manager, pdfService *pdfs.Service, recorder *audit.Recorder, logger *observability.Logger) *AdminHandlers {
	return &AdminHandlers{
		profiles: profileStore,
		sessions: sessions,
		pdfs:     pdfService,
		audit:    recorder,
		logger:   logger.WithField("component", "admin_handlers"),
	}
}

// RegisterRoutes registers admin routes
func (h *AdminHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/users", h.listUsers).Methods("GET")
	router.HandleFunc("/admin/users/{id}", h.getUser).Methods("GET")
	router.HandleFunc("/admin/stats", h.stats).Methods("GET")

	router.HandleFunc("/admin/super/users/{id}/role", h.setRole).Methods("PUT")
	router.HandleFunc("/admin/super/users/{id}/admin-flag", h.setAdminFlag).Methods("PUT")
	router.HandleFunc("/admin/super/users/{id}/sessions", h.revokeSessions).Methods("DELETE")
	router.HandleFunc("/admin/super/admins", h.listAdmins).Methods("GET")
	router.HandleFunc("/admin/super/audit", h.listAudit).Methods("GET")
}

func (h *AdminHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !auth.IsAdminLevel(caller.Role, caller.IsAdmin) {
		httputil.WriteForbidden(w, "admin access required")
		return
	}

	limit, offset := pageParams(r)
	users, total, err := h.profiles.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("failed to list users")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *AdminHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !auth.IsAdminLevel(caller.Role, caller.IsAdmin) {
		httputil.WriteForbidden(w, "admin access required")
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.profiles.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			httputil.WriteNotFoundError(w, "user not found")
			return
		}
		h.logger.WithError(err).Error("failed to load user")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

func (h *AdminHandlers) stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !auth.IsAdminLevel(caller.Role, caller.IsAdmin) {
		httputil.WriteForbidden(w, "admin access required")
		return
	}

	userCount, err := h.profiles.Count(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to count users")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"user_count": userCount,
	})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// setRole changes a user's role. Super admin only.
func (h *AdminHandlers) setRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !caller.Permissions().CanManageUsers {
		httputil.WriteForbidden(w, "role changes require super admin")
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req setRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	role := auth.Role(req.Role)
	if !auth.ValidRole(role) {
		httputil.WriteValidationError(w, "unknown role")
		return
	}

	if err := h.profiles.UpdateRole(r.Context(), id, role); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			httputil.WriteNotFoundError(w, "user not found")
			return
		}
		h.logger.WithError(err).Error("failed to update role")
		httputil.WriteInternalError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id":    id,
		"role":       role,
		"changed_by": caller.ID,
	}).Info("user role changed")
	if h.audit != nil {
		h.audit.Record(r.Context(), audit.EventRoleChange, caller.ID, id,
			map[string]interface{}{"role": string(role)})
	}
	httputil.WriteNoContent(w)
}

type setAdminFlagRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// setAdminFlag toggles the standalone admin flag. Super admin only.
func (h *AdminHandlers) setAdminFlag(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !caller.Permissions().CanManageAdmins {
		httputil.WriteForbidden(w, "admin flag changes require super admin")
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req setAdminFlagRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.profiles.SetAdminFlag(r.Context(), id, req.IsAdmin); err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			httputil.WriteNotFoundError(w, "user not found")
			return
		}
		h.logger.WithError(err).Error("failed to update admin flag")
		httputil.WriteInternalError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id":    id,
		"is_admin":   req.IsAdmin,
		"changed_by": caller.ID,
	}).Info("admin flag changed")
	if h.audit != nil {
		h.audit.Record(r.Context(), audit.EventAdminFlagChange, caller.ID, id,
			map[string]interface{}{"is_admin": req.IsAdmin})
	}
	httputil.WriteNoContent(w)
}

// revokeSessions signs a user out everywhere. Used after a role change
// so the shorter refresh interval is not the only recourse.
func (h *AdminHandlers) revokeSessions(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !caller.Permissions().CanManageUsers {
		httputil.WriteForbidden(w, "session revocation requires super admin")
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	revoked, err := h.sessions.SignOutAll(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("failed to revoke sessions")
		httputil.WriteInternalError(w, err)
		return
	}

	if h.audit != nil {
		h.audit.Record(r.Context(), audit.EventSessionsRevoked, caller.ID, id,
			map[string]interface{}{"revoked": revoked})
	}
	httputil.WriteSuccess(w, map[string]interface{}{"revoked": revoked})
}

// listAudit returns the admin action trail. Super admin only.
func (h *AdminHandlers) listAudit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !caller.Permissions().CanManageAdmins {
		httputil.WriteForbidden(w, "audit trail requires super admin")
		return
	}
	if h.audit == nil {
		httputil.WriteSuccess(w, map[string]interface{}{"events": []*audit.Event{}})
		return
	}

	limit, offset := pageParams(r)
	events, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("failed to list audit events")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"events": events})
}

func (h *AdminHandlers) listAdmins(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if !caller.Permissions().CanManageAdmins {
		httputil.WriteForbidden(w, "admin listing requires super admin")
		return
	}

	admins, err := h.profiles.ListAdmins(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list admins")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"admins": admins})
}
