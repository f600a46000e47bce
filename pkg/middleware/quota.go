package middleware

import (
	"net/http"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

// QuotaMiddleware enforces upload quotas on PDF creation routes.
// Must run after SessionMiddleware; without an identity it denies.
type QuotaMiddleware struct {
	usage   *usage.Store
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewQuotaMiddleware creates the quota middleware
func NewQuotaMiddleware(usageStore *usage.Store, metrics *observability.Metrics, logger *observability.Logger) *QuotaMiddleware {
	return &QuotaMiddleware{
		usage:   usageStore,
		metrics: metrics,
		logger:  logger,
	}
}

// EnforceUploadQuota rejects uploads from users at their PDF or
// monthly limit
func (m *QuotaMiddleware) EnforceUploadQuota(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		snapshot, err := m.usage.Snapshot(r.Context(), identity.UserID)
		if err != nil {
			m.logger.WithError(err).Error("failed to read usage counters")
			httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to check upload quota")
			return
		}

		features := auth.DeriveFeatures(identity.Role, snapshot)
		if !features.CanUpload {
			if m.metrics != nil {
				m.metrics.QuotaDenialsTotal.WithLabelValues("upload").Inc()
			}
			httputil.WriteErrorMessage(w, http.StatusForbidden, "upload quota exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
