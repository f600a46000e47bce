package api

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/audit"
	"github.com/BDeshi155/pdf-gpt/pkg/billing"
	"github.com/BDeshi155/pdf-gpt/pkg/config"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/marketing"
	"github.com/BDeshi155/pdf-gpt/pkg/middleware"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/pdfs"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
	"github.com/BDeshi155/pdf-gpt/pkg/promotions"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
	"github.com/BDeshi155/pdf-gpt/pkg/shop"
	"github.com/BDeshi155/pdf-gpt/pkg/sso"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

// Dependencies carries everything the API server needs
type Dependencies struct {
	Config    *config.Config
	Logger    *observability.Logger
	Metrics   *observability.Metrics
	Sessions  *session.Manager
	Providers *sso.Registry
	Profiles  *profiles.Store
	Usage     *usage.Store
	PDFs      *pdfs.Service
	Shop      *shop.Service
	Promos    *promotions.Service
	Marketing *marketing.Service
	Billing   *billing.Service
	Audit     *audit.Recorder
	Redis     *redis.Client
}

// Server is the HTTP API server
type Server struct {
	router *mux.Router
	deps   Dependencies
}

// NewServer creates the server and wires the middleware chain and
// all routes
func NewServer(deps Dependencies) *Server {
	s := &Server{
		router: mux.NewRouter(),
		deps:   deps,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware installs the request pipeline, outermost first.
// Session resolution must precede the guard, which must precede rate
// limiting so authenticated requests get the per-user limit.
func (s *Server) setupMiddleware() {
	logger := s.deps.Logger

	s.router.Use(httputil.RecoveryMiddleware(logger))
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(logger))
	if s.deps.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.deps.Metrics))
	}
	if len(s.deps.Config.Server.AllowedOrigins) > 0 {
		s.router.Use(httputil.CORSMiddleware(s.deps.Config.Server.AllowedOrigins))
	}

	sessionMW := middleware.NewSessionMiddleware(s.deps.Sessions, s.deps.Config.Session.CookieName, logger)
	s.router.Use(sessionMW.Handler)
	s.router.Use(middleware.GuardMiddleware(s.deps.Metrics))

	if s.deps.Redis != nil {
		rateLimitMW := middleware.NewRateLimitMiddleware(s.deps.Redis, logger)
		s.router.Use(rateLimitMW.Handler)
	}
}

func (s *Server) setupRoutes() {
	authHandlers := NewAuthHandlers(s.deps.Sessions, s.deps.Providers, s.deps.Config, s.deps.Logger)
	authHandlers.RegisterRoutes(s.router)

	meHandlers := NewMeHandlers(s.deps.Profiles, s.deps.Usage, s.deps.Logger)
	meHandlers.RegisterRoutes(s.router)

	quotaMW := middleware.NewQuotaMiddleware(s.deps.Usage, s.deps.Metrics, s.deps.Logger)
	pdfHandlers := NewPDFHandlers(s.deps.PDFs, quotaMW, s.deps.Config.Server.MaxUploadBytes, s.deps.Logger)
	pdfHandlers.RegisterRoutes(s.router)

	shopHandlers := NewShopHandlers(s.deps.Shop, s.deps.Logger)
	shopHandlers.RegisterRoutes(s.router)

	promoHandlers := NewPromotionHandlers(s.deps.Promos, s.deps.Logger)
	promoHandlers.RegisterRoutes(s.router)

	marketingHandlers := NewMarketingHandlers(s.deps.Marketing, s.deps.Logger)
	marketingHandlers.RegisterRoutes(s.router)

	billingHandlers := NewBillingHandlers(s.deps.Billing, s.deps.Config.Billing.WebhookSecret, s.deps.Logger)
	billingHandlers.RegisterRoutes(s.router)

	adminHandlers := NewAdminHandlers(s.deps.Profiles, s.deps.Sessions, s.deps.PDFs, s.deps.Audit, s.deps.Logger)
	adminHandlers.RegisterRoutes(s.router)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for the main server setup
func (s *Server) Router() *mux.Router {
	return s.router
}
