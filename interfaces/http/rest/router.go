// Package rest builds the chi routers of the four services.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/infrastructure/config"
	"github.com/jameslaisianto/Back-end-web-dev/interfaces/http/rest/handlers"
	"github.com/jameslaisianto/Back-end-web-dev/interfaces/http/rest/middleware"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/auth"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// Router creates and configures the HTTP routers
type Router struct {
	logger         *zap.Logger
	metrics        *observability.Collector
	errors         *pkgerrors.ErrorHandler
	adapter        *handlers.Adapter
	enableCORS     bool
	requestTimeout time.Duration
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *Router {
	errorHandler := pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
	return &Router{
		logger:         logger,
		metrics:        metrics,
		errors:         errorHandler,
		adapter:        handlers.NewAdapter(errorHandler, logger),
		enableCORS:     cfg.EnableCORS,
		requestTimeout: cfg.RequestTimeout,
	}
}

// Auth serves token issuance. limiter may be nil to disable rate limiting.
func (rt *Router) Auth(h *handlers.AuthHandler, limiter *auth.IPRateLimiter) http.Handler {
	router := rt.base()
	router.Group(func(r chi.Router) {
		rt.limit(r, limiter)
		rt.handle(r, http.MethodGet, "GetReadToken", h.GetReadToken)
		rt.handle(r, http.MethodGet, "GetUpdateToken", h.GetUpdateToken)
	})
	return router
}

// Resource serves the token-authenticated entity paths and table admin
func (rt *Router) Resource(h *handlers.ResourceHandler) http.Handler {
	router := rt.base()
	rt.handle(router, http.MethodGet, "ReadEntityAuth", h.ReadEntityAuth)
	rt.handle(router, http.MethodPut, "UpdateEntityAuth", h.UpdateEntityAuth)

	rt.handle(router, http.MethodPost, "CreateTableAdmin", h.CreateTable)
	rt.handle(router, http.MethodDelete, "DeleteTableAdmin", h.DeleteTable)
	rt.handle(router, http.MethodGet, "ReadEntityAdmin", h.ReadEntity)
	rt.handle(router, http.MethodPut, "UpdateEntityAdmin", h.UpdateEntity)
	rt.handle(router, http.MethodDelete, "DeleteEntityAdmin", h.DeleteEntity)
	rt.handle(router, http.MethodPut, "AddPropertyAdmin", h.AddProperty)
	rt.handle(router, http.MethodPut, "UpdatePropertyAdmin", h.UpdateProperty)
	return router
}

// Session serves the user-facing operations. SignOn carries a password and
// shares the auth service's rate limit.
func (rt *Router) Session(h *handlers.SessionHandler, limiter *auth.IPRateLimiter) http.Handler {
	router := rt.base()
	router.Group(func(r chi.Router) {
		rt.limit(r, limiter)
		rt.handle(r, http.MethodPost, "SignOn", h.SignOn)
	})
	rt.handle(router, http.MethodPost, "SignOff", h.SignOff)
	rt.handle(router, http.MethodPut, "AddFriend", h.AddFriend)
	rt.handle(router, http.MethodPut, "UnFriend", h.UnFriend)
	rt.handle(router, http.MethodPut, "UpdateStatus", h.UpdateStatus)
	rt.handle(router, http.MethodGet, "ReadFriendList", h.ReadFriendList)
	return router
}

// Push serves status fan-out
func (rt *Router) Push(h *handlers.PushHandler) http.Handler {
	router := rt.base()
	rt.handle(router, http.MethodPost, "PushStatus", h.PushStatus)
	return router
}

// base builds a router with the middleware and probes every service shares
func (rt *Router) base() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.ClientIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))
	router.Use(chimiddleware.Timeout(rt.requestTimeout))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	return router
}

// handle registers op for both its bare path and any segments below it;
// the handler rejects a wrong segment count with 400.
func (rt *Router) handle(r chi.Router, method, op string, h handlers.HandlerFunc) {
	fn := rt.adapter.Wrap(h)
	r.Method(method, "/"+op, fn)
	r.Method(method, "/"+op+"/*", fn)
}

func (rt *Router) limit(r chi.Router, limiter *auth.IPRateLimiter) {
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter, rt.errors, rt.logger))
	}
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
