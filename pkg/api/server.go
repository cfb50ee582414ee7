package api

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/httputil"
	"github.com/platinummonkey/signup/pkg/observability"
	"github.com/platinummonkey/signup/pkg/submission"
)

// PathPrefix is the prefix under which the routes are mounted a second time
const PathPrefix = "/api"

// Config wires the server's dependencies. Catalog and Gateway are required.
type Config struct {
	Catalog   catalog.Provider
	Gateway   submission.Gateway
	Validator *form.Validator
	Logger    *logrus.Logger
	Metrics   *observability.Metrics
	// RateLimiter guards POST /submit when set
	RateLimiter  *httputil.RateLimiter
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *logrus.Logger

	catalogHandlers *CatalogHandlers
	submitHandlers  *SubmitHandlers
}

// NewServer creates a new API server
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetOutput(io.Discard)
	}
	if cfg.Validator == nil {
		cfg.Validator = form.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}

	s := &Server{
		router:          mux.NewRouter(),
		logger:          cfg.Logger,
		catalogHandlers: NewCatalogHandlers(cfg.Catalog, cfg.Logger, cfg.Metrics),
		submitHandlers:  NewSubmitHandlers(cfg.Gateway, cfg.Validator, cfg.Logger, cfg.Metrics, cfg.RateLimiter),
	}

	s.setupRoutes(cfg)

	s.handler = httputil.Chain(
		httputil.RecoveryMiddleware(cfg.Logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(cfg.Logger),
		httputil.CORSMiddleware(cfg.CORSOrigins),
		httputil.MaxBytesMiddleware(cfg.MaxBodyBytes),
	)(otelhttp.NewHandler(s.router, "signup-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(cfg Config) {
	if cfg.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(cfg.Metrics))
	}

	s.RegisterRoutes(s.catalogHandlers)
	s.RegisterRoutes(s.submitHandlers)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RegisterRoutes registers routes from a RouteRegistrar at the root and
// under PathPrefix
func (s *Server) RegisterRoutes(registrar RouteRegistrar) {
	registrar.RegisterRoutes(s.router)
	registrar.RegisterRoutes(s.router.PathPrefix(PathPrefix).Subrouter())
}
