// Package api serves configuration checks over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"github.com/nauticalab/propbind/internal/auth"
	"github.com/nauticalab/propbind/internal/catalog"
	"github.com/nauticalab/propbind/internal/metrics"
)

// Server represents the HTTP API server
type Server struct {
	router    *chi.Mux
	handler   *Handler
	providers map[string]auth.AuthProvider
	http      catalog.HTTPConfig
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	HTTP       catalog.HTTPConfig
	Auth       catalog.AuthConfig
	Kubernetes catalog.KubernetesConfig
	Catalog    *catalog.Catalog
	// ConfigMaps is required when Kubernetes.Enabled is set
	ConfigMaps ConfigMapSource
	// Reviewer is required when the k8s-sa provider is enabled
	Reviewer    auth.TokenReviewer
	Metrics     *metrics.Metrics
	MetricsPath string
	Version     string
	GitCommit   string
	BuildTime   string
	GoVersion   string
}

// NewServer creates a new API server with the given configuration
func NewServer(config ServerConfig) (*Server, error) {
	if config.Catalog == nil {
		config.Catalog = catalog.New()
	}

	// authentication only guards the cluster routes
	providers := map[string]auth.AuthProvider{}
	if config.Kubernetes.Enabled {
		var err error
		if providers, err = buildProviders(config); err != nil {
			return nil, err
		}
	}

	handler := &Handler{
		catalog:          config.Catalog,
		labelSelector:    config.Kubernetes.LabelSelector,
		sharedNamespaces: config.Auth.SharedNamespaces,
		authenticated:    len(providers) > 0,
		maxBodyBytes:     config.HTTP.MaxBodySize.Value(),
		metrics:          config.Metrics,
		version:          config.Version,
		gitCommit:        config.GitCommit,
		buildTime:        config.BuildTime,
		goVersion:        config.GoVersion,
	}
	if handler.maxBodyBytes <= 0 {
		handler.maxBodyBytes = 1 << 20
	}
	if config.Kubernetes.Enabled {
		if config.ConfigMaps == nil {
			return nil, errors.New("kubernetes access is enabled but no ConfigMap source was provided")
		}
		handler.configMaps = config.ConfigMaps
	}

	router := chi.NewRouter()
	setupMiddleware(router, config.HTTP)
	setupRoutes(router, handler, providers)

	metricsPath := config.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	router.Handle(metricsPath, config.Metrics.Handler())

	return &Server{
		router:    router,
		handler:   handler,
		providers: providers,
		http:      config.HTTP,
	}, nil
}

func buildProviders(config ServerConfig) (map[string]auth.AuthProvider, error) {
	providers := make(map[string]auth.AuthProvider)
	for _, p := range config.Auth.Providers {
		switch p {
		case catalog.ProviderServiceAccount:
			if config.Reviewer == nil {
				return nil, errors.New("the k8s-sa provider needs a TokenReview client")
			}
			providers[string(p)] = auth.NewK8sSAProvider(config.Reviewer, config.Auth.Audience)
		case catalog.ProviderStatic:
			providers[string(p)] = auth.NewStaticTokenProvider(config.Auth.StaticToken, config.Auth.StaticNamespace)
		default:
			return nil, fmt.Errorf("unknown auth provider %q", p)
		}
	}
	return providers, nil
}

// setupMiddleware configures the middleware chain
func setupMiddleware(router *chi.Mux, cfg catalog.HTTPConfig) {
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log.Logger))
	router.Use(middleware.Recoverer)

	if cfg.RateLimit > 0 {
		router.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	if cfg.WriteTimeout > 0 {
		router.Use(middleware.Timeout(cfg.WriteTimeout))
	}
}

// setupRoutes configures the API routes
func setupRoutes(router *chi.Mux, handler *Handler, providers map[string]auth.AuthProvider) {
	router.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", handler.Health)
		r.Get("/version", handler.Version)
		r.Get("/modules", handler.ListModules)
		r.Get("/modules/{module}", handler.DescribeModule)
		r.Post("/modules/{module}/validate", handler.ValidateModule)

		// Cluster endpoints, authenticated when any provider is enabled
		r.Group(func(r chi.Router) {
			if len(providers) > 0 {
				r.Use(auth.Middleware(providers))
			}
			r.Get("/configmaps/{namespace}", handler.ListConfigMaps)
			r.Get("/configmaps/{namespace}/{name}/validate", handler.ValidateConfigMap)
		})
	})
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartWithContext starts the HTTP server with graceful shutdown support
func (s *Server) StartWithContext(ctx context.Context) error {
	log.Info().
		Str("addr", s.http.Address).
		Strs("providers", s.getProviderNames()).
		Msg("starting API server")

	server := &http.Server{
		Addr:         s.http.Address,
		Handler:      s.router,
		ReadTimeout:  s.http.ReadTimeout,
		WriteTimeout: s.http.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.http.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		log.Info().Msg("server stopped gracefully")
		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// getProviderNames returns the registered provider names, sorted
func (s *Server) getProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
