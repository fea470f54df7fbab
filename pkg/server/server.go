// Package server exposes an operational HTTP surface for a worker pool:
// health, stats, Prometheus metrics, slow-task log, a live WebSocket stats
// stream, and an optional GraphQL API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/mnohosten/taskpool/pkg/auth"
	gql "github.com/mnohosten/taskpool/pkg/graphql"
	"github.com/mnohosten/taskpool/pkg/metrics"
	"github.com/mnohosten/taskpool/pkg/pool"
	"github.com/mnohosten/taskpool/pkg/server/handlers"
)

// Server represents the operational HTTP server attached to a worker pool
type Server struct {
	config        *Config
	pool          *pool.Pool
	router        *chi.Mux
	httpSrv       *http.Server
	startTime     time.Time
	collector     *metrics.MetricsCollector
	tracker       *metrics.ResourceTracker
	slowLog       *metrics.SlowTaskLog
	promExporter  *metrics.PrometheusExporter
	streamManager *handlers.StatsStreamManager
	authStore     *auth.Store
}

// New creates a new HTTP server instance observing the given pool
func New(config *Config, p *pool.Pool) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pool must not be nil")
	}

	// Validate TLS configuration
	if config.EnableTLS {
		if config.TLSCertFile == "" || config.TLSKeyFile == "" {
			return nil, fmt.Errorf("TLS enabled but certificate or key file not specified")
		}
		if _, err := os.Stat(config.TLSCertFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS certificate file not found: %s", config.TLSCertFile)
		}
		if _, err := os.Stat(config.TLSKeyFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS key file not found: %s", config.TLSKeyFile)
		}
	}

	// Create instrumentation
	collector := metrics.NewMetricsCollector()
	tracker := metrics.NewResourceTracker(nil) // Use default config
	slowLog, err := metrics.NewSlowTaskLog(&metrics.SlowTaskLogConfig{
		Threshold:   config.SlowTaskThreshold,
		MaxEntries:  1000,
		LogFilePath: config.SlowTaskLogFile,
		Enabled:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create slow task log: %w", err)
	}

	srv := &Server{
		config:       config,
		pool:         p,
		router:       chi.NewRouter(),
		startTime:    time.Now(),
		collector:    collector,
		tracker:      tracker,
		slowLog:      slowLog,
		promExporter: metrics.NewPrometheusExporter(collector, tracker),
	}

	// Setup authentication
	if config.EnableAuth {
		if config.AdminUser == "" || config.AdminPassword == "" {
			return nil, fmt.Errorf("auth enabled but admin credentials not specified")
		}
		srv.authStore = auth.NewStore()
		if err := srv.authStore.CreateUser(config.AdminUser, config.AdminPassword, auth.RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to create admin user: %w", err)
		}
	}

	// Setup middleware
	srv.setupMiddleware()

	// Setup routes
	srv.setupRoutes()

	// Setup GraphQL routes if enabled
	if config.EnableGraphQL {
		if err := srv.setupGraphQLRoutes(); err != nil {
			return nil, fmt.Errorf("failed to setup GraphQL routes: %w", err)
		}
	}

	// Create HTTP server; gzip compression wraps the whole router
	var handler http.Handler = srv.router
	if config.EnableGzip {
		handler = gzhttp.GzipHandler(handler)
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return srv, nil
}

// Collector returns the metrics collector so the embedding application can
// record task and stack activity
func (s *Server) Collector() *metrics.MetricsCollector {
	return s.collector
}

// SlowLog returns the slow task log
func (s *Server) SlowLog() *metrics.SlowTaskLog {
	return s.slowLog
}

// Handler returns the fully configured HTTP handler, for tests and for
// embedding into an existing server
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// setupMiddleware configures HTTP middleware stack
func (s *Server) setupMiddleware() {
	// Request ID middleware
	s.router.Use(middleware.RequestID)

	// Real IP middleware
	s.router.Use(middleware.RealIP)

	// Recovery middleware to recover from panics
	s.router.Use(middleware.Recoverer)

	// Request logging
	if s.config.EnableLogging {
		s.router.Use(middleware.Logger)
	}

	// CORS middleware
	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	// Request size limit
	s.router.Use(s.requestSizeLimitMiddleware)

	// Timeout middleware
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	h := handlers.New(s.pool, s.collector, s.tracker, s.slowLog)

	s.streamManager = handlers.NewStatsStreamManager(h, s.config.StatsInterval)

	// Health and stats endpoints
	s.router.Get("/_health", h.Health(s.startTime))
	s.router.Get("/_stats", h.GetStats)
	s.router.Get("/_resources", h.GetResources)
	s.router.Get("/_slowtasks", h.GetSlowTasks)

	// Prometheus metrics endpoint
	s.router.Get("/_metrics", s.handlePrometheusMetrics)

	// Live stats stream
	s.router.Get("/ws/stats", s.streamManager.HandleStatsStream)

	// Admin endpoints
	if s.authStore != nil {
		s.router.Post("/_login", s.handleLogin)
		s.router.With(s.authStore.Middleware(auth.PermissionManagePool)).
			Post("/_pool/shutdown", h.ShutdownPool)
	} else {
		s.router.Post("/_pool/shutdown", h.ShutdownPool)
	}
}

// setupGraphQLRoutes configures GraphQL routes
func (s *Server) setupGraphQLRoutes() error {
	graphqlHandler, err := gql.NewHandler(s.pool, s.collector, s.tracker)
	if err != nil {
		return fmt.Errorf("failed to create GraphQL handler: %w", err)
	}

	// Mount GraphQL endpoint
	s.router.Post("/graphql", graphqlHandler.ServeHTTP)

	// Mount GraphiQL playground (interactive UI)
	s.router.Get("/graphiql", gql.GraphiQLHandler())

	return nil
}

// handleLogin exchanges credentials for a bearer token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.authStore.Authenticate(req.Username, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// corsMiddleware handles CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.config.AllowedOrigins) > 0 {
			origin = s.config.AllowedOrigins[0]
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestSizeLimitMiddleware limits request body size
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// handlePrometheusMetrics handles the Prometheus metrics endpoint
func (s *Server) handlePrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	// Set Prometheus text format content type
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	if err := s.promExporter.WriteMetrics(w); err != nil {
		http.Error(w, fmt.Sprintf("Error writing metrics: %v", err), http.StatusInternalServerError)
		return
	}
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully: HTTP first, then the stream manager, tracker, and pool.
func (s *Server) Start() error {
	protocol := "http"
	if s.config.EnableTLS {
		protocol = "https"
	}

	fmt.Printf("TaskPool ops server listening on %s://%s\n", protocol, s.httpSrv.Addr)
	fmt.Printf("  workers: %d\n", s.pool.NumWorkers())
	if s.config.EnableGraphQL {
		fmt.Println("  GraphQL endpoint: /graphql")
		fmt.Println("  GraphiQL playground: /graphiql")
	}

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.EnableTLS {
			err = s.httpSrv.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("\nReceived %v, shutting down...\n", sig)
		return s.Stop()
	}
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpSrv.Shutdown(ctx)

	s.streamManager.Close()
	s.tracker.Stop()
	s.slowLog.Close()

	// Drain outstanding work before the process exits
	s.pool.ShutdownAndDrain()

	return err
}
