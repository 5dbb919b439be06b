package application

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/uld-packer/internal/api"
	"github.com/eugenenazirov/uld-packer/internal/config"
	"github.com/eugenenazirov/uld-packer/internal/metrics"
	"github.com/eugenenazirov/uld-packer/internal/planner"
	"github.com/eugenenazirov/uld-packer/internal/solver"
	"github.com/eugenenazirov/uld-packer/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	planner planner.Planner
	metrics *metrics.Metrics
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	for name, c := range cfg.Containers {
		if err := store.PutContainer(name, c); err != nil {
			return nil, fmt.Errorf("failed to apply container preset %s: %w", name, err)
		}
	}

	m := metrics.New()
	bnb := solver.NewBranchAndBound(
		solver.WithTimeLimit(cfg.SolverTimeLimit),
		solver.WithNodeLimit(cfg.SolverNodeLimit),
		solver.WithLogger(logger.Named("solver")),
	)
	plan := planner.New(bnb,
		planner.WithRecorder(m),
		planner.WithLogger(logger.Named("planner")),
		planner.WithMaxBoxes(cfg.MaxBoxes),
	)

	handler := api.NewHandler(plan, store, api.WithDefaultFormulation(cfg.Formulation))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMetrics(m),
	)

	rootHandler, err := BuildRootHandler(apiRouter, m.Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	server := NewServer(cfg, rootHandler)

	return &App{
		storage: store,
		planner: plan,
		metrics: m,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  server,
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that serves static files,
// routes API requests and, when metricsHandler is non-nil, exposes /metrics.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
