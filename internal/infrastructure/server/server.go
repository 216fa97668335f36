package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/gmlportal/desktop/backend/internal/api/http"
	"github.com/gmlportal/desktop/backend/internal/api/middleware"
	"github.com/gmlportal/desktop/backend/internal/api/ws"
	"github.com/gmlportal/desktop/backend/internal/domain/catalog"
	"github.com/gmlportal/desktop/backend/internal/domain/preferences"
	"github.com/gmlportal/desktop/backend/internal/domain/status"
	"github.com/gmlportal/desktop/backend/internal/domain/terminal"
	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/domain/viewport"
	"github.com/gmlportal/desktop/backend/internal/domain/window"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/config"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/logging"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/storage"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/tracing"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// Option customizes server construction
type Option func(*options)

type options struct {
	logger *logging.Logger
	prober status.Prober
}

// WithLogger uses logger instead of building one from the config
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProber replaces the HTTP prober used by the status monitor
func WithProber(prober status.Prober) Option {
	return func(o *options) { o.prober = prober }
}

// Server wraps the HTTP server and dependencies
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	hub        *ws.Hub

	catalog   *catalog.Catalog
	windows   *window.Manager
	prefs     *preferences.Preferences
	terminals *terminal.Manager
	monitor   *status.Monitor

	store   storage.Store
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	geom := geometry(cfg.Window)
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid window geometry: %w", err)
	}

	logger.Info("initializing GML Portal desktop server",
		zap.String("addr", cfg.Server.Address()),
		zap.String("store", cfg.Storage.Driver),
	)

	// Metrics first, every component reports into them
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("desktop", logger.Logger)

	store, err := storage.Open(storage.Config{
		Driver:     cfg.Storage.Driver,
		Dir:        cfg.Storage.Dir,
		SQLitePath: cfg.Storage.SQLitePath,
	})
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	store = storage.WithMetrics(store, metrics)

	apps := catalog.NewDefault().
		WithLogger(logger.Component("catalog")).
		WithMetrics(metrics)
	if cfg.Catalog.File != "" {
		if err := apps.LoadFile(cfg.Catalog.File); err != nil {
			logger.Warn("catalog file unusable, keeping built-in catalog",
				zap.String("path", cfg.Catalog.File), zap.Error(err))
		}
	}

	prefs := preferences.New(store).WithLogger(logger.Component("preferences"))
	if err := prefs.Load(context.Background(), apps.Has); err != nil {
		logger.Warn("some preferences could not be restored", zap.Error(err))
	}
	settings := prefs.Settings()

	tracker := viewport.NewTracker(settings.ShowDock)
	windows := window.NewManager(apps, geom).
		WithLaunchRecorder(prefs).
		WithExclusions(prefs).
		WithViewport(tracker).
		WithMetrics(metrics).
		WithLogger(logger.Component("window"))

	fs := vfs.New()
	terminals := terminal.NewManager(fs).
		WithMetrics(metrics).
		WithLogger(logger.Component("terminal"))
	terminals.Configure(settings.TerminalHistoryLimit, settings.TerminalEasterEggsEnabled)

	var httpProber *status.HTTPProber
	prober := o.prober
	if prober == nil {
		pcfg := status.DefaultProberConfig()
		pcfg.Timeout = cfg.Status.ProbeTimeout
		pcfg.RPS = cfg.Status.ProbeRPS
		pcfg.Retries = cfg.Status.ProbeRetries
		httpProber = status.NewHTTPProber(pcfg).
			WithMetrics(metrics).
			WithLogger(logger.Component("status"))
		prober = httpProber
	}
	monitor := status.NewMonitor(apps, prober).
		WithMetrics(metrics).
		WithLogger(logger.Component("status"))

	hub := ws.NewHub(cfg.CORS.AllowOrigins).
		WithMetrics(metrics).
		WithLogger(logger.Logger)

	// Event fan-out
	windows.Subscribe(hub.Publish)
	windows.Subscribe(func(ev types.Event) {
		if ev.Type == types.EventWindowClosed {
			terminals.CloseWindow(ev.WindowID)
		}
	})
	monitor.Subscribe(hub.Publish)

	prefs.OnSettingsChange(func(old, updated preferences.Settings) {
		tracker.SetDockVisible(updated.ShowDock)
		terminals.Configure(updated.TerminalHistoryLimit, updated.TerminalEasterEggsEnabled)
		if old.AutoStartMonitoring != updated.AutoStartMonitoring ||
			old.StatusMonitorIntervalMs != updated.StatusMonitorIntervalMs {
			monitor.Configure(updated.AutoStartMonitoring, updated.StatusInterval())
		}
	})

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(logger.Component("http")))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.CORS(middleware.CORSConfigForOrigins(cfg.CORS.AllowOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           middleware.DefaultIdleTTL,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Dependencies{
		Catalog:     apps,
		Windows:     windows,
		Preferences: prefs,
		Viewport:    tracker,
		FS:          fs,
		Terminals:   terminals,
		Monitor:     monitor,
		Prober:      httpProber,
		Metrics:     metrics,
		Logger:      logger.Logger,
	})
	apihttp.RegisterRoutes(router, handlers)
	router.GET("/stream", hub.HandleConnection)

	logger.Info("server initialized", zap.Int("apps", len(apps.IDs())))

	return &Server{
		config: cfg,
		router: router,
		httpServer: &http.Server{
			Addr:    cfg.Server.Address(),
			Handler: compress(router),
		},
		hub:       hub,
		catalog:   apps,
		windows:   windows,
		prefs:     prefs,
		terminals: terminals,
		monitor:   monitor,
		store:     store,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Handler returns the HTTP handler the listener serves
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves HTTP, the status monitor and the catalog watcher until ctx is
// cancelled, then shuts the listener down gracefully
func (s *Server) Run(ctx context.Context) error {
	settings := s.prefs.Settings()
	s.monitor.Configure(settings.AutoStartMonitoring, settings.StatusInterval())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.config.Catalog.File != "" && s.config.Catalog.Watch {
		g.Go(func() error {
			if err := s.catalog.Watch(ctx, s.config.Catalog.File, s.onCatalogReload); err != nil {
				s.logger.Warn("catalog watcher unavailable", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		s.hub.Close()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// onCatalogReload runs after the catalog file changes on disk
func (s *Server) onCatalogReload() {
	s.logger.Info("catalog reloaded", zap.Int("apps", len(s.catalog.IDs())))
	if s.monitor.Running() {
		go s.monitor.CheckNow(context.Background())
	}
}

// Close stops background work and releases the store and logger
func (s *Server) Close() error {
	s.logger.Info("shutting down server")

	s.monitor.Stop()
	s.hub.Close()
	s.tracer.Close()

	var errs []error
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close preference store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	if err := s.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// compress gzips REST responses. The event stream is served directly
// since upgraded connections must not pass through the gzip writer.
func compress(router *gin.Engine) http.Handler {
	gz := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stream" {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

func geometry(cfg config.WindowConfig) window.GeometryConfig {
	g := window.DefaultGeometry()
	g.TopMargin = cfg.TopMargin
	g.DockMargin = cfg.DockMargin
	g.CompactBreakpoint = cfg.CompactBreakpoint
	return g
}
