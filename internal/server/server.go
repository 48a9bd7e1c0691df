// Package server is the composition root: it builds the data core from configuration,
// serves it over HTTP and tears everything down in order on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/preston-bernstein/nba-stats-service/internal/config"
	httpserver "github.com/preston-bernstein/nba-stats-service/internal/http"
	"github.com/preston-bernstein/nba-stats-service/internal/http/handlers"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
	"github.com/preston-bernstein/nba-stats-service/internal/poller"
	"github.com/preston-bernstein/nba-stats-service/internal/seasonsync"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	core          *Core
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	scheduler     scheduler
	metricsStop   func(context.Context) error

	shutdownOnce sync.Once
	shutdownErr  error
}

// New builds the server from cfg. Nothing is started until Run. When construction fails
// every resource already acquired is released.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, metricsSrv, metricsStop := buildMetrics(cfg, logger)

	core, err := OpenCore(ctx, cfg, logger, recorder)
	if err != nil {
		if metricsStop != nil {
			_ = metricsStop(context.Background())
		}
		return nil, err
	}

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		core:          core,
		metricsServer: metricsSrv,
		metricsStop:   metricsStop,
	}
	if cfg.Sync.Enabled {
		sched, err := seasonsync.NewScheduler(core.Syncer, cfg.Sync.Schedule, logger)
		if err != nil {
			_ = s.Shutdown(context.Background())
			return nil, err
		}
		s.scheduler = sched
	}

	plr := poller.New(core.Orchestrator, logger, recorder, cfg.PollInterval)
	s.poller = plr
	s.httpServer = buildHTTPServer(cfg, core, logger, recorder, plr.Status)
	return s, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, core *Core, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		core:       core,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildHTTPServer(cfg config.Config, core *Core, logger *slog.Logger, recorder *metrics.Recorder, statusFn func() poller.Status) httpServer {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	rc := httpserver.RouterConfig{
		Handler:     handlers.NewHandler(core.Orchestrator, logger, statusFn),
		Logger:      logger,
		Metrics:     recorder,
		CORSOrigins: cfg.CORSOrigins,
	}
	wt := writeTimeout
	if cfg.AdminToken != "" {
		rc.Admin = handlers.NewAdminHandler(core.Orchestrator, core.Syncer, cfg.AdminToken, logger)
		wt = adminWriteTimeout
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpserver.NewRouter(rc),
		ReadTimeout:  readTimeout,
		WriteTimeout: wt,
		IdleTimeout:  idleTimeout,
	}
	return netHTTPServer{srv: srv}
}

// Run starts the background work and the HTTP server, then blocks until ctx is cancelled
// or the HTTP server fails. Shutdown always runs before Run returns.
func (s *Server) Run(ctx context.Context) error {
	listenErr := make(chan error, 1)

	if s.core != nil {
		s.core.Cache.Start(ctx)
	}
	s.startMetrics()
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) { listenErr <- err })
	if s.poller != nil {
		s.poller.Start(ctx)
	}
	if s.scheduler != nil {
		s.scheduler.Start()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info(s.logger, "shutdown signal received")
	case err := <-listenErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, s.Shutdown(shutdownCtx))
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// Shutdown stops intake first and releases storage last: the sync scheduler, the HTTP
// server, the poller, telemetry, then the core. Every step runs even when an earlier one
// fails. Only the first call does any work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		var steps []closer
		if s.scheduler != nil {
			steps = append(steps, closer{"season scheduler", s.scheduler.Stop})
		}
		if s.httpServer != nil {
			steps = append(steps, closer{"http server", s.httpServer.Shutdown})
		}
		if s.poller != nil {
			steps = append(steps, closer{"poller", s.poller.Stop})
		}
		if s.metricsServer != nil {
			steps = append(steps, closer{"metrics server", s.metricsServer.Shutdown})
		}
		if s.metricsStop != nil {
			steps = append(steps, closer{"metrics exporter", s.metricsStop})
		}
		if s.core != nil {
			steps = append(steps, closer{"core", s.core.Close})
		}
		s.shutdownErr = runSteps(ctx, s.logger, steps)
		if s.shutdownErr != nil {
			logging.Warn(s.logger, "shutdown finished with errors", "error", s.shutdownErr)
			return
		}
		logging.Info(s.logger, "shutdown complete")
	})
	return s.shutdownErr
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}
	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Core exposes the data core.
func (s *Server) Core() *Core {
	return s.core
}
