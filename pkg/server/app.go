package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "FitPull/internal/domain/repository"
	"FitPull/internal/usecase"
	pkgch "FitPull/pkg/clickhouse"
	"FitPull/pkg/config"
	xhttp "FitPull/pkg/http"
	applogger "FitPull/pkg/logger"
	"FitPull/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	queue      *queue.RedisQueue
	batchJob   *usecase.TrainBatchJob
	handler    xhttp.Handler
	chClient   *pkgch.Client
	publisher  domrepo.Publisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	q *queue.RedisQueue,
	batchJob *usecase.TrainBatchJob,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	publisher domrepo.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		queue:     q,
		batchJob:  batchJob,
		handler:   handler,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	// Queue workers pick up deferred batches enqueued by the HTTP layer.
	a.queue.RegisterJob(a.batchJob)
	if err := a.queue.Start(); err != nil {
		a.l.Error("queue start error", applogger.Error(err))
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("service started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Int("queue_workers", a.cfg.Queue.Workers))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// Let in-flight batches finish before closing their sinks.
	if err := a.queue.Stop(ctx); err != nil {
		a.l.Warn("queue stop error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
