package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "RegimePulse/internal/domain/repository"
	"RegimePulse/internal/usecase"
	pkgch "RegimePulse/pkg/clickhouse"
	"RegimePulse/pkg/config"
	xhttp "RegimePulse/pkg/http"
	applogger "RegimePulse/pkg/logger"
	"RegimePulse/pkg/queue"
)

// App encapsulates the service lifecycle: live price stream, refresh loop,
// and the HTTP API.
type App struct {
	cfg        *config.Config
	engine     *usecase.Engine
	watcher    *usecase.Watcher
	publisher  drepo.Publisher
	stream     drepo.PriceStream
	chClient   *pkgch.Client
	handler    xhttp.Handler
	alerts     *queue.RedisQueue
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates an App. publisher, stream, chClient and alerts may be nil when
// the matching backends are disabled.
func New(
	cfg *config.Config,
	engine *usecase.Engine,
	watcher *usecase.Watcher,
	publisher drepo.Publisher,
	stream drepo.PriceStream,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	alerts *queue.RedisQueue,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		engine:    engine,
		watcher:   watcher,
		publisher: publisher,
		stream:    stream,
		chClient:  chClient,
		handler:   handler,
		alerts:    alerts,
		log:       log,
	}
}

// Engine exposes the analysis engine for one-shot CLI runs.
func (a *App) Engine() *usecase.Engine {
	return a.engine
}

// Close releases backend connections without starting the server.
func (a *App) Close() error {
	return a.shutdown(context.Background())
}

// Run starts everything and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.chClient != nil {
		if err := a.chClient.Health(ctx); err != nil {
			a.log.Warn("clickhouse unreachable at startup", applogger.Error(err))
		}
	}

	if a.stream != nil && a.cfg.Stream.Enabled {
		if err := a.stream.Connect(ctx); err != nil {
			a.log.Warn("price stream connect failed", applogger.Error(err))
		}
	}

	if a.alerts != nil {
		if err := a.alerts.Start(); err != nil {
			a.log.Warn("alert queue start failed", applogger.Error(err))
		} else {
			a.alerts.StartRetryProcessor()
		}
	}

	go a.watcher.Run(ctx)
	a.log.Info("refresh loop started",
		applogger.Duration("interval", a.cfg.Engine.RefreshInterval.D()))

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout.D(), a.cfg.Server.WriteTimeout.D(), a.cfg.Server.ShutdownTimeout.D()),
		xhttp.WithRequestMetrics(a.log, time.Second),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout.D()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("price stream close error", applogger.Error(err))
		}
	}

	if a.alerts != nil {
		if err := a.alerts.Stop(shutdownCtx); err != nil {
			a.log.Warn("alert queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
