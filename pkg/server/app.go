package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MillionaireMaker/internal/domain/repository"
	"MillionaireMaker/pkg/cache"
	pkgch "MillionaireMaker/pkg/clickhouse"
	"MillionaireMaker/pkg/config"
	xhttp "MillionaireMaker/pkg/http"
	pkgkafka "MillionaireMaker/pkg/kafka"
	applogger "MillionaireMaker/pkg/logger"
	pkgpg "MillionaireMaker/pkg/postgres"
	"MillionaireMaker/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	pub        repository.Publisher
	pg         *pkgpg.Client
	redis      *cache.RedisCache
	chClient   *pkgch.Client
	consumer   *pkgkafka.Consumer
	dh         pkgkafka.MessageHandler
	queue      *queue.RedisQueue
}

// New creates a new App. Optional components are attached with the setters.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server, pub repository.Publisher) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		pub:        pub,
	}
}

func (a *App) SetPostgres(pg *pkgpg.Client) { a.pg = pg }
func (a *App) SetRedis(rc *cache.RedisCache) { a.redis = rc }
func (a *App) SetClickHouse(ch *pkgch.Client) { a.chClient = ch }
func (a *App) SetQueue(q *queue.RedisQueue) { a.queue = q }

// SetConsumer attaches the draw ingestion consumer and its handler.
func (a *App) SetConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	a.consumer = c
	a.dh = h
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Start launches the job workers, the draw consumer and the HTTP server.
func (a *App) Start() error {
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.l.Error("job queue start error", applogger.Error(err))
			return err
		}
		a.l.Info("job queue started", applogger.Int("workers", a.cfg.Jobs.Workers))
	}

	if a.consumer != nil && a.dh != nil {
		a.consumer.RegisterHandler(a.dh)
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.dh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// Shutdown stops intake first, then drains workers and closes clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.l.Warn("postgres close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
