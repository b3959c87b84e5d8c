package di

import (
	"context"
	"fmt"
	"time"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/domain/repository"
	"MillionaireMaker/internal/handler/api"
	internalrepo "MillionaireMaker/internal/repository"
	"MillionaireMaker/internal/service/ratelimit"
	"MillionaireMaker/internal/services/model"
	"MillionaireMaker/internal/usecase"
	"MillionaireMaker/pkg/cache"
	pkgch "MillionaireMaker/pkg/clickhouse"
	"MillionaireMaker/pkg/config"
	xhttp "MillionaireMaker/pkg/http"
	pkgkafka "MillionaireMaker/pkg/kafka"
	applogger "MillionaireMaker/pkg/logger"
	"MillionaireMaker/pkg/metrics"
	pkgpg "MillionaireMaker/pkg/postgres"
	"MillionaireMaker/pkg/queue"
	"MillionaireMaker/pkg/server"
)

// ProvideLogger creates the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvidePostgresClient opens the draw history database.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithURL(cfg.Database.URL),
		pkgpg.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns),
		pkgpg.WithConnMaxLifetime(cfg.Database.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	return client, nil
}

// ProvideDrawRepository creates the Postgres-backed draw history.
func ProvideDrawRepository(pg *pkgpg.Client, l *applogger.Logger) repository.DrawRepository {
	r := internalrepo.NewPostgresDrawRepository(pg.DB())
	r.SetLogger(l)
	return r
}

// ProvideRedisCache connects to Redis when either the profile cache or the
// job queue needs it. Returns nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Cache.Redis.Enabled && !cfg.Jobs.Enabled {
		return nil, nil
	}
	opts := []cache.RedisOption{
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	}
	if cfg.Cache.Redis.PoolSize > 0 {
		// queue workers block on BRPOP, so each needs its own connection
		opts = append(opts, cache.WithRedisPool(cfg.Cache.Redis.PoolSize+cfg.Jobs.Workers, 2, 30*time.Second))
	}
	rc, err := cache.NewRedisCache(opts...)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService layers a small in-process cache over Redis, or uses
// the in-process cache alone when Redis caching is off.
func ProvideCacheService(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	if rc != nil && cfg.Cache.Redis.Enabled {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
			cache.WithLayeredMemoryTTL(time.Minute),
		)
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize))
}

// ProvideProfileCache creates the fingerprint-keyed profile cache.
func ProvideProfileCache(svc cache.Service, cfg *config.Config, l *applogger.Logger) repository.ProfileCache {
	pc := internalrepo.NewProfileCache(svc, cfg.Cache.TTL)
	pc.SetLogger(l)
	return pc
}

// ProvideClickHouseClient creates a ClickHouse client and its report tables.
// Returns nil when report archiving is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.ReportSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideReportStore archives reports in ClickHouse, or discards them.
func ProvideReportStore(ch *pkgch.Client) repository.ReportStore {
	if ch == nil {
		return internalrepo.NopReportStore{}
	}
	return internalrepo.NewClickHouseReportStore(ch.DB())
}

// ProvideKafkaProducer creates a Kafka producer. Returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, rec *metrics.Recorder) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithProducerMetrics(rec.Registry()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher publishes picks and reports through Kafka, or discards them.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PicksTopic, cfg.Kafka.ReportsTopic)
}

// ProvideKafkaConsumer creates the draw ingestion consumer. Returns nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, rec *metrics.Recorder, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerMetrics(rec.Registry()),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideModelClient creates the external scoring client. An empty base URL
// leaves it reporting the model as unavailable.
func ProvideModelClient(cfg *config.Config, l *applogger.Logger) *model.Client {
	return model.New(cfg.Model.BaseURL,
		model.WithTimeout(cfg.Model.Timeout),
		model.WithBreaker(model.BreakerSettings{
			MaxRequests:         cfg.Model.Breaker.MaxRequests,
			Interval:            cfg.Model.Breaker.Interval,
			Timeout:             cfg.Model.Breaker.Timeout,
			ConsecutiveFailures: cfg.Model.Breaker.ConsecutiveFailures,
		}),
		model.WithLogger(l),
	)
}

// ProvideEngineConfig maps the engine section onto request defaults.
func ProvideEngineConfig(cfg *config.Config) usecase.EngineConfig {
	defaults := models.DefaultFilterConfig()
	defaults.PoolSize = cfg.Engine.PoolSize
	defaults.PoolStrategy = models.PoolStrategy(cfg.Engine.PoolStrategy)
	defaults.RecentSimilarity = cfg.Engine.RecentSimilarity
	defaults.OlderSimilarity = cfg.Engine.OlderSimilarity
	return usecase.EngineConfig{
		Defaults:         defaults,
		MaxAttempts:      cfg.Engine.MaxAttempts,
		ReductionSamples: cfg.Engine.ReductionSamples,
		MaxBatch:         cfg.Engine.MaxBatch,
	}
}

// ProvideProfileLoader creates the cached profile loader.
func ProvideProfileLoader(
	cfg *config.Config,
	draws repository.DrawRepository,
	pc repository.ProfileCache,
	rec *metrics.Recorder,
	l *applogger.Logger,
) *usecase.ProfileLoader {
	loader := usecase.NewProfileLoader(draws, pc, rec)
	loader.SetLogger(l)
	loader.SetTimeout(cfg.Engine.LoadTimeout)
	return loader
}

// ProvideEngine creates the engine use case.
func ProvideEngine(
	loader *usecase.ProfileLoader,
	mc *model.Client,
	store repository.ReportStore,
	pub repository.Publisher,
	rec *metrics.Recorder,
	ecfg usecase.EngineConfig,
	l *applogger.Logger,
) *usecase.Engine {
	e := usecase.NewEngine(loader, mc, store, pub, rec, ecfg)
	e.SetLogger(l)
	return e
}

// ProvideKafkaDrawsHandler creates the handler for the draws topic.
func ProvideKafkaDrawsHandler(
	cfg *config.Config,
	draws repository.DrawRepository,
	loader *usecase.ProfileLoader,
	rec *metrics.Recorder,
	l *applogger.Logger,
) *usecase.KafkaDrawsHandler {
	h := usecase.NewKafkaDrawsHandler(cfg.Kafka.DrawsTopic, draws, loader, rec)
	h.SetLogger(l)
	return h
}

// ProvideQueue creates the background job queue with the engine jobs
// registered. Returns nil when jobs are disabled.
func ProvideQueue(cfg *config.Config, rc *cache.RedisCache, engine *usecase.Engine, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Jobs.Enabled || rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		RetryLimit: cfg.Jobs.RetryLimit,
		RetryDelay: cfg.Jobs.RetryDelay,
		ResultTTL:  cfg.Jobs.ResultTTL,
	}, rc.Client(), queue.WithKeyPrefix(cfg.Jobs.Queue))
	for _, job := range usecase.NewEngineJobs(engine) {
		q.RegisterJob(job)
	}
	return q
}

// ProvideJobs creates the job submission use case. Returns nil without a queue.
func ProvideJobs(q *queue.RedisQueue) *usecase.Jobs {
	if q == nil {
		return nil
	}
	return usecase.NewJobs(q)
}

// ProvideRateLimiter creates the per-client limiter for compute endpoints.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHandlers collects the HTTP route groups.
func ProvideHandlers(l *applogger.Logger, engine *usecase.Engine, jobs *usecase.Jobs, rl *ratelimit.Limiter) []xhttp.Handler {
	handlers := []xhttp.Handler{api.NewEngineHandler(l, engine, rl)}
	if jobs != nil {
		handlers = append(handlers, api.NewJobsHandler(l, jobs))
	}
	return handlers
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler, rec *metrics.Recorder) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(!cfg.Server.DisableCORS),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(rec.Registry(), cfg.Metrics.Path))
	}
	return xhttp.NewServer(l, handlers, opts...)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	pg *pkgpg.Client,
	rc *cache.RedisCache,
	ch *pkgch.Client,
	pub repository.Publisher,
	consumer *pkgkafka.Consumer,
	dh *usecase.KafkaDrawsHandler,
	q *queue.RedisQueue,
) *server.App {
	app := server.New(cfg, l, httpServer, pub)
	app.SetPostgres(pg)
	if rc != nil {
		app.SetRedis(rc)
	}
	if ch != nil {
		app.SetClickHouse(ch)
	}
	if consumer != nil {
		app.SetConsumer(consumer, dh)
	}
	if q != nil {
		app.SetQueue(q)
	}
	return app
}
