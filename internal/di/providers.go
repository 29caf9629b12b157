package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "FitPull/internal/domain/repository"
	domsvc "FitPull/internal/domain/service"
	"FitPull/internal/handler/api"
	internalrepo "FitPull/internal/repository"
	icache "FitPull/internal/service/cache"
	"FitPull/internal/services/fitter"
	"FitPull/internal/usecase"
	pkgch "FitPull/pkg/clickhouse"
	"FitPull/pkg/config"
	pkgkafka "FitPull/pkg/kafka"
	applogger "FitPull/pkg/logger"
	"FitPull/pkg/metrics"
	"FitPull/pkg/queue"
	"FitPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".stock_prices (timestamp DateTime, symbol String, price Float64) ENGINE=MergeTree ORDER BY (symbol, timestamp)",
		"CREATE TABLE IF NOT EXISTS " + db + ".model_metrics (timestamp DateTime, symbol String, ar_param Float64, ma_param Float64, volatility Float64) ENGINE=MergeTree ORDER BY (symbol, timestamp)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRedisClient creates the shared Redis client.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideQueue creates the Redis-backed work queue.
func ProvideQueue(l *applogger.Logger, cfg *config.Config, cli *redis.Client) *queue.RedisQueue {
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, cli, queue.ModeProducerConsumer)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvidePriceSource creates the ClickHouse price reader.
func ProvidePriceSource(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.PriceSource {
	src := internalrepo.NewCHPriceSource(chClient, cfg.ClickHouse.Database+".stock_prices")
	src.SetLogger(l)
	return src
}

// ProvideMetricsStore creates the ClickHouse result sink.
func ProvideMetricsStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.MetricsStore {
	store := internalrepo.NewCHMetricsStore(chClient, cfg.ClickHouse.Database+".model_metrics")
	store.SetLogger(l)
	return store
}

// ProvideJobStore creates the Redis job record store.
func ProvideJobStore(cli *redis.Client) domrepo.JobStore {
	return internalrepo.NewRedisJobStore(cli)
}

// ProvidePublisher creates the Kafka metrics publisher, or a no-op when
// Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaMetricsPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideModelFitter creates the HTTP client for the model-fitting service.
func ProvideModelFitter(cfg *config.Config) domsvc.ModelFitter {
	return fitter.NewHTTPModelFitter(cfg)
}

// ProvideSymbolTrainer creates the per-symbol trainer.
func ProvideSymbolTrainer(
	source domrepo.PriceSource,
	mf domsvc.ModelFitter,
	m domrepo.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.SymbolTrainer {
	return usecase.NewSymbolTrainer(source, mf, m, cfg.Training.MinObservations, l)
}

// ProvideBatchTrainer creates the batch orchestrator.
func ProvideBatchTrainer(
	trainer *usecase.SymbolTrainer,
	store domrepo.MetricsStore,
	pub domrepo.Publisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.BatchTrainer {
	return usecase.NewBatchTrainer(trainer, store, pub, m, l)
}

// ProvideTrainBatchJob creates the queue job for deferred batches.
func ProvideTrainBatchJob(batch *usecase.BatchTrainer, jobs domrepo.JobStore, l *applogger.Logger) *usecase.TrainBatchJob {
	return usecase.NewTrainBatchJob(batch, jobs, l)
}

// ProvideResultCache creates the cache behind the results endpoint. Redis is
// preferred so cached entries survive restarts; the in-process TTL cache is
// the fallback.
func ProvideResultCache(cfg *config.Config) icache.BytesCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Redis.Addr != "" {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideTrainingHandler creates the HTTP handler for training endpoints.
func ProvideTrainingHandler(
	l *applogger.Logger,
	batch *usecase.BatchTrainer,
	store domrepo.MetricsStore,
	jobs domrepo.JobStore,
	q *queue.RedisQueue,
	cfg *config.Config,
) *api.TrainingHandler {
	h := api.NewTrainingHandler(l, batch, store, jobs, q)
	if c := ProvideResultCache(cfg); c != nil {
		h.SetCache(c, cfg.Cache.ResultTTL)
	}
	h.SetRateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	q *queue.RedisQueue,
	job *usecase.TrainBatchJob,
	handler *api.TrainingHandler,
	chClient *pkgch.Client,
	pub domrepo.Publisher,
) *server.App {
	return server.New(cfg, l, q, job, handler, chClient, pub)
}
