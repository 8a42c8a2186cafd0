package di

import (
	"context"
	"fmt"
	"time"

	"PortfolioSim/internal/domain/repository"
	dservice "PortfolioSim/internal/domain/service"
	"PortfolioSim/internal/handler/api"
	internalrepo "PortfolioSim/internal/repository"
	"PortfolioSim/internal/service/cache"
	"PortfolioSim/internal/service/ratelimit"
	"PortfolioSim/internal/usecase"
	"PortfolioSim/pkg/config"
	xhttp "PortfolioSim/pkg/http"
	pkgkafka "PortfolioSim/pkg/kafka"
	"PortfolioSim/pkg/logger"
	"PortfolioSim/pkg/metrics"
	"PortfolioSim/pkg/queue"
	"PortfolioSim/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the process logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lgr, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return lgr, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisClient connects to Redis when enabled; nil otherwise.
func ProvideRedisClient(cfg *config.Config) (redis.UniversalClient, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	cli := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}

// ProvideKafkaProducer creates a Kafka producer when enabled; nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideErrorDigest attaches a Kafka-backed error digest to the logger when
// enabled; nil otherwise.
func ProvideErrorDigest(cfg *config.Config, lgr *logger.Logger, producer *pkgkafka.Producer) *logger.ErrorDigest {
	if !cfg.Log.Digest.Enabled || producer == nil {
		return nil
	}
	d := logger.NewErrorDigest(logger.DigestConfig{
		Interval:  cfg.Log.Digest.Interval,
		Threshold: cfg.Log.Digest.Threshold,
		Topic:     cfg.Log.Digest.Topic,
		Publisher: producer,
	})
	lgr.AttachDigest(d)
	return d
}

// ProvideBytesCache backs the job store with Redis when available, otherwise
// with the in-process TTL cache.
func ProvideBytesCache(cfg *config.Config, cli redis.UniversalClient) cache.BytesCache {
	if cli != nil {
		return cache.NewRedisCache(cli, cfg.Redis.KeyPrefix)
	}
	return cache.NewTTLCache()
}

// ProvideJobStore creates the job snapshot store.
func ProvideJobStore(c cache.BytesCache, cfg *config.Config) repository.JobStore {
	return internalrepo.NewCacheJobStore(c, cfg.Simulation.JobTTL)
}

// ProvideEventPublisher publishes job lifecycle events to Kafka when enabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSimulationRunner creates the trajectory engine.
func ProvideSimulationRunner(cfg *config.Config, lgr *logger.Logger, m repository.Metrics) *usecase.SimulationRunner {
	opts := []usecase.RunnerOption{
		usecase.WithModelParams(cfg.Model),
		usecase.WithLimits(cfg.Limits()),
	}
	if cfg.Simulation.Workers > 0 {
		opts = append(opts, usecase.WithWorkers(cfg.Simulation.Workers))
	}
	if cfg.Simulation.Seed != nil {
		opts = append(opts, usecase.WithSeed(*cfg.Simulation.Seed))
	}
	return usecase.NewSimulationRunner(lgr, m, opts...)
}

// ProvideExecutor creates the asynchronous run executor.
func ProvideExecutor(runner *usecase.SimulationRunner, lgr *logger.Logger) *usecase.Executor {
	return usecase.NewExecutor(runner, lgr)
}

// ProvideJobTracker creates the job lifecycle recorder.
func ProvideJobTracker(store repository.JobStore, pub repository.EventPublisher, m repository.Metrics, lgr *logger.Logger) *usecase.JobTracker {
	return usecase.NewJobTracker(store, pub, m, lgr)
}

// ProvideQueue creates the work queue when enabled; nil otherwise. The
// simulation job is registered on it.
func ProvideQueue(cfg *config.Config, lgr *logger.Logger, cli redis.UniversalClient, executor *usecase.Executor, tracker *usecase.JobTracker) queue.Runner {
	if !cfg.Queue.Enabled {
		return nil
	}
	qcfg := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	var q queue.Runner
	if cfg.Queue.Backend == "redis" && cli != nil {
		q = queue.NewRedisQueue(lgr, qcfg, cli, queue.ModeProducerConsumer,
			queue.WithKeyPrefix(cfg.Redis.KeyPrefix+":queue"))
	} else {
		q = queue.NewMemoryQueue(lgr, qcfg)
	}
	q.RegisterJob(usecase.NewSimulationJob(executor, tracker, lgr))
	return q
}

// ProvideDispatcher hands submitted jobs to the queue, or runs them in
// process when no queue is configured.
func ProvideDispatcher(q queue.Runner, executor *usecase.Executor, tracker *usecase.JobTracker, lgr *logger.Logger) dservice.Dispatcher {
	if q != nil {
		return usecase.NewQueueDispatcher(q)
	}
	return usecase.NewLocalDispatcher(executor, tracker, lgr)
}

// ProvideJobService creates the submission use case.
func ProvideJobService(tracker *usecase.JobTracker, dispatcher dservice.Dispatcher, cfg *config.Config, lgr *logger.Logger) *usecase.JobService {
	return usecase.NewJobService(tracker, dispatcher, cfg.Limits(), lgr)
}

// ProvideRateLimiter creates the per-client submission limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Idle)
}

// ProvideHTTPHandler creates the simulation API handler.
func ProvideHTTPHandler(lgr *logger.Logger, jobs *usecase.JobService, executor *usecase.Executor, limiter *ratelimit.Limiter) *api.SimulationsEchoHandler {
	return api.NewSimulationsEchoHandler(lgr, jobs, executor, limiter)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, lgr *logger.Logger, h *api.SimulationsEchoHandler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	}
	if !cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics("", prometheus.NewRegistry(), nil))
	} else {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, prometheus.DefaultRegisterer, prometheus.DefaultGatherer))
	}
	return xhttp.NewServer(lgr, h, opts...)
}

// ProvideApp creates the application server. Shutdown order follows the
// option order: the digest flushes through the producer before the event
// publisher closes it.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	httpServer *xhttp.Server,
	dispatcher dservice.Dispatcher,
	q queue.Runner,
	c cache.BytesCache,
	limiter *ratelimit.Limiter,
	pub repository.EventPublisher,
	cli redis.UniversalClient,
	digest *logger.ErrorDigest,
) *server.App {
	opts := []server.Option{
		server.WithDispatcher(dispatcher),
		server.WithJanitor("rate-limiter", limiter, time.Minute),
	}
	if q != nil {
		opts = append(opts, server.WithQueue(q))
	}
	if ttl, ok := c.(*cache.TTLCache); ok {
		opts = append(opts, server.WithJanitor("job-cache", ttl, time.Minute))
	}
	if digest != nil {
		opts = append(opts, server.WithCloser("error-digest", closerFunc(func() error { digest.Close(); return nil })))
	}
	if pub != nil {
		opts = append(opts, server.WithCloser("event-publisher", pub))
	}
	if cli != nil {
		opts = append(opts, server.WithCloser("redis", cli))
	}
	return server.New(cfg, lgr, httpServer, opts...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
