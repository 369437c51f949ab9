package di

import (
	"context"
	"fmt"
	"time"

	"RegimePulse/internal/breaker"
	drepo "RegimePulse/internal/domain/repository"
	"RegimePulse/internal/fetch"
	"RegimePulse/internal/handler/api"
	"RegimePulse/internal/regime"
	internalrepo "RegimePulse/internal/repository"
	"RegimePulse/internal/service/stream"
	"RegimePulse/internal/service/telegram"
	"RegimePulse/internal/usecase"
	"RegimePulse/pkg/cache"
	pkgch "RegimePulse/pkg/clickhouse"
	"RegimePulse/pkg/config"
	xhttp "RegimePulse/pkg/http"
	pkgkafka "RegimePulse/pkg/kafka"
	applogger "RegimePulse/pkg/logger"
	"RegimePulse/pkg/metrics"
	"RegimePulse/pkg/queue"
	"RegimePulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
}

// ProvideRecorder creates the Prometheus health recorder, or nil when
// metrics are disabled.
func ProvideRecorder(cfg *config.Config) *metrics.Recorder {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New()
}

// ProvideHealthSink adapts the recorder to the fetcher-facing sink.
func ProvideHealthSink(recorder *metrics.Recorder) drepo.HealthSink {
	if recorder == nil {
		return internalrepo.NopHealthSink{}
	}
	return recorder
}

// ProvideCacheStore picks the blob store backend: layered memory+redis when
// redis is enabled, plain memory otherwise.
func ProvideCacheStore(cfg *config.Config, log *applogger.Logger) cache.Store {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryStore()
	}

	redis, err := cache.NewRedisStore(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		log.Warn("redis unavailable, falling back to in-memory cache", applogger.Error(err))
		return cache.NewMemoryStore()
	}
	return cache.NewLayeredStore(redis)
}

// ProvideCache creates the TTL cache over the blob store.
func ProvideCache(store cache.Store) *cache.Cache {
	return cache.New(store)
}

// ProvideBreaker creates the shared circuit breaker registry.
func ProvideBreaker() *breaker.Breaker {
	return breaker.New()
}

// ProvideFetchClient creates the rate-limited outbound API client.
func ProvideFetchClient() *fetch.Client {
	return fetch.NewClient()
}

// ProvideFetchers builds one fetcher per configured indicator. The price
// indicator additionally gets the live trade feed as a backup input when
// streaming is enabled.
func ProvideFetchers(
	cfg *config.Config,
	client *fetch.Client,
	brk *breaker.Breaker,
	c *cache.Cache,
	sink drepo.HealthSink,
	priceStream drepo.PriceStream,
	log *applogger.Logger,
) ([]*fetch.Fetcher, error) {
	res := fetch.Resilience{Breaker: brk, Cache: c}
	fetchers := make([]*fetch.Fetcher, 0, len(cfg.Sources))
	for metric, sc := range cfg.Sources {
		source, err := fetch.NewSource(metric, fetch.SourceConfig{
			Primary:    sc.Primary,
			Backup:     sc.Backup,
			TTLMinutes: sc.TTLMinutes,
		})
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", metric, err)
		}
		if rsi, ok := source.(*fetch.RSISource); ok && priceStream != nil {
			rsi.UseLiveFeed(priceStream)
		}
		ttl := time.Duration(sc.TTLMinutes) * time.Minute
		fetchers = append(fetchers, fetch.NewFetcher(source, client, res, sink, ttl, log))
	}
	return fetchers, nil
}

// ProvideAnalyzer builds the scorer registry from configured thresholds.
func ProvideAnalyzer(cfg *config.Config) *regime.Analyzer {
	thresholds := make(map[string]regime.ThresholdConfig, len(cfg.Thresholds))
	for metric, values := range cfg.Thresholds {
		tc := make(regime.ThresholdConfig, len(values))
		for k, v := range values {
			tc[k] = v
		}
		thresholds[metric] = tc
	}
	return regime.NewAnalyzer(thresholds)
}

// ProvideClickHouseClient creates the ClickHouse client, or nil when
// persistence is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout.D(), cfg.ClickHouse.ReadTimeout.D(), cfg.ClickHouse.WriteTimeout.D()),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime.D()),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideHistoryStore creates the verdict/metric archive, or nil without
// ClickHouse.
func ProvideHistoryStore(chClient *pkgch.Client) (drepo.HistoryStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseHistory(chClient.DB())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger.D()),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout.D(), cfg.Kafka.Producer.ReadTimeout.D()),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the verdict publisher, or a no-op without a
// broker.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.Publisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideNotifier creates the Telegram channel, or nil when disabled.
func ProvideNotifier(cfg *config.Config, client *fetch.Client, log *applogger.Logger) telegram.Notifier {
	if !cfg.Telegram.Enabled {
		return nil
	}
	return telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, client, log)
}

// ProvidePriceStream creates the live trade feed, or nil when disabled.
func ProvidePriceStream(cfg *config.Config, log *applogger.Logger) drepo.PriceStream {
	if !cfg.Stream.Enabled || cfg.Stream.URL == "" {
		return nil
	}
	return stream.New(cfg.Stream.URL, cfg.Stream.ReconnectDelay.D(), cfg.Stream.PingInterval.D(), log)
}

// ProvideAlertQueue creates the redis-backed alert delivery queue, or nil
// when redis or telegram is disabled. Without a queue, alerts go out inline
// from the refresh loop.
func ProvideAlertQueue(cfg *config.Config, notifier telegram.Notifier, log *applogger.Logger) *queue.RedisQueue {
	if !cfg.Redis.Enabled || notifier == nil {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	q := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewAlertJob(notifier))
	return q
}

// ProvideEngine creates the analysis engine.
func ProvideEngine(
	fetchers []*fetch.Fetcher,
	analyzer *regime.Analyzer,
	history drepo.HistoryStore,
	priceStream drepo.PriceStream,
	recorder *metrics.Recorder,
	log *applogger.Logger,
) *usecase.Engine {
	return usecase.NewEngine(fetchers, analyzer, history, priceStream, recorder, log)
}

// ProvideWatcher creates the periodic refresh loop.
func ProvideWatcher(
	engine *usecase.Engine,
	publisher drepo.Publisher,
	notifier telegram.Notifier,
	alerts *queue.RedisQueue,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Watcher {
	w := usecase.NewWatcher(engine, publisher, notifier, cfg.Engine.RefreshInterval.D(), log)
	if alerts != nil {
		w.UseAlertQueue(alerts)
	}
	return w
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	log *applogger.Logger,
	engine *usecase.Engine,
	recorder *metrics.Recorder,
	history drepo.HistoryStore,
) xhttp.Handler {
	return api.NewRegimeHandler(log, engine, recorder, history)
}

// logPublisher adapts the Kafka producer to the log collector's sink.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	engine *usecase.Engine,
	watcher *usecase.Watcher,
	publisher drepo.Publisher,
	priceStream drepo.PriceStream,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	producer *pkgkafka.Producer,
	alerts *queue.RedisQueue,
	log *applogger.Logger,
) *server.App {
	// Aggregated error logs flow to their own topic when a broker is up.
	if producer != nil && cfg.Kafka.LogTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      logPublisher{producer: producer},
		})
	}
	return server.New(cfg, engine, watcher, publisher, priceStream, chClient, handler, alerts, log)
}
