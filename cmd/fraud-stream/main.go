package main

import (
	// Go Internal Packages
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Local Packages
	config "fraud-stream/config"
	kafka "fraud-stream/kafka"
	"fraud-stream/metrics"
	mongodb "fraud-stream/repositories/mongodb"
	postgres "fraud-stream/repositories/postgres"
	redis "fraud-stream/repositories/redis"
	"fraud-stream/retry"
	"fraud-stream/services/features"
	txpsr "fraud-stream/services/processors"
	"fraud-stream/services/scoring"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

type predictionsSink interface {
	txpsr.PredictionsRepository
	io.Closer
}

func openSink(ctx context.Context, c config.Config) (predictionsSink, error) {
	if c.Sink.Driver == "mongo" {
		client, err := mongodb.Connect(ctx, c.Mongo.URI)
		if err != nil {
			return nil, err
		}
		return mongodb.NewPredictionsRepository(client, c.Mongo.Database, c.Mongo.Collection), nil
	}

	db, err := postgres.Connect(ctx, c.Sink.DSN)
	if err != nil {
		return nil, err
	}
	repo := postgres.NewPredictionsRepository(db, c.Sink.Table)
	if c.Sink.CreateTable {
		if err := repo.CreateTable(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
	}
	return repo, nil
}

func newScoringClient(c config.Scoring, logger *zap.Logger, recorder metrics.Recorder) *scoring.Client {
	conf := scoring.ClientConfig{
		Endpoint: c.Endpoint,
		APIKey:   c.APIKey,
		Timeout:  c.Timeout,
		Policy: retry.Policy{
			MaxAttempts: c.MaxAttempts,
			Backoff:     retry.Exponential(c.BackoffBase),
			Clock:       retry.RealClock(),
		},
		MaxInFlight: c.MaxInFlight,
	}
	if c.CircuitBreaker.Enabled {
		conf.Breaker = &scoring.BreakerConfig{
			MaxRequests:         c.CircuitBreaker.MaxRequests,
			Interval:            c.CircuitBreaker.Interval,
			Timeout:             c.CircuitBreaker.Timeout,
			ConsecutiveFailures: c.CircuitBreaker.ConsecutiveFailures,
		}
	}
	return scoring.NewClient(conf, &http.Client{}, logger.Named("scoring"), recorder)
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Update and Validate config before starting the consumer
	appKonf = config.LoadSecrets(appKonf)
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(appKonf.Logger.Level))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sink Connection
	sink, err := openSink(ctx, appKonf)
	if err != nil {
		logger.Fatal("cannot connect to predictions sink", zap.String("driver", appKonf.Sink.Driver), zap.Error(err))
	}

	// Redis Connection
	redisClient, err := redis.Connect(ctx, appKonf.Redis.URI, appKonf.Redis.Password)
	if err != nil {
		logger.Fatal("cannot create redis client", zap.Error(err))
	}
	dlQueue := redis.NewDeadLetterQueue(redisClient, logger.Named("dlq"), appKonf.Redis.DLQKey)

	defer func() {
		if err := multierr.Combine(sink.Close(), dlQueue.Close()); err != nil {
			logger.Error("error closing connections", zap.Error(err))
		}
	}()

	recorder := metrics.NewPrometheus("fraud", prometheus.DefaultRegisterer)
	kafkaMetrics := kprom.NewMetrics("et")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/metrics/kafka", kafkaMetrics.Handler())
	metricsServer := &http.Server{Addr: appKonf.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	encoder := features.NewEncoder(appKonf.Features.DeviceFlagPrefix, appKonf.Features.HomeRegion)
	scorer := newScoringClient(appKonf.Scoring, logger, recorder)
	txProcessor := txpsr.NewTxProcessor(logger.Named("processor"), encoder, scorer, sink, dlQueue, recorder)

	conf := &kafka.ConsumerConfig{
		Brokers:        appKonf.Kafka.Brokers,
		Name:           appKonf.Kafka.ConsumerName,
		Topic:          appKonf.Kafka.Topic,
		RecordsPerPoll: appKonf.Kafka.RecordsPerPoll,
		FromStart:      appKonf.Kafka.StartOffset == "earliest",
	}

	txConsumer, err := kafka.NewTxConsumer(conf, logger.Named("consumer"), txProcessor, kafkaMetrics)
	if err != nil {
		logger.Fatal("cannot create transactions consumer", zap.Error(err))
	}

	if err = txConsumer.Poll(ctx); err != nil {
		logger.Error("cannot poll records from topic", zap.Error(err))
	}
}
