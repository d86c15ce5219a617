package config

import (
	// Go Internal Packages
	"net/url"
	"os"
	"strings"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
)

var DefaultConfig = []byte(`
application: "fraud-stream"

logger:
  level: "debug"

is_prod_mode: false

kafka:
  brokers:
    - "localhost:9092"
  topic: "transactions"
  records_per_poll: 500
  consumer_name: "fraud-scorer"
  start_offset: "latest"

scoring:
  endpoint: ""
  api_key: ""
  timeout: 5s
  max_attempts: 3
  backoff_base: 1s
  max_in_flight: 0
  circuit_breaker:
    enabled: false
    max_requests: 1
    interval: 60s
    timeout: 30s
    consecutive_failures: 5

features:
  device_flag_prefix: "devF"
  home_region: "India"

sink:
  driver: "postgres"
  dsn: ""
  table: "transaction_predictions"
  create_table: true

mongo:
  uri: "mongodb://localhost:27017"
  database: "fraud"
  collection: "transaction_predictions"

redis:
  uri: "localhost:6379"
  password: ""
  dlq_key: "failed-transactions"

metrics:
  addr: ":9102"

serving:
  addr: ":8080"
  model:
    weights: [0, 0.0004, 0.1, 0.3, 1.5, 0.8, 0.8, 0.9]
    bias: -4.5
    threshold: 0.5
`)

type Config struct {
	Application string   `koanf:"application"`
	Logger      Logger   `koanf:"logger"`
	IsProdMode  bool     `koanf:"is_prod_mode"`
	Kafka       Kafka    `koanf:"kafka"`
	Scoring     Scoring  `koanf:"scoring"`
	Features    Features `koanf:"features"`
	Sink        Sink     `koanf:"sink"`
	Mongo       Mongo    `koanf:"mongo"`
	Redis       Redis    `koanf:"redis"`
	Metrics     Metrics  `koanf:"metrics"`
	Serving     Serving  `koanf:"serving"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Kafka struct {
	Brokers        []string `koanf:"brokers"`
	Topic          string   `koanf:"topic"`
	RecordsPerPoll int      `koanf:"records_per_poll"`
	ConsumerName   string   `koanf:"consumer_name"`
	StartOffset    string   `koanf:"start_offset"`
}

type Scoring struct {
	Endpoint       string         `koanf:"endpoint"`
	APIKey         string         `koanf:"api_key"`
	Timeout        time.Duration  `koanf:"timeout"`
	MaxAttempts    int            `koanf:"max_attempts"`
	BackoffBase    time.Duration  `koanf:"backoff_base"`
	MaxInFlight    int64          `koanf:"max_in_flight"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
}

type CircuitBreaker struct {
	Enabled             bool          `koanf:"enabled"`
	MaxRequests         uint32        `koanf:"max_requests"`
	Interval            time.Duration `koanf:"interval"`
	Timeout             time.Duration `koanf:"timeout"`
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
}

type Features struct {
	DeviceFlagPrefix string `koanf:"device_flag_prefix"`
	HomeRegion       string `koanf:"home_region"`
}

type Sink struct {
	Driver      string `koanf:"driver"`
	DSN         string `koanf:"dsn"`
	Table       string `koanf:"table"`
	CreateTable bool   `koanf:"create_table"`
}

type Mongo struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

type Redis struct {
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
	DLQKey   string `koanf:"dlq_key"`
}

type Metrics struct {
	Addr string `koanf:"addr"`
}

type Serving struct {
	Addr  string `koanf:"addr"`
	Model Model  `koanf:"model"`
}

type Model struct {
	Weights   []float64 `koanf:"weights"`
	Bias      float64   `koanf:"bias"`
	Threshold float64   `koanf:"threshold"`
}

// LoadSecrets overrides the loaded config with secret values from the environment
func LoadSecrets(c Config) Config {
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SCORING_ENDPOINT"); v != "" {
		c.Scoring.Endpoint = v
	}
	if v := os.Getenv("SCORING_API_KEY"); v != "" {
		c.Scoring.APIKey = v
	}
	if v := os.Getenv("SINK_DSN"); v != "" {
		c.Sink.DSN = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("REDIS_URI"); v != "" {
		c.Redis.URI = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("IS_PROD_MODE"); v != "" {
		c.IsProdMode = v == "true"
	}
	return c
}

// Validate validates the configuration needed by the stream scorer
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}
	if c.Kafka.RecordsPerPoll <= 0 {
		ve.Add("kafka.records_per_poll", "must be positive")
	}
	if c.Kafka.StartOffset != "earliest" && c.Kafka.StartOffset != "latest" {
		ve.Add("kafka.start_offset", "must be earliest or latest")
	}

	if c.Scoring.Endpoint == "" {
		ve.Add("scoring.endpoint", "cannot be empty")
	} else if u, err := url.Parse(c.Scoring.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		ve.Add("scoring.endpoint", "must be an http(s) url")
	}
	if c.Scoring.Timeout <= 0 {
		ve.Add("scoring.timeout", "must be positive")
	}
	if c.Scoring.MaxAttempts < 1 {
		ve.Add("scoring.max_attempts", "must be at least 1")
	}
	if c.Scoring.BackoffBase < 0 {
		ve.Add("scoring.backoff_base", "cannot be negative")
	}
	if c.Scoring.MaxInFlight < 0 {
		ve.Add("scoring.max_in_flight", "cannot be negative")
	}

	switch c.Sink.Driver {
	case "postgres":
		if c.Sink.DSN == "" {
			ve.Add("sink.dsn", "cannot be empty")
		}
		if c.Sink.Table == "" {
			ve.Add("sink.table", "cannot be empty")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			ve.Add("mongo.uri", "cannot be empty")
		}
		if c.Mongo.Collection == "" {
			ve.Add("mongo.collection", "cannot be empty")
		}
	default:
		ve.Add("sink.driver", "must be postgres or mongo")
	}

	if c.Features.DeviceFlagPrefix == "" {
		ve.Add("features.device_flag_prefix", "cannot be empty")
	}
	if c.Features.HomeRegion == "" {
		ve.Add("features.home_region", "cannot be empty")
	}

	if c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty")
	}

	return ve.Err()
}

// ValidateServing validates only the parts used by the scoring server
func (c *Config) ValidateServing() error {
	ve := errors.ValidationErrs()

	if c.Serving.Addr == "" {
		ve.Add("serving.addr", "cannot be empty")
	}
	if len(c.Serving.Model.Weights) == 0 {
		ve.Add("serving.model.weights", "cannot be empty")
	}
	if c.Serving.Model.Threshold <= 0 || c.Serving.Model.Threshold >= 1 {
		ve.Add("serving.model.threshold", "must be between 0 and 1")
	}

	return ve.Err()
}
