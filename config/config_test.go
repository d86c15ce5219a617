package config

import (
	// Go Internal Packages
	"testing"
	"time"

	// Local Packages
	errors "fraud-stream/errors"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))

	var c Config
	require.NoError(t, k.Unmarshal("", &c))
	return c
}

func TestDefaultConfig(t *testing.T) {
	c := loadDefaults(t)

	assert.Equal(t, "fraud-stream", c.Application)
	assert.Equal(t, 5*time.Second, c.Scoring.Timeout)
	assert.Equal(t, 3, c.Scoring.MaxAttempts)
	assert.Equal(t, time.Second, c.Scoring.BackoffBase)
	assert.Equal(t, "devF", c.Features.DeviceFlagPrefix)
	assert.Equal(t, "latest", c.Kafka.StartOffset)
	assert.Equal(t, "India", c.Features.HomeRegion)
	assert.Len(t, c.Serving.Model.Weights, 8)
	assert.False(t, c.Scoring.CircuitBreaker.Enabled)
}

func TestValidateRequiresEndpointAndDSN(t *testing.T) {
	c := loadDefaults(t)

	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.Invalid, errors.KindOf(err))
	assert.Contains(t, err.Error(), "scoring.endpoint cannot be empty")
	assert.Contains(t, err.Error(), "sink.dsn cannot be empty")

	c.Scoring.Endpoint = "http://localhost:8080/score"
	c.Sink.DSN = "postgres://localhost/fraud"
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := loadDefaults(t)
	c.Scoring.Endpoint = "ftp://model"
	c.Scoring.MaxAttempts = 0
	c.Sink.Driver = "sqlite"
	c.Kafka.StartOffset = "middle"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring.endpoint must be an http(s) url")
	assert.Contains(t, err.Error(), "scoring.max_attempts must be at least 1")
	assert.Contains(t, err.Error(), "sink.driver must be postgres or mongo")
	assert.Contains(t, err.Error(), "kafka.start_offset must be earliest or latest")
}

func TestValidateRejectsEmptyFeatureMarkers(t *testing.T) {
	c := loadDefaults(t)
	c.Scoring.Endpoint = "https://model.example/score"
	c.Sink.DSN = "postgres://db"
	c.Features.DeviceFlagPrefix = ""
	c.Features.HomeRegion = ""

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "features.device_flag_prefix cannot be empty")
	assert.Contains(t, err.Error(), "features.home_region cannot be empty")
}

func TestValidateMongoSink(t *testing.T) {
	c := loadDefaults(t)
	c.Scoring.Endpoint = "https://model.example/score"
	c.Sink.Driver = "mongo"

	assert.NoError(t, c.Validate())
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("SCORING_ENDPOINT", "http://score")
	t.Setenv("SINK_DSN", "postgres://db")
	t.Setenv("IS_PROD_MODE", "true")

	c := LoadSecrets(loadDefaults(t))

	assert.Equal(t, []string{"b1:9092", "b2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "http://score", c.Scoring.Endpoint)
	assert.Equal(t, "postgres://db", c.Sink.DSN)
	assert.True(t, c.IsProdMode)
}

func TestValidateServing(t *testing.T) {
	c := loadDefaults(t)
	assert.NoError(t, c.ValidateServing())

	c.Serving.Model.Threshold = 1
	assert.Error(t, c.ValidateServing())
}
