package scoring

import (
	// Go Internal Packages
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
	"fraud-stream/metrics"
	models "fraud-stream/models"
	"fraud-stream/retry"

	// External Packages
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const maxResponseBytes = 10 << 20

type Outcome int

const (
	Scored Outcome = iota
	Fallback
)

func (o Outcome) String() string {
	if o == Fallback {
		return "fallback"
	}
	return "scored"
}

// Result is the outcome of scoring one batch. Predictions always has one
// entry per submitted vector; on Fallback they are all 0 and Err says why.
type Result struct {
	Predictions []int
	Attempts    int
	Outcome     Outcome
	Err         error
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

type ClientConfig struct {
	Endpoint string
	APIKey   string
	// Timeout bounds a single attempt.
	Timeout time.Duration
	Policy  retry.Policy
	// MaxInFlight caps concurrent batches against the endpoint; 0 disables the cap.
	MaxInFlight int64
	// Breaker enables a circuit breaker in front of the endpoint when non nil.
	// An open breaker fails the attempt without a request; the attempt still
	// counts against the retry budget.
	Breaker *BreakerConfig
}

type scoreRequest struct {
	Data []models.FeatureVector `json:"data"`
}

// Client scores feature batches against a remote inference endpoint. It keeps
// no per batch state and can be shared across goroutines.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	policy   retry.Policy
	http     Doer
	sem      *semaphore.Weighted
	cb       *gobreaker.CircuitBreaker
	logger   *zap.Logger
	metrics  metrics.Recorder
}

func NewClient(conf ClientConfig, httpClient Doer, logger *zap.Logger, recorder metrics.Recorder) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if recorder == nil {
		recorder = metrics.NoOp{}
	}

	c := &Client{
		endpoint: conf.Endpoint,
		apiKey:   conf.APIKey,
		timeout:  conf.Timeout,
		policy:   conf.Policy,
		http:     httpClient,
		logger:   logger,
		metrics:  recorder,
	}
	if conf.MaxInFlight > 0 {
		c.sem = semaphore.NewWeighted(conf.MaxInFlight)
	}
	if conf.Breaker != nil {
		c.cb = newBreaker(*conf.Breaker, logger)
	}
	return c
}

func newBreaker(conf BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	threshold := conf.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scoring-endpoint",
		MaxRequests: conf.MaxRequests,
		Interval:    conf.Interval,
		Timeout:     conf.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Score sends the whole batch as one request, retrying the full batch under
// the client's policy. It never returns an error: exhaustion yields zeros.
func (c *Client) Score(ctx context.Context, features []models.FeatureVector) Result {
	if len(features) == 0 {
		return Result{Predictions: []int{}, Outcome: Scored}
	}

	body, err := json.Marshal(scoreRequest{Data: features})
	if err != nil {
		return c.fallback(len(features), 0, errors.E(errors.ScoringExhausted, "cannot encode features", err))
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return c.fallback(len(features), 0, errors.E(errors.Canceled, "waiting for scoring slot", err))
		}
		defer c.sem.Release(1)
	}

	policy := c.policy
	policy.Retryable = func(error) bool { return ctx.Err() == nil }

	var predictions []int
	attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		start := time.Now()
		p, err := c.attempt(ctx, body, len(features))
		c.metrics.ScoringAttempt(err == nil, time.Since(start))
		if err != nil {
			c.logger.Warn("scoring attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Int("batch_size", len(features)),
				zap.Error(err),
			)
			return err
		}
		predictions = p
		return nil
	})
	if err == nil {
		return Result{Predictions: predictions, Attempts: attempts, Outcome: Scored}
	}

	kind := errors.ScoringExhausted
	if ctx.Err() != nil {
		kind = errors.Canceled
	}
	return c.fallback(len(features), attempts, errors.E(kind, fmt.Sprintf("scoring failed after %d attempts", attempts), err))
}

func (c *Client) fallback(n, attempts int, err error) Result {
	c.metrics.ScoringFallback()
	c.logger.Warn("all retries failed, returning fallback predictions",
		zap.Int("batch_size", n),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
	return Result{Predictions: make([]int, n), Attempts: attempts, Outcome: Fallback, Err: err}
}

func (c *Client) attempt(ctx context.Context, body []byte, n int) ([]int, error) {
	if c.cb == nil {
		return c.post(ctx, body, n)
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.post(ctx, body, n)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, errors.E(errors.TransientScoring, "scoring endpoint circuit open", err)
	}
	if err != nil {
		return nil, err
	}
	return out.([]int), nil
}

func (c *Client) post(ctx context.Context, body []byte, n int) ([]int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.E(errors.TransientScoring, "cannot build scoring request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.E(errors.TransientScoring, "scoring request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.E(errors.TransientScoring, "cannot read scoring response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.E(errors.TransientScoring, fmt.Sprintf("scoring endpoint returned status %d", resp.StatusCode), nil)
	}

	c.logger.Debug("raw scoring response", zap.ByteString("body", raw))

	predictions, err := ParseResponse(raw, n)
	if err != nil {
		c.logger.Warn("unexpected format from endpoint", zap.ByteString("payload", raw), zap.Error(err))
		return nil, err
	}
	return predictions, nil
}
