package serving

import (
	// Go Internal Packages
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	// Local Packages
	models "fraud-stream/models"
	"fraud-stream/retry"
	"fraud-stream/services/scoring"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newModel(t *testing.T) *LinearModel {
	t.Helper()
	// only the chargeback feature matters: 3 or more chargebacks is fraud
	m, err := NewLinearModel([]float64{0, 0, 0, 0, 0, 0, 0, 2}, -5, 0.5)
	require.NoError(t, err)
	return m
}

func TestLinearModelPredict(t *testing.T) {
	m := newModel(t)

	got, err := m.Predict([][]float64{
		{1, 10, 0, 0, 0, 0, 0, 0},
		{2, 10, 0, 0, 0, 0, 0, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)

	_, err = m.Predict([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestNewLinearModelValidates(t *testing.T) {
	_, err := NewLinearModel(nil, 0, 0.5)
	assert.Error(t, err)
	_, err = NewLinearModel([]float64{1}, 0, 1.5)
	assert.Error(t, err)
}

func TestHandleScoreReturnsStringWrappedResult(t *testing.T) {
	s := NewServer(newModel(t), zap.NewNop())

	body := `{"data": [[1, 10, 0, 0, 0, 0, 0, 4]]}`
	req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"{\"result\":[1]}"`, strings.TrimSpace(w.Body.String()))
}

func TestHandleScoreErrors(t *testing.T) {
	s := NewServer(newModel(t), zap.NewNop())

	for _, body := range []string{`not json`, `{}`, `{"data": [[1, 2]]}`} {
		req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `\"error\"`, body)
		assert.NotContains(t, w.Body.String(), `\"result\"`, body)
	}
}

func TestHandleScoreMethod(t *testing.T) {
	s := NewServer(newModel(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/score", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealth(t *testing.T) {
	s := NewServer(newModel(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestScoringClientAgainstServer(t *testing.T) {
	server := httptest.NewServer(NewServer(newModel(t), zap.NewNop()))
	defer server.Close()

	client := scoring.NewClient(scoring.ClientConfig{
		Endpoint: server.URL + "/score",
		Timeout:  time.Second,
		Policy:   retry.Policy{MaxAttempts: 3, Backoff: retry.Exponential(time.Second), Clock: &retry.FakeClock{}},
	}, server.Client(), zap.NewNop(), nil)

	res := client.Score(context.Background(), []models.FeatureVector{
		{7, 9000, 1, 0, 1, 1, 1, 5},
		{8, 12, 2, 0, 0, 0, 0, 0},
	})

	assert.Equal(t, scoring.Scored, res.Outcome)
	assert.Equal(t, []int{1, 0}, res.Predictions)
	assert.Equal(t, 1, res.Attempts)
}
