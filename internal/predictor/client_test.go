package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, nil)
}

func TestClient_ForecastDecodesNullSteps(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"timestamps": ["2026-08-26T10:00:00Z", "2026-08-26T11:00:00Z"],
			"predictions": {"ph": [7.1, null], "tds": [null, 410.5]}
		}`))
	})

	bundle, err := client.Forecast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-26T10:00:00Z", "2026-08-26T11:00:00Z"}, bundle.Timestamps)

	ph := bundle.Predictions["ph"]
	require.Len(t, ph, 2)
	assert.Equal(t, models.SeriesPoint{Value: 7.1, Valid: true}, ph[0])
	assert.False(t, ph[1].Valid, "JSON null must decode to an absent point")

	tds := bundle.Predictions["tds"]
	require.Len(t, tds, 2)
	assert.False(t, tds[0].Valid)
	assert.Equal(t, 410.5, tds[1].Value)
}

func TestClient_ForecastBodyErrorBecomesAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "not enough data to forecast"}`))
	})

	_, err := client.Forecast(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not enough data to forecast", apiErr.Message)
}

func TestClient_NonOKStatusIsTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	})

	_, err := client.CorrosionRisk(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "bad status must not look like a body-level error")
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_CorrosionRiskDecodes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict-corrosion", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"risk_level": "Moderate",
			"risk_probability": 0.47,
			"timestamp": "2026-08-26T12:00:00Z"
		}`))
	})

	got, err := client.CorrosionRisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.CorrosionAssessment{
		RiskLevel:       "Moderate",
		RiskProbability: 0.47,
		Timestamp:       "2026-08-26T12:00:00Z",
	}, got)
}

func TestClient_SimulateCorrosionPostsSequence(t *testing.T) {
	t.Parallel()

	var received []map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/simulate-corrosion", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"risk_level": "High", "risk_probability": 0.91}`))
	})

	sequence := make([]models.Reading, 10)
	base := time.Date(2026, 8, 26, 3, 0, 0, 0, time.UTC)
	for i := range sequence {
		sequence[i] = models.Reading{Timestamp: base.Add(time.Duration(i) * time.Hour), PH: 6.1, TDS: 950}
	}

	got, err := client.SimulateCorrosion(context.Background(), sequence)
	require.NoError(t, err)
	assert.Equal(t, "High", got.RiskLevel)

	require.Len(t, received, 10)
	assert.Equal(t, 6.1, received[0]["ph"])
	assert.Equal(t, 950.0, received[9]["tds"])
}

func TestClient_QualityGradeDecodes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict-quality", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"grade": "A",
			"grade_probabilities": {"A": 0.8, "B": 0.15, "C": 0.05},
			"feature_importance": {"ph": 0.4, "turbidity": 0.3},
			"timestamp": "2026-08-26T12:00:00Z"
		}`))
	})

	got, err := client.QualityGrade(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", got.Grade)
	assert.Equal(t, 0.8, got.GradeProbabilities["A"])
	assert.Equal(t, 0.4, got.FeatureImportance["ph"])
}

func TestClient_SimulateQualityBodyError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simulate-quality", r.URL.Path)
		var sample map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sample))
		assert.Equal(t, 7.2, sample["ph"])
		_, _ = w.Write([]byte(`{"error": "invalid parameter set"}`))
	})

	_, err := client.SimulateQuality(context.Background(), models.Reading{PH: 7.2})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid parameter set", apiErr.Message)
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Forecast(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
