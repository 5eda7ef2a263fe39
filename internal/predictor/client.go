// Package predictor is the HTTP client for the external ML prediction
// service (LSTM forecasting, corrosion classifier, quality grading). The
// models themselves are an opaque collaborator; this package only speaks
// their wire format.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/logger"
	"github.com/NNikoGG/water-quality-monitoring/internal/models"
)

// APIError is an explicit error carried in a prediction response body, e.g.
// {"error": "model unavailable"}. It is a domain error: the transport worked,
// the model did not.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client calls the prediction service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a prediction client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Forecast fetches the multi-step forecast bundle. Null steps in the
// response decode to absent SeriesPoints; present values are unchanged.
func (c *Client) Forecast(ctx context.Context) (models.ForecastBundle, error) {
	var resp forecastResponse
	if err := c.get(ctx, "/predict", &resp); err != nil {
		return models.ForecastBundle{}, err
	}
	if resp.Error != "" {
		return models.ForecastBundle{}, &APIError{Message: resp.Error}
	}
	return models.ForecastBundle{
		Timestamps:  resp.Timestamps,
		Predictions: resp.Predictions,
	}, nil
}

// CorrosionRisk fetches the corrosion classifier's verdict for current data.
func (c *Client) CorrosionRisk(ctx context.Context) (models.CorrosionAssessment, error) {
	var resp corrosionResponse
	if err := c.get(ctx, "/predict-corrosion", &resp); err != nil {
		return models.CorrosionAssessment{}, err
	}
	return resp.assessment()
}

// SimulateCorrosion scores a caller-supplied ordered sequence of readings.
// The upstream model expects exactly ten steps.
func (c *Client) SimulateCorrosion(ctx context.Context, sequence []models.Reading) (models.CorrosionAssessment, error) {
	var resp corrosionResponse
	if err := c.post(ctx, "/simulate-corrosion", sequence, &resp); err != nil {
		return models.CorrosionAssessment{}, err
	}
	return resp.assessment()
}

// QualityGrade fetches the quality grading for current data.
func (c *Client) QualityGrade(ctx context.Context) (models.QualityAssessment, error) {
	var resp qualityResponse
	if err := c.get(ctx, "/predict-quality", &resp); err != nil {
		return models.QualityAssessment{}, err
	}
	return resp.assessment()
}

// SimulateQuality grades a single caller-supplied parameter set.
func (c *Client) SimulateQuality(ctx context.Context, sample models.Reading) (models.QualityAssessment, error) {
	var resp qualityResponse
	if err := c.post(ctx, "/simulate-quality", sample, &resp); err != nil {
		return models.QualityAssessment{}, err
	}
	return resp.assessment()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		if c.log != nil {
			c.log.Warnw("prediction_api_bad_status", "path", path, "status", resp.StatusCode)
		}
		return fmt.Errorf("prediction API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Prediction API wire types.

type forecastResponse struct {
	Timestamps  []string                        `json:"timestamps"`
	Predictions map[string][]models.SeriesPoint `json:"predictions"`
	Error       string                          `json:"error,omitempty"`
}

type corrosionResponse struct {
	RiskLevel       string  `json:"risk_level"`
	RiskProbability float64 `json:"risk_probability"`
	Timestamp       string  `json:"timestamp"`
	Error           string  `json:"error,omitempty"`
}

func (r corrosionResponse) assessment() (models.CorrosionAssessment, error) {
	if r.Error != "" {
		return models.CorrosionAssessment{}, &APIError{Message: r.Error}
	}
	return models.CorrosionAssessment{
		RiskLevel:       r.RiskLevel,
		RiskProbability: r.RiskProbability,
		Timestamp:       r.Timestamp,
	}, nil
}

type qualityResponse struct {
	Grade              string             `json:"grade"`
	GradeProbabilities map[string]float64 `json:"grade_probabilities"`
	FeatureImportance  map[string]float64 `json:"feature_importance"`
	Timestamp          string             `json:"timestamp"`
	Error              string             `json:"error,omitempty"`
}

func (r qualityResponse) assessment() (models.QualityAssessment, error) {
	if r.Error != "" {
		return models.QualityAssessment{}, &APIError{Message: r.Error}
	}
	return models.QualityAssessment{
		Grade:              r.Grade,
		GradeProbabilities: r.GradeProbabilities,
		FeatureImportance:  r.FeatureImportance,
		Timestamp:          r.Timestamp,
	}, nil
}
