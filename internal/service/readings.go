package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/feed"
	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/observability"
	"github.com/NNikoGG/water-quality-monitoring/internal/repository"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// DefaultWindowSize bounds the recent window republished on every ingest.
const DefaultWindowSize = 100

var errNonFiniteValue = errors.New("sensor values must be finite numbers")

// ReadingParams is the ingest payload from the sensor system. Timestamp is
// optional; zero means "now".
type ReadingParams struct {
	Timestamp    time.Time
	PH           float64
	Turbidity    float64
	TDS          float64
	Temperature  float64
	Conductivity float64
}

// ParameterSummary holds window statistics for one parameter.
type ParameterSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// WindowSummary is the per-parameter statistics over the current window.
type WindowSummary struct {
	Count      int                         `json:"count"`
	From       time.Time                   `json:"from"`
	To         time.Time                   `json:"to"`
	Parameters map[string]ParameterSummary `json:"parameters"`
}

// ReadingsService owns the reading window: it persists new readings,
// re-materializes the bounded window wholesale, and republishes it on the
// feed hub — the store-change notification of the original system.
type ReadingsService struct {
	repo    repository.ReadingRepo
	feed    *feed.Hub
	metrics *observability.Metrics
	window  int
}

func NewReadingsService(repo repository.ReadingRepo, hub *feed.Hub, metrics *observability.Metrics, window int) *ReadingsService {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return &ReadingsService{repo: repo, feed: hub, metrics: metrics, window: window}
}

// Ingest validates and persists a reading, then publishes the refreshed
// window snapshot.
func (s *ReadingsService) Ingest(ctx context.Context, p ReadingParams) (models.Reading, error) {
	for _, v := range []float64{p.PH, p.Turbidity, p.TDS, p.Temperature, p.Conductivity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Reading{}, errNonFiniteValue
		}
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	reading := models.Reading{
		ID:           uuid.NewString(),
		Timestamp:    ts,
		PH:           p.PH,
		Turbidity:    p.Turbidity,
		TDS:          p.TDS,
		Temperature:  p.Temperature,
		Conductivity: p.Conductivity,
	}

	if err := s.repo.Insert(ctx, reading); err != nil {
		return models.Reading{}, err
	}
	if s.metrics != nil {
		s.metrics.ReadingsIngested.Inc()
	}

	if err := s.publishWindow(ctx); err != nil {
		return models.Reading{}, fmt.Errorf("republish window: %w", err)
	}
	return reading, nil
}

// Window returns the bounded recent window, ascending by timestamp.
func (s *ReadingsService) Window(ctx context.Context) ([]models.Reading, error) {
	return s.repo.Latest(ctx, s.window)
}

// Latest returns the most recent reading. The bool is false when the store
// is empty.
func (s *ReadingsService) Latest(ctx context.Context) (models.Reading, bool, error) {
	readings, err := s.repo.Latest(ctx, 1)
	if err != nil {
		return models.Reading{}, false, err
	}
	if len(readings) == 0 {
		return models.Reading{}, false, nil
	}
	return readings[len(readings)-1], true, nil
}

// Summary computes per-parameter mean/stddev/min/max over the current window.
func (s *ReadingsService) Summary(ctx context.Context) (WindowSummary, error) {
	readings, err := s.repo.Latest(ctx, s.window)
	if err != nil {
		return WindowSummary{}, err
	}

	summary := WindowSummary{
		Count:      len(readings),
		Parameters: make(map[string]ParameterSummary, len(models.Parameters)),
	}
	if len(readings) == 0 {
		return summary, nil
	}
	summary.From = readings[0].Timestamp
	summary.To = readings[len(readings)-1].Timestamp

	values := make([]float64, len(readings))
	for _, p := range models.Parameters {
		for i, r := range readings {
			values[i], _ = r.Value(p)
		}
		summary.Parameters[p] = summarizeSeries(values)
	}
	return summary, nil
}

func summarizeSeries(values []float64) ParameterSummary {
	ps := ParameterSummary{
		Mean: stat.Mean(values, nil),
		Min:  values[0],
		Max:  values[0],
	}
	// StdDev of a single sample is NaN; report 0 instead.
	if len(values) > 1 {
		ps.StdDev = stat.StdDev(values, nil)
	}
	for _, v := range values[1:] {
		ps.Min = math.Min(ps.Min, v)
		ps.Max = math.Max(ps.Max, v)
	}
	return ps
}

// publishWindow re-materializes the window and pushes the snapshot to all
// feed subscribers.
func (s *ReadingsService) publishWindow(ctx context.Context) error {
	readings, err := s.repo.Latest(ctx, s.window)
	if err != nil {
		return err
	}
	if s.feed != nil {
		s.feed.Publish(models.NewSnapshot(readings))
	}
	return nil
}
