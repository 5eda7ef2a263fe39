package service

import (
	"context"
	"io"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/feed"
	"github.com/NNikoGG/water-quality-monitoring/internal/logger"
	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/observability"
	"github.com/NNikoGG/water-quality-monitoring/internal/repository"

	"github.com/jonboulle/clockwork"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Readings exposes the reading window: the external sensor system's write
// path plus read access for dashboards.
type Readings interface {
	Ingest(ctx context.Context, p ReadingParams) (models.Reading, error)
	Window(ctx context.Context) ([]models.Reading, error)
	Latest(ctx context.Context) (models.Reading, bool, error)
	Summary(ctx context.Context) (WindowSummary, error)
}

// Classifier maps a single parameter value to a qualitative status.
type Classifier interface {
	Classify(parameter string, value float64) (models.Status, error)
	ClassifyReading(r models.Reading) map[string]models.Status
}

// Export writes the full reading history as CSV.
type Export interface {
	WriteCSV(ctx context.Context, w io.Writer) error
}

// Predictions owns the per-endpoint fetch state machines against the
// external ML service. Run blocks until ctx is canceled.
type Predictions interface {
	Run(ctx context.Context)
	Forecast() ForecastStatus
	Corrosion() CorrosionStatus
	Quality() QualityStatus
	SimulateCorrosion(ctx context.Context, p SimulationParams) (models.CorrosionAssessment, error)
	SimulateQuality(ctx context.Context, p SimulationParams) (models.QualityAssessment, error)
}

// Service aggregates all sub-services.
type Service struct {
	Readings
	Classifier
	Export
	Predictions
	Authorization
}

// Deps carries everything the service layer is wired with.
type Deps struct {
	Repos     *repository.Repository
	Feed      *feed.Hub
	Predictor PredictionAPI
	Clock     clockwork.Clock
	Metrics   *observability.Metrics
	Log       *logger.Logger

	WindowSize   int           // bounded recent window, default 100
	MinReadings  int           // readings required before forecasting
	PollInterval time.Duration // corrosion/quality poll cadence
	SigningKey   string        // JWT signing key
	TokenTTL     time.Duration
}

// NewService wires repositories, the feed hub, and the prediction client
// into concrete services.
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	readings := NewReadingsService(d.Repos.Readings, d.Feed, d.Metrics, d.WindowSize)
	return &Service{
		Readings:      readings,
		Classifier:    NewClassifierService(),
		Export:        NewExportService(d.Repos.Readings),
		Predictions:   NewPredictionService(d.Predictor, d.Feed, d.Clock, d.Log, d.Metrics, d.MinReadings, d.PollInterval),
		Authorization: NewAuthService(d.Repos.Auth, d.SigningKey, d.TokenTTL),
	}
}
