package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/feed"
	"github.com/NNikoGG/water-quality-monitoring/internal/logger"
	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/observability"
	"github.com/NNikoGG/water-quality-monitoring/internal/predictor"

	"github.com/jonboulle/clockwork"
)

// PredictionAPI is the external ML service surface consumed here.
// *predictor.Client satisfies it.
type PredictionAPI interface {
	Forecast(ctx context.Context) (models.ForecastBundle, error)
	CorrosionRisk(ctx context.Context) (models.CorrosionAssessment, error)
	SimulateCorrosion(ctx context.Context, sequence []models.Reading) (models.CorrosionAssessment, error)
	QualityGrade(ctx context.Context) (models.QualityAssessment, error)
	SimulateQuality(ctx context.Context, sample models.Reading) (models.QualityAssessment, error)
}

// FetchPhase is the lifecycle of one prediction type. No phase is terminal:
// any trigger moves the machine back to Loading.
type FetchPhase string

const (
	PhaseIdle    FetchPhase = "idle"
	PhaseLoading FetchPhase = "loading"
	PhaseSuccess FetchPhase = "success"
	PhaseError   FetchPhase = "error"
)

// ErrFetchPredictions is the user-facing message for transport failures.
// Errors carried in a response body pass through verbatim instead.
const ErrFetchPredictions = "Failed to fetch predictions. Please try again later."

const (
	DefaultPollInterval = 30 * time.Second
	DefaultMinReadings  = 1
	simulationSteps     = 10
	simulationStepGap   = time.Hour
)

// Prediction endpoint labels, shared with metrics.
const (
	endpointForecast  = "predict"
	endpointCorrosion = "predict-corrosion"
	endpointQuality   = "predict-quality"
	endpointSimCorr   = "simulate-corrosion"
	endpointSimQual   = "simulate-quality"
)

// fetchState is one prediction type's state machine. seq grows with every
// fetch; a response is applied only while its seq is still the newest, which
// keeps a late response from overwriting a fresher one.
type fetchState[T any] struct {
	mu      sync.Mutex
	seq     uint64
	phase   FetchPhase
	result  *T
	errMsg  string
	updated time.Time
}

// begin re-enters Loading and returns the request's sequence number.
func (s *fetchState[T]) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.phase = PhaseLoading
	return s.seq
}

// succeed applies a successful result; reports false for superseded requests.
func (s *fetchState[T]) succeed(seq uint64, v T, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.phase = PhaseSuccess
	s.result = &v
	s.errMsg = ""
	s.updated = now
	return true
}

// fail records an error and clears any prior result; reports false for
// superseded requests.
func (s *fetchState[T]) fail(seq uint64, msg string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.phase = PhaseError
	s.result = nil
	s.errMsg = msg
	s.updated = now
	return true
}

func (s *fetchState[T]) snapshot() (FetchPhase, *T, string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase := s.phase
	if phase == "" {
		phase = PhaseIdle
	}
	return phase, s.result, s.errMsg, s.updated
}

// ForecastStatus is the forecast machine's current state.
type ForecastStatus struct {
	Phase     FetchPhase             `json:"phase"`
	Bundle    *models.ForecastBundle `json:"bundle,omitempty"`
	Error     string                 `json:"error,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// CorrosionStatus is the corrosion machine's current state.
type CorrosionStatus struct {
	Phase      FetchPhase                  `json:"phase"`
	Assessment *models.CorrosionAssessment `json:"assessment,omitempty"`
	Error      string                      `json:"error,omitempty"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// QualityStatus is the quality machine's current state.
type QualityStatus struct {
	Phase      FetchPhase                `json:"phase"`
	Assessment *models.QualityAssessment `json:"assessment,omitempty"`
	Error      string                    `json:"error,omitempty"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// SimulationParams is a user-supplied what-if parameter set.
type SimulationParams struct {
	Timestamp    time.Time
	PH           float64
	Turbidity    float64
	TDS          float64
	Temperature  float64
	Conductivity float64
}

// PredictionService keeps per-endpoint prediction state fresh: the forecast
// refetches on every feed snapshot once enough readings exist, corrosion and
// quality poll on independent uncoordinated timers, and simulate calls go
// through on demand.
type PredictionService struct {
	api     PredictionAPI
	feed    *feed.Hub
	clock   clockwork.Clock
	log     *logger.Logger
	metrics *observability.Metrics

	minReadings  int
	pollInterval time.Duration

	forecast  fetchState[models.ForecastBundle]
	corrosion fetchState[models.CorrosionAssessment]
	quality   fetchState[models.QualityAssessment]
}

func NewPredictionService(api PredictionAPI, hub *feed.Hub, clock clockwork.Clock, log *logger.Logger, metrics *observability.Metrics, minReadings int, pollInterval time.Duration) *PredictionService {
	if minReadings <= 0 {
		minReadings = DefaultMinReadings
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &PredictionService{
		api:          api,
		feed:         hub,
		clock:        clock,
		log:          log,
		metrics:      metrics,
		minReadings:  minReadings,
		pollInterval: pollInterval,
	}
}

// Run drives the triggers until ctx is canceled. Fetches run in their own
// goroutines so a slow endpoint never stalls the others; overlapping
// requests are allowed and resolved by the sequence guard.
func (s *PredictionService) Run(ctx context.Context) {
	snapshots, release := s.feed.Subscribe()
	defer release()

	corrosionTick := s.clock.NewTicker(s.pollInterval)
	defer corrosionTick.Stop()
	qualityTick := s.clock.NewTicker(s.pollInterval)
	defer qualityTick.Stop()

	// Prime the polled endpoints so dashboards aren't empty for a full tick.
	go s.refreshCorrosion(ctx)
	go s.refreshQuality(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if len(snap.Readings) >= s.minReadings {
				go s.refreshForecast(ctx)
			}
		case <-corrosionTick.Chan():
			go s.refreshCorrosion(ctx)
		case <-qualityTick.Chan():
			go s.refreshQuality(ctx)
		}
	}
}

// Forecast returns the forecast machine's current state.
func (s *PredictionService) Forecast() ForecastStatus {
	phase, bundle, errMsg, updated := s.forecast.snapshot()
	return ForecastStatus{Phase: phase, Bundle: bundle, Error: errMsg, UpdatedAt: updated}
}

// Corrosion returns the corrosion machine's current state.
func (s *PredictionService) Corrosion() CorrosionStatus {
	phase, a, errMsg, updated := s.corrosion.snapshot()
	return CorrosionStatus{Phase: phase, Assessment: a, Error: errMsg, UpdatedAt: updated}
}

// Quality returns the quality machine's current state.
func (s *PredictionService) Quality() QualityStatus {
	phase, a, errMsg, updated := s.quality.snapshot()
	return QualityStatus{Phase: phase, Assessment: a, Error: errMsg, UpdatedAt: updated}
}

// SimulateCorrosion expands the parameter set into the ten-step hourly
// sequence the corrosion model expects and scores it.
func (s *PredictionService) SimulateCorrosion(ctx context.Context, p SimulationParams) (models.CorrosionAssessment, error) {
	start := s.clock.Now()
	assessment, err := s.api.SimulateCorrosion(ctx, s.buildSequence(p))
	s.observe(endpointSimCorr, start, err)
	if err != nil {
		return models.CorrosionAssessment{}, err
	}
	return assessment, nil
}

// SimulateQuality grades a single parameter set.
func (s *PredictionService) SimulateQuality(ctx context.Context, p SimulationParams) (models.QualityAssessment, error) {
	start := s.clock.Now()
	assessment, err := s.api.SimulateQuality(ctx, s.buildSample(p))
	s.observe(endpointSimQual, start, err)
	if err != nil {
		return models.QualityAssessment{}, err
	}
	return assessment, nil
}

func (s *PredictionService) refreshForecast(ctx context.Context) {
	seq := s.forecast.begin()
	start := s.clock.Now()
	bundle, err := s.api.Forecast(ctx)
	s.observe(endpointForecast, start, err)
	if err != nil {
		s.logError(endpointForecast, err)
		if !s.forecast.fail(seq, userMessage(err), s.clock.Now()) {
			s.dropStale(endpointForecast)
		}
		return
	}
	if !s.forecast.succeed(seq, bundle, s.clock.Now()) {
		s.dropStale(endpointForecast)
	}
}

func (s *PredictionService) refreshCorrosion(ctx context.Context) {
	seq := s.corrosion.begin()
	start := s.clock.Now()
	assessment, err := s.api.CorrosionRisk(ctx)
	s.observe(endpointCorrosion, start, err)
	if err != nil {
		s.logError(endpointCorrosion, err)
		if !s.corrosion.fail(seq, userMessage(err), s.clock.Now()) {
			s.dropStale(endpointCorrosion)
		}
		return
	}
	if !s.corrosion.succeed(seq, assessment, s.clock.Now()) {
		s.dropStale(endpointCorrosion)
	}
}

func (s *PredictionService) refreshQuality(ctx context.Context) {
	seq := s.quality.begin()
	start := s.clock.Now()
	assessment, err := s.api.QualityGrade(ctx)
	s.observe(endpointQuality, start, err)
	if err != nil {
		s.logError(endpointQuality, err)
		if !s.quality.fail(seq, userMessage(err), s.clock.Now()) {
			s.dropStale(endpointQuality)
		}
		return
	}
	if !s.quality.succeed(seq, assessment, s.clock.Now()) {
		s.dropStale(endpointQuality)
	}
}

// buildSequence turns one parameter set into the ten-step hourly series
// ending at the supplied (or current) timestamp.
func (s *PredictionService) buildSequence(p SimulationParams) []models.Reading {
	end := p.Timestamp
	if end.IsZero() {
		end = s.clock.Now().UTC()
	}
	sequence := make([]models.Reading, simulationSteps)
	for i := range sequence {
		step := s.buildSample(p)
		step.Timestamp = end.Add(-time.Duration(simulationSteps-1-i) * simulationStepGap)
		sequence[i] = step
	}
	return sequence
}

func (s *PredictionService) buildSample(p SimulationParams) models.Reading {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now().UTC()
	}
	return models.Reading{
		Timestamp:    ts.UTC(),
		PH:           p.PH,
		Turbidity:    p.Turbidity,
		TDS:          p.TDS,
		Temperature:  p.Temperature,
		Conductivity: p.Conductivity,
	}
}

func (s *PredictionService) observe(endpoint string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.PredictionRequests.WithLabelValues(endpoint, outcome).Inc()
	s.metrics.PredictionDuration.WithLabelValues(endpoint).Observe(s.clock.Since(start).Seconds())
}

func (s *PredictionService) dropStale(endpoint string) {
	if s.metrics != nil {
		s.metrics.StaleDropped.WithLabelValues(endpoint).Inc()
	}
	if s.log != nil {
		s.log.Debugw("stale_prediction_response_dropped", "endpoint", endpoint)
	}
}

func (s *PredictionService) logError(endpoint string, err error) {
	if s.log != nil {
		s.log.Warnw("prediction_fetch_failed", "endpoint", endpoint, "err", err)
	}
}

// userMessage maps an error to what the dashboard shows: body-level errors
// verbatim, transport failures as the fixed retry message.
func userMessage(err error) string {
	var apiErr *predictor.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ErrFetchPredictions
}
