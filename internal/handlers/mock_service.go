package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/NNikoGG/water-quality-monitoring/internal/feed"
	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockReadings struct {
	ingested   models.Reading
	ingestErr  error
	window     []models.Reading
	windowErr  error
	latest     models.Reading
	latestOK   bool
	latestErr  error
	summary    service.WindowSummary
	summaryErr error

	lastIngest  service.ReadingParams
	ingestCalls int
}

func (m *mockReadings) Ingest(ctx context.Context, p service.ReadingParams) (models.Reading, error) {
	m.ingestCalls++
	m.lastIngest = p
	return m.ingested, m.ingestErr
}
func (m *mockReadings) Window(ctx context.Context) ([]models.Reading, error) {
	return m.window, m.windowErr
}
func (m *mockReadings) Latest(ctx context.Context) (models.Reading, bool, error) {
	return m.latest, m.latestOK, m.latestErr
}
func (m *mockReadings) Summary(ctx context.Context) (service.WindowSummary, error) {
	return m.summary, m.summaryErr
}

type mockClassifier struct {
	status   models.Status
	statuses map[string]models.Status
	err      error
}

func (m *mockClassifier) Classify(parameter string, value float64) (models.Status, error) {
	return m.status, m.err
}
func (m *mockClassifier) ClassifyReading(r models.Reading) map[string]models.Status {
	return m.statuses
}

type mockExport struct {
	payload string
	err     error
}

func (m *mockExport) WriteCSV(ctx context.Context, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.payload)
	return err
}

type mockPredictions struct {
	forecast  service.ForecastStatus
	corrosion service.CorrosionStatus
	quality   service.QualityStatus

	simCorrosion    models.CorrosionAssessment
	simCorrosionErr error
	simQuality      models.QualityAssessment
	simQualityErr   error

	lastSimParams service.SimulationParams
	runCalls      int
}

func (m *mockPredictions) Run(ctx context.Context) { m.runCalls++ }
func (m *mockPredictions) Forecast() service.ForecastStatus {
	return m.forecast
}
func (m *mockPredictions) Corrosion() service.CorrosionStatus {
	return m.corrosion
}
func (m *mockPredictions) Quality() service.QualityStatus {
	return m.quality
}
func (m *mockPredictions) SimulateCorrosion(ctx context.Context, p service.SimulationParams) (models.CorrosionAssessment, error) {
	m.lastSimParams = p
	return m.simCorrosion, m.simCorrosionErr
}
func (m *mockPredictions) SimulateQuality(ctx context.Context, p service.SimulationParams) (models.QualityAssessment, error) {
	m.lastSimParams = p
	return m.simQuality, m.simQualityErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, hub *feed.Hub) *gin.Engine {
	if hub == nil {
		hub = feed.NewHub(nil)
	}
	h := NewHandler(s, hub, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
