package handlers

import (
	"net/http"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/service"

	"github.com/gin-gonic/gin"
)

const errSimulateFailed = "simulation failed"

// Request DTO for what-if simulations against the ML service.
type simulationRequest struct {
	Timestamp    string  `json:"timestamp,omitempty" example:"2026-08-26T10:00:00Z"`
	PH           float64 `json:"ph" example:"6.8"`
	Turbidity    float64 `json:"turbidity" example:"3.1"`
	TDS          float64 `json:"tds" example:"410"`
	Temperature  float64 `json:"temperature" example:"24.0"`
	Conductivity float64 `json:"conductivity" example:"610"`
}

func (r simulationRequest) toParams() (service.SimulationParams, error) {
	p := service.SimulationParams{
		PH:           r.PH,
		Turbidity:    r.Turbidity,
		TDS:          r.TDS,
		Temperature:  r.Temperature,
		Conductivity: r.Conductivity,
	}
	if r.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			return p, err
		}
		p.Timestamp = ts
	}
	return p, nil
}

// @Summary      Forecast state
// @Description  Current state of the multi-step forecast (phase, bundle or error).
// @Tags         predictions
// @Produce      json
// @Success      200  {object}  service.ForecastStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/predictions/forecast [get]
// @Security     BearerAuth
func (h *Handler) getForecast(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Predictions.Forecast())
}

// @Summary      Corrosion risk state
// @Tags         predictions
// @Produce      json
// @Success      200  {object}  service.CorrosionStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/predictions/corrosion [get]
// @Security     BearerAuth
func (h *Handler) getCorrosion(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Predictions.Corrosion())
}

// @Summary      Quality grade state
// @Tags         predictions
// @Produce      json
// @Success      200  {object}  service.QualityStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/predictions/quality [get]
// @Security     BearerAuth
func (h *Handler) getQuality(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Predictions.Quality())
}

// @Summary      Simulate corrosion risk
// @Description  Scores a user-supplied parameter set expanded to a ten-step sequence.
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        body  body   simulationRequest  true  "Parameter set"
// @Success      200   {object}  models.CorrosionAssessment
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/predictions/corrosion/simulate [post]
// @Security     BearerAuth
func (h *Handler) simulateCorrosion(c *gin.Context) {
	params, ok := h.bindSimulation(c)
	if !ok {
		return
	}
	assessment, err := h.services.Predictions.SimulateCorrosion(c.Request.Context(), params)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errSimulateFailed, "simulate_corrosion_failed", err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// @Summary      Simulate quality grade
// @Description  Grades a single user-supplied parameter set.
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        body  body   simulationRequest  true  "Parameter set"
// @Success      200   {object}  models.QualityAssessment
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/predictions/quality/simulate [post]
// @Security     BearerAuth
func (h *Handler) simulateQuality(c *gin.Context) {
	params, ok := h.bindSimulation(c)
	if !ok {
		return
	}
	assessment, err := h.services.Predictions.SimulateQuality(c.Request.Context(), params)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errSimulateFailed, "simulate_quality_failed", err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (h *Handler) bindSimulation(c *gin.Context) (service.SimulationParams, bool) {
	var req simulationRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return service.SimulationParams{}, false
	}
	params, err := req.toParams()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp; use RFC3339"})
		return service.SimulationParams{}, false
	}
	return params, true
}
