package handlers

import (
	"net/http"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	errIngestReading  = "failed to store reading"
	errGetWindow      = "failed to load readings"
	errGetSummary     = "failed to compute summary"
	errExportReadings = "failed to export readings"

	csvContentType = "text/csv; charset=utf-8"
	csvAttachment  = `attachment; filename="sensor_data.csv"`
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for reading ingest. Timestamp is optional RFC3339; empty means now.
type readingRequest struct {
	Timestamp    string  `json:"timestamp,omitempty" example:"2026-08-26T10:00:00Z"`
	PH           float64 `json:"ph" example:"7.2"`
	Turbidity    float64 `json:"turbidity" example:"2.4"`
	TDS          float64 `json:"tds" example:"320"`
	Temperature  float64 `json:"temperature" example:"21.5"`
	Conductivity float64 `json:"conductivity" example:"540"`
}

func (r readingRequest) toParams() (service.ReadingParams, error) {
	p := service.ReadingParams{
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

// @Summary      Ingest a sensor reading
// @Description  Write path of the sensor system; republishes the realtime window.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        body  body   readingRequest  true  "Reading payload"
// @Success      200   {object}  map[string]interface{}  "status, reading"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/readings [post]
// @Security     BearerAuth
func (h *Handler) ingestReading(c *gin.Context) {
	var req readingRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	params, err := req.toParams()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp; use RFC3339"})
		return
	}

	reading, err := h.services.Readings.Ingest(c.Request.Context(), params)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errIngestReading, "reading_ingest_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stored", "reading": reading})
}

// @Summary      Recent readings window
// @Description  Last readings ordered ascending by timestamp (bounded window).
// @Tags         readings
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     BearerAuth
func (h *Handler) getWindow(c *gin.Context) {
	readings, err := h.services.Readings.Window(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetWindow, "readings_window_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(readings), "readings": readings})
}

// @Summary      Latest reading with statuses
// @Description  Most recent reading plus per-parameter qualitative status.
// @Tags         readings
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "reading, statuses"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings/latest [get]
// @Security     BearerAuth
func (h *Handler) getLatest(c *gin.Context) {
	reading, ok, err := h.services.Readings.Latest(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetWindow, "readings_latest_failed", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no readings yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reading":  reading,
		"statuses": h.services.Classifier.ClassifyReading(reading),
	})
}

// @Summary      Window statistics
// @Description  Per-parameter mean/stddev/min/max over the current window.
// @Tags         readings
// @Produce      json
// @Success      200  {object}  service.WindowSummary
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings/summary [get]
// @Security     BearerAuth
func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.services.Readings.Summary(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSummary, "readings_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary      Export readings as CSV
// @Description  One-time full read of the collection, 2-decimal values.
// @Tags         readings
// @Produce      text/csv
// @Success      200  {string}  string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings/export [get]
// @Security     BearerAuth
func (h *Handler) exportCSV(c *gin.Context) {
	c.Header("Content-Type", csvContentType)
	c.Header("Content-Disposition", csvAttachment)
	if err := h.services.Export.WriteCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and abort the stream.
		if h.log != nil {
			h.log.Errorw("readings_export_failed", "err", err)
		}
		c.Abort()
		return
	}
	c.Status(http.StatusOK)
}
