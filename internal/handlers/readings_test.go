package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"
	"github.com/NNikoGG/water-quality-monitoring/internal/service"
)

func doRequest(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, buf)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReadingsHandlers_IngestAndWindow(t *testing.T) {
	stored := models.Reading{
		ID:        "r-1",
		Timestamp: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		PH:        7.2,
	}
	rd := &mockReadings{ingested: stored, window: []models.Reading{stored}}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Readings:      rd,
		Classifier:    &mockClassifier{},
	}
	r := newTestRouter(s, nil)

	// Ingest requires auth.
	w := doRequest(r, http.MethodPost, "/api/v1/readings", `{"ph":7.2}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// Valid ingest → 200, params forwarded.
	w = doRequest(r, http.MethodPost, "/api/v1/readings",
		`{"timestamp":"2026-08-26T10:00:00Z","ph":7.2,"turbidity":0.8,"tds":250,"temperature":21.5,"conductivity":430}`,
		"valid")
	if w.Code != http.StatusOK {
		t.Fatalf("ingest status=%d, body=%s", w.Code, w.Body.String())
	}
	if rd.ingestCalls != 1 {
		t.Fatalf("Ingest calls=%d", rd.ingestCalls)
	}
	if rd.lastIngest.PH != 7.2 || rd.lastIngest.TDS != 250 {
		t.Fatalf("wrong ingest params: %+v", rd.lastIngest)
	}
	if !rd.lastIngest.Timestamp.Equal(stored.Timestamp) {
		t.Fatalf("timestamp not parsed: %v", rd.lastIngest.Timestamp)
	}
	var ingestResp struct {
		Status  string         `json:"status"`
		Reading models.Reading `json:"reading"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &ingestResp)
	if ingestResp.Status != "stored" || ingestResp.Reading.ID != "r-1" {
		t.Fatalf("bad ingest response: %+v", ingestResp)
	}

	// Malformed timestamp → 400, service never reached.
	w = doRequest(r, http.MethodPost, "/api/v1/readings", `{"timestamp":"yesterday","ph":7}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad timestamp, got %d", w.Code)
	}
	if rd.ingestCalls != 1 {
		t.Fatalf("Ingest must not run on bad timestamp, calls=%d", rd.ingestCalls)
	}

	// Window → 200 with count and readings.
	w = doRequest(r, http.MethodGet, "/api/v1/readings", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("window status=%d, body=%s", w.Code, w.Body.String())
	}
	var windowResp struct {
		Count    int              `json:"count"`
		Readings []models.Reading `json:"readings"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &windowResp)
	if windowResp.Count != 1 || len(windowResp.Readings) != 1 {
		t.Fatalf("bad window response: %+v", windowResp)
	}
}

func TestReadingsHandlers_LatestWithStatuses(t *testing.T) {
	latest := models.Reading{ID: "r-9", PH: 4.9}
	rd := &mockReadings{latest: latest, latestOK: true}
	cl := &mockClassifier{statuses: map[string]models.Status{
		models.ParamPH: {Label: "Acidic", Severity: "danger"},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Readings: rd, Classifier: cl}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/readings/latest", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("latest status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Reading  models.Reading           `json:"reading"`
		Statuses map[string]models.Status `json:"statuses"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reading.ID != "r-9" {
		t.Fatalf("wrong reading: %+v", resp.Reading)
	}
	if got := resp.Statuses[models.ParamPH]; got.Label != "Acidic" || got.Severity != "danger" {
		t.Fatalf("wrong status: %+v", got)
	}
}

func TestReadingsHandlers_LatestEmptyStoreIs404(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Readings:      &mockReadings{latestOK: false},
		Classifier:    &mockClassifier{},
	}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/readings/latest", "", "valid")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty store, got %d", w.Code)
	}
}

func TestReadingsHandlers_SummaryAndErrors(t *testing.T) {
	summary := service.WindowSummary{
		Count: 2,
		Parameters: map[string]service.ParameterSummary{
			models.ParamPH: {Mean: 7.0, Min: 6.8, Max: 7.2},
		},
	}
	rd := &mockReadings{summary: summary}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Readings: rd}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/readings/summary", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("summary status=%d, body=%s", w.Code, w.Body.String())
	}
	var got service.WindowSummary
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Count != 2 || got.Parameters[models.ParamPH].Mean != 7.0 {
		t.Fatalf("bad summary: %+v", got)
	}

	// Service failure → 500 with generic message.
	rd.summaryErr = errors.New("db down")
	w = doRequest(r, http.MethodGet, "/api/v1/readings/summary", "", "valid")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("db down")) {
		t.Fatalf("internal error leaked to client: %s", w.Body.String())
	}
}

func TestReadingsHandlers_ExportCSV(t *testing.T) {
	payload := "Timestamp,pH,Turbidity (NTU),TDS (ppm),Temperature (°C),Conductivity (μS/cm)\n"
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Export:        &mockExport{payload: payload},
	}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/readings/export", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("export status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != csvContentType {
		t.Fatalf("Content-Type=%q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != csvAttachment {
		t.Fatalf("Content-Disposition=%q", cd)
	}
	if w.Body.String() != payload {
		t.Fatalf("body mismatch: %q", w.Body.String())
	}
}
