package models

import (
	"bytes"
	"encoding/json"
)

// SeriesPoint is one forecast value. The upstream model emits null for steps
// it could not predict; those decode to Valid=false and re-encode as null, so
// absent markers survive a round trip unchanged.
type SeriesPoint struct {
	Value float64
	Valid bool
}

var jsonNull = []byte("null")

// MarshalJSON encodes the value, or null when absent.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return jsonNull, nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON decodes a number or null.
func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		p.Value, p.Valid = 0, false
		return nil
	}
	if err := json.Unmarshal(data, &p.Value); err != nil {
		return err
	}
	p.Valid = true
	return nil
}

// ForecastBundle is the multi-step forecast for all parameters, fetched
// wholesale from the prediction service and replaced on every refresh.
type ForecastBundle struct {
	Timestamps  []string                 `json:"timestamps"`
	Predictions map[string][]SeriesPoint `json:"predictions"`
}

// CorrosionAssessment is the corrosion classifier's verdict.
type CorrosionAssessment struct {
	RiskLevel       string  `json:"risk_level"` // Low | Medium | High
	RiskProbability float64 `json:"risk_probability"`
	Timestamp       string  `json:"timestamp"`
}

// QualityAssessment is the random-forest grading result.
type QualityAssessment struct {
	Grade              string             `json:"grade"` // A | B | C | D
	GradeProbabilities map[string]float64 `json:"grade_probabilities"`
	FeatureImportance  map[string]float64 `json:"feature_importance"`
	Timestamp          string             `json:"timestamp"`
}
