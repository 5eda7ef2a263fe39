package models

import "time"

// Reading is a single water-quality sensor sample. Readings are immutable
// once created and identified by their ID.
type Reading struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`    // ISO-8601 / RFC3339 on the wire
	PH           float64   `json:"ph"`           // pH units
	Turbidity    float64   `json:"turbidity"`    // NTU
	TDS          float64   `json:"tds"`          // ppm
	Temperature  float64   `json:"temperature"`  // °C
	Conductivity float64   `json:"conductivity"` // μS/cm
}

// Snapshot is the materialized recent window of readings, replaced wholesale
// on every store change. Readings are ordered ascending by timestamp; Latest
// is the last element and is the zero Reading when the window is empty.
type Snapshot struct {
	Readings []Reading `json:"readings"`
	Latest   Reading   `json:"latest"`
}

// NewSnapshot builds a Snapshot from an ascending-ordered window.
func NewSnapshot(readings []Reading) Snapshot {
	s := Snapshot{Readings: readings}
	if n := len(readings); n > 0 {
		s.Latest = readings[n-1]
	}
	return s
}

// Parameter names as used across classifiers, forecasts, and summaries.
const (
	ParamPH           = "ph"
	ParamTurbidity    = "turbidity"
	ParamTDS          = "tds"
	ParamTemperature  = "temperature"
	ParamConductivity = "conductivity"
)

// Parameters lists all sensor parameters in canonical order.
var Parameters = []string{ParamPH, ParamTurbidity, ParamTDS, ParamTemperature, ParamConductivity}

// Value returns the reading's value for a named parameter.
// The second return is false for unknown parameter names.
func (r Reading) Value(parameter string) (float64, bool) {
	switch parameter {
	case ParamPH:
		return r.PH, true
	case ParamTurbidity:
		return r.Turbidity, true
	case ParamTDS:
		return r.TDS, true
	case ParamTemperature:
		return r.Temperature, true
	case ParamConductivity:
		return r.Conductivity, true
	default:
		return 0, false
	}
}
