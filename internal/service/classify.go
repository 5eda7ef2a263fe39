package service

import (
	"fmt"
	"math"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"
)

// band is one threshold interval. A value matches the first band whose upper
// bound exceeds it; bands therefore form half-open intervals [prev, upper)
// evaluated top to bottom, and the final band is unbounded.
type band struct {
	upper    float64
	label    string
	severity string
}

var phBands = []band{
	{5, "Acidic", models.SeverityDanger},
	{6.5, "Slightly Acidic", models.SeverityWarn},
	{7.5, "Neutral", models.SeverityOK},
	{9, "Slightly Basic", models.SeverityWarn},
	{math.Inf(1), "Basic", models.SeverityDanger},
}

var turbidityBands = []band{
	{1, "Clear", models.SeverityOK},
	{5, "Slightly Cloudy", models.SeverityInfo},
	{10, "Cloudy", models.SeverityWarn},
	{math.Inf(1), "Highly Turbid", models.SeverityDanger},
}

var tdsBands = []band{
	{300, "Excellent", models.SeverityOK},
	{600, "Good", models.SeverityInfo},
	{900, "Fair", models.SeverityWarn},
	{1200, "Poor", models.SeverityWarn},
	{math.Inf(1), "Unacceptable", models.SeverityDanger},
}

var temperatureBands = []band{
	{15, "Cold", models.SeverityInfo},
	{25, "Optimal", models.SeverityOK},
	{35, "Warm", models.SeverityWarn},
	{math.Inf(1), "Hot", models.SeverityDanger},
}

var conductivityBands = []band{
	{200, "Low Mineralization", models.SeverityInfo},
	{800, "Normal", models.SeverityOK},
	{2000, "Elevated", models.SeverityWarn},
	{math.Inf(1), "High", models.SeverityDanger},
}

var bandTables = map[string][]band{
	models.ParamPH:           phBands,
	models.ParamTurbidity:    turbidityBands,
	models.ParamTDS:          tdsBands,
	models.ParamTemperature:  temperatureBands,
	models.ParamConductivity: conductivityBands,
}

// ClassifierService derives qualitative statuses from single values.
// Stateless; every method is a pure function of its arguments.
type ClassifierService struct{}

func NewClassifierService() *ClassifierService {
	return &ClassifierService{}
}

// Classify returns the status for one parameter value. Total over finite
// inputs: every finite float lands in some band, including values far outside
// the physical range. Unknown parameter names are an error.
func (s *ClassifierService) Classify(parameter string, value float64) (models.Status, error) {
	bands, ok := bandTables[parameter]
	if !ok {
		return models.Status{}, fmt.Errorf("unknown parameter %q", parameter)
	}
	return classify(bands, value), nil
}

// ClassifyReading classifies every parameter of a reading.
func (s *ClassifierService) ClassifyReading(r models.Reading) map[string]models.Status {
	statuses := make(map[string]models.Status, len(models.Parameters))
	for _, p := range models.Parameters {
		v, _ := r.Value(p)
		statuses[p], _ = s.Classify(p, v)
	}
	return statuses
}

// classify walks the band table top to bottom; first match wins.
func classify(bands []band, value float64) models.Status {
	for _, b := range bands {
		if value < b.upper {
			return models.Status{Label: b.label, Severity: b.severity}
		}
	}
	// Unreachable for finite values: the last band's bound is +Inf.
	last := bands[len(bands)-1]
	return models.Status{Label: last.label, Severity: last.severity}
}
