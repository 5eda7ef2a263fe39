package models

// Severity display classes, ordered from benign to critical.
const (
	SeverityOK     = "ok"
	SeverityInfo   = "info"
	SeverityWarn   = "warn"
	SeverityDanger = "danger"
)

// Status is the qualitative classification of a single parameter value.
// Derived purely from the value and a fixed band table; never persisted.
type Status struct {
	Label    string `json:"status"`
	Severity string `json:"severity"`
}
