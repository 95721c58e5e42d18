package api

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LintAvailable bool   `json:"lint_available"`
}

// Format values accepted by POST /compile.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)
