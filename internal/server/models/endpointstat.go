package models

// EndpointStat is an aggregate call counter keyed by (method, path).
// Pure telemetry; it carries no reference to the caller.
type EndpointStat struct {
	Method       string  `json:"method"`
	Path         string  `json:"path"`
	RequestCount int     `json:"count"`
	LastCallAt   *string `json:"lastCallAt,omitempty"`
}
