package server

type InvokeResponse struct {
	RequestID string `json:"request_id"`
	// Reason is only set when the CloudFormation response could not be sent.
	Reason string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	UptimeSeconds int    `json:"uptime_seconds"`
}
