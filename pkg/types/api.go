package types

// GenerateCardRequest is the payload for POST /generate-card.
type GenerateCardRequest struct {
	// Free-text description of the card to generate.
	// example: a weather widget with a city input and a refresh button
	Description string `json:"description" example:"a weather widget"`
}

// ErrorResponse is the consistent JSON error payload for all failure responses.
type ErrorResponse struct {
	// Short machine-stable error identifier.
	// example: rate_limited
	Error string `json:"error" example:"rate_limited"`
	// Short human-readable detail. Never contains raw provider payloads.
	// example: provider rate limit exceeded
	Details string `json:"details" example:"provider rate limit exceeded"`
	// Suggested wait in seconds before retrying. Only set on rate-limit errors.
	// example: 3600
	RetryAfter int `json:"retryAfter,omitempty" example:"3600"`
}

// HealthResponse is returned by GET /.
type HealthResponse struct {
	// Overall service status.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Routes exposed by this server.
	Endpoints []string `json:"endpoints"`
	// Server version string.
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
}
