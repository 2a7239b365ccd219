package models

import "time"

// SMSResult is the outcome of one dispatch attempt.
type SMSResult struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// ProviderHealth is a diagnostic snapshot of the active SMS provider.
type ProviderHealth struct {
	Provider  string `json:"provider"`
	Reachable bool   `json:"reachable"`
	Fallback  bool   `json:"fallback"`
	// RateLimit is nil when sends are not throttled.
	RateLimit *RateLimitStatus `json:"rate_limit,omitempty"`
}

// RateLimitStatus reports the dispatcher's send budget.
type RateLimitStatus struct {
	Available int `json:"available"`
	PerMinute int `json:"per_minute"`
}
