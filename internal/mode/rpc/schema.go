// ABOUTME: Request/response schema types for intent RPC methods
// ABOUTME: JSON-serializable results for acknowledgements, get_metrics, get_status

package rpc

import "github.com/mauromedda/intentd/internal/intent"

// AckResult is the response payload for methods with no other result.
type AckResult struct {
	OK bool `json:"ok"`
}

// MetricsResult is the response payload for the get_metrics method.
type MetricsResult struct {
	Metrics intent.Metrics `json:"metrics"`
	Total   int            `json:"total"`
}

// StatusResult is the response payload for the get_status method.
type StatusResult struct {
	Running  bool   `json:"running"`
	Interval string `json:"interval"`
	Intent   string `json:"intent"`
	Previous string `json:"previous,omitempty"`
}
