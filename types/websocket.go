package types

import "time"

// ProgressMessage is pushed to WebSocket clients on every job update
type ProgressMessage struct {
	JobID     string    `json:"jobId"`
	Type      string    `json:"type"` // "status", "progress", "complete", "error"
	Status    string    `json:"status"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message,omitempty"`
	Progress  float64   `json:"progress"`
	Timestamp time.Time `json:"timestamp"`
}
