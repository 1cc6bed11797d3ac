package models

import "time"

// LogEntry is one parsed vehicle diagnostic event.
type LogEntry struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"` // verbatim from the source line
	VehicleID string `json:"vehicleId"`
	Level     string `json:"level"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// LogStats summarizes what the store currently holds.
type LogStats struct {
	Total       int            `json:"total"`
	ByLevel     map[string]int `json:"byLevel"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
