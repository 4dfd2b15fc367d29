package models

import "time"

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // STATE_CHANGE | CALIBRATION_START | ... see service/events.go
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
