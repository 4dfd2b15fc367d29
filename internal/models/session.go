package models

// SessionRecord is an archived heating run.
type SessionRecord struct {
	StartMs      int64   `json:"start_ms"`
	DurationS    int64   `json:"duration_s"`
	EnergyWh     float64 `json:"energy_wh"`
	PeakPowerW   float64 `json:"peak_power_w"`
	PeakCurrentA float64 `json:"peak_current_a"`
}

// SessionTotals accumulate over the lifetime of the engine.
type SessionTotals struct {
	TotalEnergyWh   float64 `json:"total_energy_wh"`
	TotalSessions   int     `json:"total_sessions"`
	TotalSessionsOk int     `json:"total_sessions_ok"`
}

// SessionStatus is either the live session or the last archived one.
// Valid is false when neither exists.
type SessionStatus struct {
	Valid        bool    `json:"valid"`
	Running      bool    `json:"running"`
	EnergyWh     float64 `json:"energy_wh,omitempty"`
	DurationS    int64   `json:"duration_s,omitempty"`
	PeakPowerW   float64 `json:"peak_power_w,omitempty"`
	PeakCurrentA float64 `json:"peak_current_a,omitempty"`
}
