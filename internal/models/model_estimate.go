package models

// ModelEstimate is a first-order thermal model of a heating wire.
type ModelEstimate struct {
	WireTau   float64 `json:"wire_tau"`    // s
	WireKLoss float64 `json:"wire_k_loss"` // W/°C
	WireC     float64 `json:"wire_c"`      // J/°C
	MaxPowerW float64 `json:"max_power_w"`
}

// ModelSuggestion is a fit result. Fitted is false when the estimate is the controls fallback.
type ModelSuggestion struct {
	ModelEstimate
	Fitted  bool   `json:"fitted"`
	Samples int    `json:"samples"`
	Reason  string `json:"reason,omitempty"`
}
