package models

// Wire test purposes.
const (
	PurposeNone     = "none"
	PurposeWireTest = "wire_test"
	PurposeModelCal = "model_cal"
)

// WireTestStatus reports the single-channel test. Temperatures are nil while idle.
type WireTestStatus struct {
	Running     bool     `json:"running"`
	Mode        string   `json:"mode"`
	Purpose     string   `json:"purpose"`
	TargetC     float64  `json:"target_c"`
	ActiveWire  int      `json:"active_wire"`
	NtcTempC    *float64 `json:"ntc_temp_c"`
	ActiveTempC *float64 `json:"active_temp_c"`
	PacketMs    float64  `json:"packet_ms"`
	FrameMs     float64  `json:"frame_ms"`
	UpdatedMs   int64    `json:"updated_ms"`
}
