package models

import "strings"

// DeviceState is the top-level board state.
type DeviceState string

const (
	StateIdle     DeviceState = "Idle"
	StateRunning  DeviceState = "Running"
	StateShutdown DeviceState = "Shutdown"
	StateError    DeviceState = "Error" // reserved; only set from outside the engine
)

// Valid reports whether s is one of the known states.
func (s DeviceState) Valid() bool {
	switch s {
	case StateIdle, StateRunning, StateShutdown, StateError:
		return true
	}
	return false
}

// ParseDeviceState accepts a state name in any case ("running", "Running").
func ParseDeviceState(s string) (DeviceState, bool) {
	for _, st := range []DeviceState{StateIdle, StateRunning, StateShutdown, StateError} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// OutputChannel is one switchable heating output.
type OutputChannel struct {
	Index     int  `json:"index"` // 1..10
	Energized bool `json:"energized"`
	Allowed   bool `json:"allowed"`
}

// ThermalState holds the simulated temperatures in °C.
type ThermalState struct {
	WireTempC     [10]float64 `json:"wire_temp_c"`
	BoardTempC    float64     `json:"board_temp_c"`
	HeatsinkTempC float64     `json:"heatsink_temp_c"`
	AmbientC      float64     `json:"ambient_c"`
}

// ElectricalState holds the simulated capacitor bank readings.
type ElectricalState struct {
	CapVoltageV  float64 `json:"cap_voltage_v"`
	CurrentA     float64 `json:"current_a"`
	CapacitanceF float64 `json:"capacitance_f"`
	AdcRawScaled float64 `json:"adc_raw_scaled"`
}

// Controls are the tunable board settings that feed the simulation and the model fallback.
type Controls struct {
	FloorMaterial    string  `json:"floor_material"`
	FloorThicknessMm float64 `json:"floor_thickness_mm"`
	FloorMaxC        float64 `json:"floor_max_c"`
	NichromeFinalC   float64 `json:"nichrome_final_c"`
	WireTauSec       float64 `json:"wire_tau_s"`
	WireKLoss        float64 `json:"wire_k_loss"`
	WireThermalC     float64 `json:"wire_c"`
	MaxPowerW        float64 `json:"max_power_w"`
}

// MonitorSnapshot is the full live view returned by the monitor query.
type MonitorSnapshot struct {
	State         DeviceState     `json:"state"`
	Ready         bool            `json:"ready"`
	Off           bool            `json:"off"`
	Thermal       ThermalState    `json:"thermal"`
	Electrical    ElectricalState `json:"electrical"`
	Outputs       []OutputChannel `json:"outputs"`
	Relay         bool            `json:"relay"`
	WireTargetC   float64         `json:"wire_target_c"`
	Session       SessionStatus   `json:"session"`
	SessionTotals SessionTotals   `json:"session_totals"`
}
