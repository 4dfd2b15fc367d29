package models

// Calibration modes accepted by the recorder.
const (
	CalibModeNone  = "none"
	CalibModeModel = "model"
	CalibModeNtc   = "ntc"
	CalibModeFloor = "floor"
)

// CalibrationSample is one captured sensor sample. TMs is relative to the run start.
type CalibrationSample struct {
	TMs         int64   `json:"t_ms"`
	VoltageV    float64 `json:"v"`
	CurrentA    float64 `json:"i"`
	TempC       float64 `json:"temp_c"`
	NtcVoltageV float64 `json:"ntc_v"`
	NtcOhm      float64 `json:"ntc_ohm"`
	NtcAdc      int     `json:"ntc_adc"`
	NtcOk       bool    `json:"ntc_ok"`
	Pressed     bool    `json:"pressed"`
}

// CalibrationMeta describes a recorder run without its samples.
type CalibrationMeta struct {
	Running    bool    `json:"running"`
	Mode       string  `json:"mode"`
	Count      int     `json:"count"`
	Capacity   int     `json:"capacity"`
	IntervalMs int     `json:"interval_ms"`
	StartMs    int64   `json:"start_ms"`
	StartEpoch int64   `json:"start_epoch"`
	Saved      bool    `json:"saved"`
	SavedMs    int64   `json:"saved_ms"`
	SavedEpoch int64   `json:"saved_epoch"`
	TargetC    float64 `json:"target_c"`
	WireIndex  int     `json:"wire_index"`
}

// CalibrationHistoryEntry is an archived run, keyed by Name.
type CalibrationHistoryEntry struct {
	Name       string              `json:"name"`
	StartEpoch int64               `json:"start_epoch"`
	Meta       CalibrationMeta     `json:"meta"`
	Samples    []CalibrationSample `json:"samples"`
}

// CalibrationHistoryItem is the list view of an archived run.
type CalibrationHistoryItem struct {
	Name       string `json:"name"`
	StartEpoch int64  `json:"start_epoch"`
}

// CalibrationPage is a window of the live sample buffer.
type CalibrationPage struct {
	Meta    CalibrationMeta     `json:"meta"`
	Samples []CalibrationSample `json:"samples"`
}
