package simulation

import (
	"math"

	"heating_board/internal/models"
)

const wireTestMode = "energy"

// wireTester energizes one channel toward a target temperature.
type wireTester struct {
	running    bool
	purpose    string
	targetC    float64
	activeWire int
	updatedMs  int64
}

func newWireTester() wireTester {
	return wireTester{purpose: models.PurposeNone, targetC: DefaultWireTarget, activeWire: 1}
}

func (w *wireTester) start(purpose string, targetC float64, wire int, nowMs int64) {
	w.running = true
	w.purpose = purpose
	w.targetC = targetC
	w.activeWire = wire
	w.updatedMs = nowMs
}

func (w *wireTester) stop() {
	w.running = false
	w.purpose = models.PurposeNone
	w.updatedMs = 0
}

// status reads the thermal model for the active wire; temperatures are unavailable while idle.
func (w *wireTester) status(th *models.ThermalState, nowMs int64) models.WireTestStatus {
	st := models.WireTestStatus{
		Running:    w.running,
		Mode:       wireTestMode,
		Purpose:    w.purpose,
		TargetC:    w.targetC,
		ActiveWire: w.activeWire,
		UpdatedMs:  w.updatedMs,
	}
	if !w.running {
		return st
	}
	active := th.WireTempC[w.activeWire-1]
	ntc := th.HeatsinkTempC
	st.ActiveTempC = &active
	st.NtcTempC = &ntc
	st.PacketMs = 140 + 30*math.Sin(float64(nowMs)/800)
	st.FrameMs = 320 + 40*math.Sin(float64(nowMs)/900)
	w.updatedMs = nowMs
	st.UpdatedMs = nowMs
	return st
}
