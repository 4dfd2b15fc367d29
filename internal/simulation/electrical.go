package simulation

import (
	"math"

	"heating_board/internal/models"
)

const (
	busNominalV    = 320.0
	idleCurrentA   = 0.15
	runBaseA       = 5.0
	perChannelA    = 0.4
	maxCurrentA    = 100.0
	adcFullScaleV  = 400.0
	adcCounts      = 4095.0
	bankNominalF   = 0.012
	bankRippleF    = 0.0015
	sagVoltsPerAmp = 0.5
)

// electricalSim advances the capacitor bank readings.
type electricalSim struct {
	state models.ElectricalState
}

func newElectricalSim() electricalSim {
	return electricalSim{state: models.ElectricalState{
		CapVoltageV:  busNominalV,
		CurrentA:     0.2,
		CapacitanceF: bankNominalF,
		AdcRawScaled: 32.0,
	}}
}

func (s *electricalSim) advance(t float64, running bool, activeCount int) {
	base := idleCurrentA
	if running {
		base = runBaseA + perChannelA*float64(activeCount)
	}
	current := clamp(base+1.2*math.Sin(t/2.5), 0, maxCurrentA)
	capV := busNominalV + 6*math.Sin(t/5) - current*sagVoltsPerAmp

	s.state.CurrentA = current
	s.state.CapVoltageV = capV
	s.state.AdcRawScaled = math.Round(capV/adcFullScaleV*adcCounts) / 100
	s.state.CapacitanceF = bankNominalF + bankRippleF*math.Sin(t/13)
}

// powerW is the instantaneous bus power.
func (s *electricalSim) powerW() float64 { return s.state.CapVoltageV * s.state.CurrentA }
