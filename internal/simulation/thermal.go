package simulation

import (
	"math"
	"strings"

	"heating_board/internal/models"
)

// ----------- Thermal constants -----------
const (
	StartTempC        = 25.0  // every wire at engine start
	WireMinC          = 5.0   // clamp floor for wire temperature
	WireMaxC          = 450.0 // clamp ceiling for wire temperature and targets
	DefaultWireTarget = 120.0 // fallback when nothing else resolves

	floorThicknessMinMm = 20.0
	floorThicknessMaxMm = 50.0
	floorGainSpanC      = 2.5
	floorCeilingC       = 35.0

	rateEnergized = 0.9  // 1/s blend rate toward target
	rateIdle      = 0.45 // 1/s blend rate toward ambient
)

// Floor materials by name; the index is the material code used by the dashboard.
var floorMaterials = []string{"wood", "epoxy", "concrete", "slate", "marble", "granite"}

// MaterialBaseC returns the comfortable surface temperature of a floor material.
// Unknown materials fall back to wood.
func MaterialBaseC(material string) float64 {
	switch strings.ToLower(strings.TrimSpace(material)) {
	case "epoxy":
		return 29.0
	case "concrete":
		return 30.5
	case "slate":
		return 31.5
	case "marble":
		return 32.5
	case "granite":
		return 33.0
	default:
		return 28.0
	}
}

// MaterialFromCode maps a dashboard material code (0..5) to its name.
func MaterialFromCode(code int) string {
	if code < 0 || code >= len(floorMaterials) {
		return floorMaterials[0]
	}
	return floorMaterials[code]
}

// NormalizeMaterial accepts a material name and returns its canonical form, or wood.
func NormalizeMaterial(material string) string {
	key := strings.ToLower(strings.TrimSpace(material))
	for _, m := range floorMaterials {
		if m == key {
			return m
		}
	}
	return floorMaterials[0]
}

// FloorTargetC derives the wire target from floor parameters.
// ok is false when the floor is not configured (non-positive or non-finite inputs).
func FloorTargetC(material string, thicknessMm, floorMaxC float64) (target float64, ok bool) {
	if !isFinite(floorMaxC) || floorMaxC <= 0 || !isFinite(thicknessMm) || thicknessMm <= 0 {
		return 0, false
	}
	norm := clamp((thicknessMm-floorThicknessMinMm)/(floorThicknessMaxMm-floorThicknessMinMm), 0, 1)
	maxC := math.Min(floorMaxC, floorCeilingC)
	return clamp(MaterialBaseC(material)+norm*floorGainSpanC, 0, maxC), true
}

// thermalSim advances the per-wire, board and heatsink temperatures.
type thermalSim struct {
	state models.ThermalState
}

func newThermalSim() thermalSim {
	var s thermalSim
	for i := range s.state.WireTempC {
		s.state.WireTempC[i] = StartTempC
	}
	s.state.AmbientC = 24
	s.state.BoardTempC = 28
	s.state.HeatsinkTempC = 27
	return s
}

// ambientAt is the slow room drift around 24°C.
func ambientAt(t float64) float64 { return 24 + 1.2*math.Sin(t/30) }

// advance moves the model forward by dt seconds; t is seconds since simulation start.
func (s *thermalSim) advance(t, dt, target float64, running bool, bank *OutputBank) {
	ambient := ambientAt(t)
	s.state.AmbientC = ambient

	for i := range s.state.WireTempC {
		on := bank.energized[i]
		desired, rate := ambient, rateIdle
		if on {
			rate = rateEnergized
			if running {
				desired = target
			}
		}
		blend := 1 - math.Exp(-rate*dt)
		cur := s.state.WireTempC[i]
		next := cur + (desired-cur)*blend
		ripple := 0.3 * math.Sin(t*0.7+float64(i+1))
		s.state.WireTempC[i] = clamp(next+ripple, WireMinC, WireMaxC)
	}

	heatsinkLift, boardLift := 0.0, 0.0
	if running {
		heatsinkLift = (target - ambient) * 0.35
		boardLift = (target - ambient) * 0.2
	}
	s.state.HeatsinkTempC = ambient + heatsinkLift + 0.6*math.Sin(t/7)
	s.state.BoardTempC = ambient + boardLift + 0.4*math.Sin(t/9)
}

// helpers
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
