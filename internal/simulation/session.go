package simulation

import (
	"math"

	"heating_board/internal/models"
)

// sessionAccountant tracks the live run and archives finished runs, newest first.
type sessionAccountant struct {
	running      bool
	startMs      int64
	energyWh     float64
	durationS    float64
	peakPowerW   float64
	peakCurrentA float64

	last    *models.SessionRecord
	history []models.SessionRecord
	limit   int
	totals  models.SessionTotals
}

func newSessionAccountant(limit int) sessionAccountant {
	return sessionAccountant{limit: limit}
}

func (a *sessionAccountant) start(nowMs int64) {
	a.running = true
	a.startMs = nowMs
	a.energyWh = 0
	a.durationS = 0
	a.peakPowerW = 0
	a.peakCurrentA = 0
}

func (a *sessionAccountant) update(dt, powerW, currentA float64) {
	if !a.running || dt <= 0 {
		return
	}
	a.durationS += dt
	if powerW > 0 {
		a.energyWh += powerW * dt / 3600
	}
	a.peakPowerW = math.Max(a.peakPowerW, powerW)
	a.peakCurrentA = math.Max(a.peakCurrentA, currentA)
}

// finish archives the live session and returns the record.
func (a *sessionAccountant) finish() models.SessionRecord {
	rec := models.SessionRecord{
		StartMs:      a.startMs,
		DurationS:    int64(math.Round(math.Max(0, a.durationS))),
		EnergyWh:     roundTo(a.energyWh, 2),
		PeakPowerW:   roundTo(a.peakPowerW, 1),
		PeakCurrentA: roundTo(a.peakCurrentA, 2),
	}
	a.history = append([]models.SessionRecord{rec}, a.history...)
	if a.limit > 0 && len(a.history) > a.limit {
		a.history = a.history[:a.limit]
	}
	a.last = &rec
	a.totals.TotalEnergyWh += rec.EnergyWh
	a.totals.TotalSessions++
	a.totals.TotalSessionsOk++
	a.running = false
	return rec
}

func (a *sessionAccountant) status() models.SessionStatus {
	if a.running {
		return models.SessionStatus{
			Valid:        true,
			Running:      true,
			EnergyWh:     a.energyWh,
			DurationS:    int64(math.Round(a.durationS)),
			PeakPowerW:   a.peakPowerW,
			PeakCurrentA: a.peakCurrentA,
		}
	}
	if a.last != nil {
		return models.SessionStatus{
			Valid:        true,
			EnergyWh:     a.last.EnergyWh,
			DurationS:    a.last.DurationS,
			PeakPowerW:   a.last.PeakPowerW,
			PeakCurrentA: a.last.PeakCurrentA,
		}
	}
	return models.SessionStatus{}
}

func (a *sessionAccountant) historyCopy() []models.SessionRecord {
	out := make([]models.SessionRecord, len(a.history))
	copy(out, a.history)
	return out
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
