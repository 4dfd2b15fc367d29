package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"heating_board/internal/models"
	"heating_board/internal/simulation"
)

// OutputParams address one output channel (1..10).
type OutputParams struct {
	Index int
	On    bool
}

// CalibrationParams is an untrusted calibration start request; zero fields take defaults.
type CalibrationParams struct {
	Mode       string
	IntervalMs int
	MaxSamples int
	TargetC    float64
	WireIndex  int
	Epoch      int64
}

// WireTestParams is an untrusted wire test start request; zero fields take defaults.
type WireTestParams struct {
	TargetC   float64
	WireIndex int
}

// ControlsParams is a partial controls update; nil fields are left unchanged.
// FloorMaterial accepts a name ("slate") or a dashboard code ("3").
type ControlsParams struct {
	FloorMaterial    *string
	FloorThicknessMm *float64
	FloorMaxC        *float64
	NichromeFinalC   *float64
	WireTauSec       *float64
	WireKLoss        *float64
	WireThermalC     *float64
	MaxPowerW        *float64
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "STATE_CHANGE", "CALIBRATION_STOP", ... see events.go
}

// Page defaults.
const (
	DefaultPageCount = 200
	maxTargetC       = simulation.WireMaxC
)

// calibrationRequest applies defaults and firmware limits and rejects what cannot be coerced.
func calibrationRequest(p CalibrationParams) (simulation.CalibrationRequest, error) {
	req := simulation.CalibrationRequest{
		Mode:       strings.ToLower(strings.TrimSpace(p.Mode)),
		IntervalMs: p.IntervalMs,
		MaxSamples: p.MaxSamples,
		TargetC:    p.TargetC,
		WireIndex:  p.WireIndex,
		Epoch:      p.Epoch,
	}
	if req.Mode == "" {
		req.Mode = models.CalibModeModel
	}
	if req.IntervalMs < 0 || req.MaxSamples < 0 || req.WireIndex < 0 {
		return req, fmt.Errorf("interval_ms=%d max_samples=%d wire_index=%d: %w",
			p.IntervalMs, p.MaxSamples, p.WireIndex, simulation.ErrInvalidRange)
	}
	if req.IntervalMs == 0 {
		req.IntervalMs = simulation.DefaultIntervalMs
	}
	req.IntervalMs = clampInt(req.IntervalMs, simulation.MinIntervalMs, simulation.MaxIntervalMs)
	if req.MaxSamples == 0 {
		req.MaxSamples = simulation.DefaultMaxSamples
	}
	req.MaxSamples = clampInt(req.MaxSamples, 1, simulation.AbsoluteMaxSamples)
	req.TargetC = targetOrDefault(req.TargetC, simulation.DefaultCalibTargetC)
	if req.WireIndex == 0 {
		req.WireIndex = 1
	}
	if req.Epoch < 0 {
		req.Epoch = 0
	}
	return req, nil
}

// wireTestRequest returns the target and wire for a wire test start.
func wireTestRequest(p WireTestParams) (float64, int) {
	wire := p.WireIndex
	if wire == 0 {
		wire = 1
	}
	return targetOrDefault(p.TargetC, simulation.DefaultWireTarget), wire
}

// applyControls merges p into c. Non-finite or negative numbers are rejected.
func applyControls(c models.Controls, p ControlsParams) (models.Controls, error) {
	if p.FloorMaterial != nil {
		m, err := parseMaterial(*p.FloorMaterial)
		if err != nil {
			return c, err
		}
		c.FloorMaterial = m
	}
	fields := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"floor_thickness_mm", p.FloorThicknessMm, &c.FloorThicknessMm},
		{"floor_max_c", p.FloorMaxC, &c.FloorMaxC},
		{"nichrome_final_c", p.NichromeFinalC, &c.NichromeFinalC},
		{"wire_tau_s", p.WireTauSec, &c.WireTauSec},
		{"wire_k_loss", p.WireKLoss, &c.WireKLoss},
		{"wire_c", p.WireThermalC, &c.WireThermalC},
		{"max_power_w", p.MaxPowerW, &c.MaxPowerW},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v := *f.src
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return c, fmt.Errorf("%s=%v: %w", f.name, v, simulation.ErrInvalidRange)
		}
		*f.dst = v
	}
	if c.NichromeFinalC > maxTargetC || c.FloorMaxC > maxTargetC {
		return c, fmt.Errorf("temperatures above %.0f°C: %w", maxTargetC, simulation.ErrInvalidRange)
	}
	return c, nil
}

// parseMaterial accepts a known material name or its code 0..5.
func parseMaterial(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, err := strconv.Atoi(s); err == nil {
		if code < 0 || code > 5 {
			return "", fmt.Errorf("floor material code %d: %w", code, simulation.ErrInvalidRange)
		}
		return simulation.MaterialFromCode(code), nil
	}
	if m := simulation.NormalizeMaterial(s); m == s {
		return m, nil
	}
	return "", fmt.Errorf("floor material %q: %w", s, simulation.ErrInvalidRange)
}

func targetOrDefault(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return def
	}
	return math.Max(0, math.Min(v, maxTargetC))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
