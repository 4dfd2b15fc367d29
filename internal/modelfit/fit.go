// Package modelfit estimates a first-order thermal model (tau, k, C) of a heating wire
// from one calibration run.
package modelfit

import (
	"errors"
	"math"

	"heating_board/internal/models"
)

// ErrInsufficientData means the run cannot support an estimate; the fallback is returned with it.
var ErrInsufficientData = errors.New("insufficient data")

const (
	MinSamples        = 5
	minThresholdW     = 5.0
	thresholdFraction = 0.2
	cutoffRun         = 3 // consecutive low-power samples that mark the heater cut
	ambientTail       = 10
	minDeltaC         = 1.0
	riseFraction      = 0.632
)

// Fit returns tau/k/C estimated from samples. Any field that cannot be computed is taken from
// fallback. When the run is unusable the fallback itself is returned with ErrInsufficientData.
func Fit(samples []models.CalibrationSample, fallback models.ModelEstimate) (models.ModelEstimate, error) {
	if len(samples) < MinSamples {
		return fallback, ErrInsufficientData
	}

	n := len(samples)
	tms := make([]float64, n)
	temps := make([]float64, n)
	powers := make([]float64, n)
	maxPower := 0.0
	for i, s := range samples {
		tms[i] = float64(s.TMs)
		temps[i] = s.TempC
		p := s.VoltageV * s.CurrentA
		powers[i] = p
		if finite(p) && p > maxPower {
			maxPower = p
		}
	}
	if maxPower <= 0 {
		maxPower = 0
		if finite(fallback.MaxPowerW) {
			maxPower = fallback.MaxPowerW
		}
	}
	threshold := math.Max(minThresholdW, maxPower*thresholdFraction)

	start := 0
	for start < n && !(finite(powers[start]) && powers[start] > threshold) {
		start++
	}
	if start >= n {
		start = 0
	}

	end := -1
	low := 0
	for i := start + 1; i < n; i++ {
		if !finite(powers[i]) || powers[i] < threshold {
			low++
			if low >= cutoffRun {
				end = i - 2
				break
			}
		} else {
			low = 0
		}
	}

	peakIndex, peakTemp := start, math.Inf(-1)
	for i := start; i < n; i++ {
		if finite(temps[i]) && temps[i] > peakTemp {
			peakTemp = temps[i]
			peakIndex = i
		}
		if end >= start && i >= end {
			break
		}
	}
	if !finite(peakTemp) {
		return fallback, ErrInsufficientData
	}

	ambient := tailMean(temps, ambientTail)
	if !finite(ambient) {
		return fallback, ErrInsufficientData
	}
	deltaT := peakTemp - ambient
	if !finite(deltaT) || deltaT <= minDeltaC {
		return fallback, ErrInsufficientData
	}

	tStart := tms[start]
	tPeak := tms[peakIndex]
	t63 := ambient + riseFraction*deltaT
	t63Ms := math.NaN()
	for i := start; i <= peakIndex; i++ {
		if finite(temps[i]) && temps[i] >= t63 {
			t63Ms = tms[i]
			break
		}
	}

	tau := math.NaN()
	switch {
	case finite(t63Ms) && t63Ms > tStart:
		tau = (t63Ms - tStart) / 1000
	case tPeak > tStart:
		tau = (tPeak - tStart) / 3000
	}

	pSum, pCount := 0.0, 0
	for i := start; i <= peakIndex; i++ {
		if finite(powers[i]) && powers[i] > 0 {
			pSum += powers[i]
			pCount++
		}
	}
	pAvg := maxPower
	if pCount > 0 {
		pAvg = pSum / float64(pCount)
	}

	kLoss := pAvg / deltaT
	if !finite(kLoss) || kLoss <= 0 {
		kLoss = math.NaN()
	}
	thermalC := tau * kLoss

	return models.ModelEstimate{
		WireTau:   orFallback(tau, fallback.WireTau),
		WireKLoss: orFallback(kLoss, fallback.WireKLoss),
		WireC:     orFallback(thermalC, fallback.WireC),
		MaxPowerW: orFallback(maxPower, fallback.MaxPowerW),
	}, nil
}

// tailMean averages the last count finite values.
func tailMean(vals []float64, count int) float64 {
	sum, used := 0.0, 0
	for i := len(vals) - 1; i >= 0 && used < count; i-- {
		if finite(vals[i]) {
			sum += vals[i]
			used++
		}
	}
	if used == 0 {
		return math.NaN()
	}
	return sum / float64(used)
}

func orFallback(v, fb float64) float64 {
	if finite(v) {
		return v
	}
	return fb
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
