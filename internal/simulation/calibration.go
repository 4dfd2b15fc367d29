package simulation

import (
	"fmt"
	"math"

	"heating_board/internal/models"
)

// ----------- Recorder limits -----------
const (
	DefaultIntervalMs    = 500
	MinIntervalMs        = 50
	MaxIntervalMs        = 5000
	DefaultMaxSamples    = 1200
	AbsoluteMaxSamples   = 2048
	DefaultCalibTargetC  = 120.0
	burstSamples         = 20
	synthTargetMinC      = 40.0
	synthTargetMaxC      = 150.0
	synthRiseTauSec      = 60.0
	ntcSupplyV           = 3.3
	ntcAdcCounts         = 4095.0
	ntcNominalOhm        = 10000.0
	ntcMinOhm            = 25.0
	historyNamePrefix    = "calib_"
	calibrationPageLimit = AbsoluteMaxSamples
)

// CalibrationRequest is a fully typed calibration start request.
// Zero values have already been replaced with defaults by the caller.
type CalibrationRequest struct {
	Mode       string
	IntervalMs int
	MaxSamples int
	TargetC    float64
	WireIndex  int
	Epoch      int64
}

func (r CalibrationRequest) validate() error {
	switch r.Mode {
	case models.CalibModeModel, models.CalibModeNtc, models.CalibModeFloor:
	default:
		return fmt.Errorf("calibration mode %q: %w", r.Mode, ErrInvalidRange)
	}
	if r.IntervalMs <= 0 {
		return fmt.Errorf("interval_ms %d: %w", r.IntervalMs, ErrInvalidRange)
	}
	if r.MaxSamples <= 0 {
		return fmt.Errorf("max_samples %d: %w", r.MaxSamples, ErrInvalidRange)
	}
	if !isFinite(r.TargetC) {
		return fmt.Errorf("target_c: %w", ErrInvalidRange)
	}
	return checkIndex(r.WireIndex)
}

// calibRecorder owns the live sample buffer and the archived runs.
type calibRecorder struct {
	meta     models.CalibrationMeta
	samples  []models.CalibrationSample
	cancel   func()
	runID    uint64
	counter  int
	history  []models.CalibrationHistoryEntry
	histSize int
}

func newCalibRecorder(historyLimit int) calibRecorder {
	return calibRecorder{
		meta: models.CalibrationMeta{
			Mode:       models.CalibModeNone,
			IntervalMs: DefaultIntervalMs,
			Capacity:   DefaultMaxSamples,
			TargetC:    DefaultCalibTargetC,
			WireIndex:  1,
		},
		histSize: historyLimit,
	}
}

func (c *calibRecorder) begin(req CalibrationRequest, nowMs int64) {
	c.runID++
	c.samples = make([]models.CalibrationSample, 0, req.MaxSamples)
	c.meta = models.CalibrationMeta{
		Running:    true,
		Mode:       req.Mode,
		Capacity:   req.MaxSamples,
		IntervalMs: req.IntervalMs,
		StartMs:    nowMs,
		StartEpoch: req.Epoch,
		TargetC:    req.TargetC,
		WireIndex:  req.WireIndex,
	}
	for i := 0; i < burstSamples && i < req.MaxSamples; i++ {
		c.appendSample()
	}
}

func (c *calibRecorder) full() bool { return len(c.samples) >= c.meta.Capacity }

// appendSample synthesizes the next sample on the recorder's own clock (n * interval).
func (c *calibRecorder) appendSample() {
	n := len(c.samples)
	tMs := int64(n) * int64(c.meta.IntervalMs)
	c.samples = append(c.samples, SynthSample(tMs, n, c.meta.TargetC))
}

func (c *calibRecorder) cancelTimer() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// finish stops the run and archives it; the returned item is empty when nothing was archived.
func (c *calibRecorder) finish(nowMs, epoch int64) (models.CalibrationHistoryItem, bool) {
	c.cancelTimer()
	c.meta.Running = false
	c.meta.Saved = true
	c.meta.SavedMs = nowMs
	c.meta.SavedEpoch = epoch
	if len(c.samples) == 0 {
		return models.CalibrationHistoryItem{}, false
	}

	meta := c.status()
	startEpoch := meta.StartEpoch
	if startEpoch == 0 {
		startEpoch = epoch
	}
	entry := models.CalibrationHistoryEntry{
		Name:       fmt.Sprintf("%s%d_%d", historyNamePrefix, startEpoch, c.counter),
		StartEpoch: startEpoch,
		Meta:       meta,
		Samples:    append([]models.CalibrationSample(nil), c.samples...),
	}
	c.counter++
	c.history = append([]models.CalibrationHistoryEntry{entry}, c.history...)
	if c.histSize > 0 && len(c.history) > c.histSize {
		c.history = c.history[:c.histSize]
	}
	return models.CalibrationHistoryItem{Name: entry.Name, StartEpoch: entry.StartEpoch}, true
}

func (c *calibRecorder) clear() {
	c.cancelTimer()
	c.runID++
	c.meta.Running = false
	c.meta.Saved = false
	c.meta.SavedMs = 0
	c.meta.SavedEpoch = 0
	c.samples = nil
	c.history = nil
}

func (c *calibRecorder) status() models.CalibrationMeta {
	m := c.meta
	m.Count = len(c.samples)
	return m
}

func (c *calibRecorder) page(offset, count int) ([]models.CalibrationSample, error) {
	if offset < 0 || count < 0 {
		return nil, fmt.Errorf("page offset=%d count=%d: %w", offset, count, ErrInvalidRange)
	}
	if count > calibrationPageLimit {
		count = calibrationPageLimit
	}
	if offset >= len(c.samples) {
		return []models.CalibrationSample{}, nil
	}
	end := offset + count
	if end > len(c.samples) {
		end = len(c.samples)
	}
	return append([]models.CalibrationSample(nil), c.samples[offset:end]...), nil
}

func (c *calibRecorder) historyList() []models.CalibrationHistoryItem {
	out := make([]models.CalibrationHistoryItem, 0, len(c.history))
	for _, h := range c.history {
		out = append(out, models.CalibrationHistoryItem{Name: h.Name, StartEpoch: h.StartEpoch})
	}
	return out
}

func (c *calibRecorder) historyFile(name string) (models.CalibrationHistoryEntry, error) {
	for _, h := range c.history {
		if h.Name == name {
			h.Samples = append([]models.CalibrationSample(nil), h.Samples...)
			return h, nil
		}
	}
	return models.CalibrationHistoryEntry{}, fmt.Errorf("calibration history %q: %w", name, ErrNotFound)
}

// SynthTempC is the synthetic NTC reading: a first-order rise toward the target with a slow wobble.
func SynthTempC(tMs int64, targetC float64) float64 {
	t := float64(tMs) / 1000
	target := clamp(targetC, synthTargetMinC, synthTargetMaxC)
	rise := 1 - math.Exp(-t/synthRiseTauSec)
	wobble := 0.02 * math.Sin(t/8)
	return clamp(25+(target-25)*(rise+wobble), 15, 160)
}

// SynthSample builds sample n of a run at offset tMs.
func SynthSample(tMs int64, n int, targetC float64) models.CalibrationSample {
	temp := SynthTempC(tMs, targetC)
	ntcV := 1.1 + 0.005*(temp-25)
	return models.CalibrationSample{
		TMs:         tMs,
		VoltageV:    310 - 0.03*float64(n),
		CurrentA:    7.8 + 0.02*float64(n),
		TempC:       temp,
		NtcVoltageV: ntcV,
		NtcOhm:      math.Max(ntcMinOhm, ntcNominalOhm*math.Exp(-temp/55)),
		NtcAdc:      int(math.Round(ntcV / ntcSupplyV * ntcAdcCounts)),
		NtcOk:       true,
	}
}
