// Package simulation is the in-memory model of the heating power-distribution board:
// output bank, device state machine, thermal and electrical simulation, session accounting,
// calibration recorder and wire test.
//
// Two clocks coexist. Thermal and electrical state advance only when the engine is read
// (monitor snapshot, wire test status), with dt taken from the clock and clamped to [0,2] s.
// Calibration samples are produced by a periodic task from the Scheduler and are stamped on the
// recorder's own clock (n * interval), so they keep flowing when nobody reads the monitor.
package simulation

import (
	"fmt"
	"sync"
	"time"

	"heating_board/internal/modelfit"
	"heating_board/internal/models"
)

const (
	maxTickSeconds        = 2.0
	DefaultSessionHistory = 100
	DefaultCalibHistory   = 16
	defaultFallbackPowerW = 200.0
	defaultWireTauSec     = 48.0
	defaultWireKLoss      = 0.35
	defaultWireThermalC   = 16.8
	defaultFloorThickness = 32.0
	defaultFloorMaxC      = 35.0
	defaultFloorMaterial  = "concrete"
	defaultNichromeFinalC = DefaultWireTarget
)

// DefaultControls mirrors the settings of a freshly provisioned board.
func DefaultControls() models.Controls {
	return models.Controls{
		FloorMaterial:    defaultFloorMaterial,
		FloorThicknessMm: defaultFloorThickness,
		FloorMaxC:        defaultFloorMaxC,
		NichromeFinalC:   defaultNichromeFinalC,
		WireTauSec:       defaultWireTauSec,
		WireKLoss:        defaultWireKLoss,
		WireThermalC:     defaultWireThermalC,
		MaxPowerW:        defaultFallbackPowerW,
	}
}

// Options configure a new Engine. Zero values select defaults.
type Options struct {
	Clock                 Clock
	Scheduler             Scheduler
	Controls              *models.Controls
	SessionHistoryLimit   int
	CalibrationHistoryMax int
	// OnCalibrationArchived is called, outside the engine lock, when a run fills its buffer
	// and is archived by the periodic task rather than by an explicit stop.
	OnCalibrationArchived func(item models.CalibrationHistoryItem)
}

// Transition describes a device state change. Session is set when a running session was archived.
type Transition struct {
	From    models.DeviceState
	To      models.DeviceState
	Changed bool
	Session *models.SessionRecord
}

// Engine is the single owner of all simulated board state. All methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	clock     Clock
	scheduler Scheduler
	onArchive func(models.CalibrationHistoryItem)

	startedAt time.Time
	lastTick  time.Time

	state    models.DeviceState
	bank     OutputBank
	controls models.Controls
	thermal  thermalSim
	elec     electricalSim
	session  sessionAccountant
	calib    calibRecorder
	wire     wireTester
}

// NewEngine returns an engine in the Idle state with all wires at 25°C.
func NewEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.SessionHistoryLimit <= 0 {
		opts.SessionHistoryLimit = DefaultSessionHistory
	}
	if opts.CalibrationHistoryMax <= 0 {
		opts.CalibrationHistoryMax = DefaultCalibHistory
	}
	controls := DefaultControls()
	if opts.Controls != nil {
		controls = *opts.Controls
		controls.FloorMaterial = NormalizeMaterial(controls.FloorMaterial)
	}

	now := opts.Clock.Now()
	return &Engine{
		clock:     opts.Clock,
		scheduler: opts.Scheduler,
		onArchive: opts.OnCalibrationArchived,
		startedAt: now,
		lastTick:  now,
		state:     models.StateIdle,
		bank:      newOutputBank(),
		controls:  controls,
		thermal:   newThermalSim(),
		elec:      newElectricalSim(),
		session:   newSessionAccountant(opts.SessionHistoryLimit),
		calib:     newCalibRecorder(opts.CalibrationHistoryMax),
		wire:      newWireTester(),
	}
}

// ---------- clock helpers (lock held) ----------

func (e *Engine) nowMs() int64 { return e.clock.Now().Sub(e.startedAt).Milliseconds() }

func (e *Engine) epoch(given int64) int64 {
	if given > 0 {
		return given
	}
	return e.clock.Now().Unix()
}

// running is the "system considered running" predicate shared by both simulators.
func (e *Engine) running() bool {
	return e.state == models.StateRunning || e.wire.running || e.calib.meta.Running
}

// resolveTarget picks the wire target: wire test, floor-derived, final nichrome temperature, default.
func (e *Engine) resolveTarget() float64 {
	if e.wire.running && isFinite(e.wire.targetC) {
		return clamp(e.wire.targetC, 0, WireMaxC)
	}
	c := e.controls
	if t, ok := FloorTargetC(c.FloorMaterial, c.FloorThicknessMm, c.FloorMaxC); ok {
		return clamp(t, 0, WireMaxC)
	}
	if isFinite(c.NichromeFinalC) && c.NichromeFinalC > 0 {
		return clamp(c.NichromeFinalC, 0, WireMaxC)
	}
	return DefaultWireTarget
}

// tick advances the pull-driven simulators by the clock delta since the previous read.
func (e *Engine) tick() {
	now := e.clock.Now()
	dt := clamp(now.Sub(e.lastTick).Seconds(), 0, maxTickSeconds)
	e.lastTick = now
	t := now.Sub(e.startedAt).Seconds()

	running := e.running()
	e.thermal.advance(t, dt, e.resolveTarget(), running, &e.bank)
	e.elec.advance(t, running, e.bank.activeCount())
	if e.session.running {
		e.session.update(dt, e.elec.powerW(), e.elec.state.CurrentA)
	}
}

// ---------- device state machine ----------

// DeviceState returns the current state.
func (e *Engine) DeviceState() models.DeviceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetDeviceState applies a transition. Setting the current state is a no-op.
func (e *Engine) SetDeviceState(next models.DeviceState) (Transition, error) {
	if !next.Valid() {
		return Transition{}, fmt.Errorf("device state %q: %w", next, ErrInvalidRange)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setStateLocked(next), nil
}

func (e *Engine) setStateLocked(next models.DeviceState) Transition {
	tr := Transition{From: e.state, To: next}
	if e.state == next {
		return tr
	}
	tr.Changed = true

	// settle the live session up to now before changing what counts as running
	e.tick()
	wasRunning := e.state == models.StateRunning
	e.state = next

	if wasRunning && next != models.StateRunning && e.session.running {
		rec := e.session.finish()
		tr.Session = &rec
	}
	if !wasRunning && next == models.StateRunning {
		e.session.start(e.nowMs())
	}
	if next == models.StateShutdown {
		e.bank.relay = false
		e.bank.allOff()
	}
	return tr
}

// Start enters Running, makes sure some allowed output is on and closes the relay.
func (e *Engine) Start() Transition {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr := e.setStateLocked(models.StateRunning)
	e.bank.ensureRunOutputs()
	e.bank.relay = true
	return tr
}

// ---------- output bank ----------

// SetOutput energizes or releases one channel.
func (e *Engine) SetOutput(index int, on bool) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bank.set(index, on)
	return nil
}

// SetOutputAccess changes the advisory allowed flag of one channel.
func (e *Engine) SetOutputAccess(index int, allowed bool) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bank.setAllowed(index, allowed)
	return nil
}

// SetRelay drives the main relay.
func (e *Engine) SetRelay(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bank.relay = on
}

// Outputs returns the channel flags.
func (e *Engine) Outputs() []models.OutputChannel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bank.snapshot()
}

// ---------- monitor ----------

// MonitorSnapshot advances the simulation and returns the live view.
func (e *Engine) MonitorSnapshot() models.MonitorSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick()

	return models.MonitorSnapshot{
		State:         e.state,
		Ready:         e.state == models.StateIdle,
		Off:           e.state == models.StateShutdown,
		Thermal:       e.thermal.state,
		Electrical:    e.elec.state,
		Outputs:       e.bank.snapshot(),
		Relay:         e.bank.relay || e.state == models.StateRunning,
		WireTargetC:   e.resolveTarget(),
		Session:       e.session.status(),
		SessionTotals: e.session.totals,
	}
}

// SessionHistory returns archived sessions, newest first.
func (e *Engine) SessionHistory() []models.SessionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.historyCopy()
}

// ---------- controls ----------

// Controls returns the current board controls.
func (e *Engine) Controls() models.Controls {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controls
}

// SetControls replaces the board controls.
func (e *Engine) SetControls(c models.Controls) {
	c.FloorMaterial = NormalizeMaterial(c.FloorMaterial)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controls = c
}

// ---------- wire test ----------

// WireTestStart energizes one channel toward targetC.
func (e *Engine) WireTestStart(targetC float64, wire int) error {
	if err := checkIndex(wire); err != nil {
		return err
	}
	if !isFinite(targetC) {
		return fmt.Errorf("target_c: %w", ErrInvalidRange)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.wire.running {
		return fmt.Errorf("wire test (%s): %w", e.wire.purpose, ErrAlreadyRunning)
	}
	e.tick()
	e.wire.start(models.PurposeWireTest, targetC, wire, e.nowMs())
	e.bank.set(wire, true)
	return nil
}

// WireTestStop ends any wire test, including one started by a model calibration.
func (e *Engine) WireTestStop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick()
	e.wire.stop()
}

// WireTestStatus advances the simulation and reports the test.
func (e *Engine) WireTestStatus() models.WireTestStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick()
	return e.wire.status(&e.thermal.state, e.nowMs())
}

// ---------- calibration ----------

// CalibrationStart begins a recorder run. In model mode the wire test is started on the same wire.
func (e *Engine) CalibrationStart(req CalibrationRequest) error {
	if err := req.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.calib.meta.Running {
		return fmt.Errorf("calibration run: %w", ErrAlreadyRunning)
	}
	if req.Mode == models.CalibModeModel && e.wire.running {
		return fmt.Errorf("wire test (%s): %w", e.wire.purpose, ErrAlreadyRunning)
	}

	e.tick()
	nowMs := e.nowMs()
	req.Epoch = e.epoch(req.Epoch)
	e.calib.begin(req, nowMs)

	id := e.calib.runID
	e.calib.cancel = e.scheduler.Every(time.Duration(req.IntervalMs)*time.Millisecond, func() {
		e.calibrationTick(id)
	})

	if req.Mode == models.CalibModeModel {
		e.wire.start(models.PurposeModelCal, req.TargetC, req.WireIndex, nowMs)
		e.bank.set(req.WireIndex, true)
	} else if e.wire.running {
		e.wire.stop()
	}
	return nil
}

// calibrationTick is the periodic task: one sample per firing, auto-stop when the buffer is full.
func (e *Engine) calibrationTick(id uint64) {
	e.mu.Lock()
	if !e.calib.meta.Running || e.calib.runID != id {
		e.mu.Unlock()
		return
	}
	if !e.calib.full() {
		e.calib.appendSample()
		e.mu.Unlock()
		return
	}
	item, archived := e.finishCalibrationLocked(0)
	cb := e.onArchive
	e.mu.Unlock()

	if archived && cb != nil {
		cb(item)
	}
}

func (e *Engine) finishCalibrationLocked(epoch int64) (models.CalibrationHistoryItem, bool) {
	item, ok := e.calib.finish(e.nowMs(), e.epoch(epoch))
	if e.wire.purpose == models.PurposeModelCal {
		e.wire.stop()
	}
	return item, ok
}

// CalibrationStop ends the live run and archives it. Stopping an idle recorder is a no-op.
func (e *Engine) CalibrationStop(epoch int64) (models.CalibrationHistoryItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.calib.meta.Running {
		return models.CalibrationHistoryItem{}, false
	}
	e.tick()
	return e.finishCalibrationLocked(epoch)
}

// CalibrationClear stops any run, drops the live samples and wipes the whole history.
func (e *Engine) CalibrationClear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.wire.purpose == models.PurposeModelCal {
		e.wire.stop()
	}
	e.calib.clear()
}

// CalibrationStatus returns the run meta without samples.
func (e *Engine) CalibrationStatus() models.CalibrationMeta {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calib.status()
}

// CalibrationPage returns samples[offset : offset+count] of the live buffer.
func (e *Engine) CalibrationPage(offset, count int) (models.CalibrationPage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	samples, err := e.calib.page(offset, count)
	if err != nil {
		return models.CalibrationPage{}, err
	}
	return models.CalibrationPage{Meta: e.calib.status(), Samples: samples}, nil
}

// CalibrationHistoryList lists archived runs, newest first.
func (e *Engine) CalibrationHistoryList() []models.CalibrationHistoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calib.historyList()
}

// CalibrationHistoryFile returns one archived run.
func (e *Engine) CalibrationHistoryFile(name string) (models.CalibrationHistoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calib.historyFile(name)
}

// ---------- thermal model ----------

// ModelSuggest fits the live run (if it has enough samples) or the newest archived run and
// reports how many samples were used. On modelfit.ErrInsufficientData the controls-derived
// fallback is returned.
func (e *Engine) ModelSuggest() (models.ModelEstimate, int, error) {
	e.mu.Lock()
	samples := e.calib.samples
	if len(samples) < modelfit.MinSamples && len(e.calib.history) > 0 {
		samples = e.calib.history[0].Samples
	}
	samples = append([]models.CalibrationSample(nil), samples...)
	fallback := models.ModelEstimate{
		WireTau:   e.controls.WireTauSec,
		WireKLoss: e.controls.WireKLoss,
		WireC:     e.controls.WireThermalC,
		MaxPowerW: e.controls.MaxPowerW,
	}
	e.mu.Unlock()

	est, err := modelfit.Fit(samples, fallback)
	return est, len(samples), err
}

// ModelSave stores the finite, positive fields of est into the controls and returns the result.
func (e *Engine) ModelSave(est models.ModelEstimate) models.Controls {
	e.mu.Lock()
	defer e.mu.Unlock()
	if isFinite(est.WireTau) && est.WireTau > 0 {
		e.controls.WireTauSec = est.WireTau
	}
	if isFinite(est.WireKLoss) && est.WireKLoss > 0 {
		e.controls.WireKLoss = est.WireKLoss
	}
	if isFinite(est.WireC) && est.WireC > 0 {
		e.controls.WireThermalC = est.WireC
	}
	return e.controls
}
