package simulation

import (
	"errors"
	"math"
	"testing"
	"time"

	"heating_board/internal/modelfit"
	"heating_board/internal/models"
)

func modelRequest() CalibrationRequest {
	return CalibrationRequest{
		Mode:       models.CalibModeModel,
		IntervalMs: DefaultIntervalMs,
		MaxSamples: DefaultMaxSamples,
		TargetC:    DefaultCalibTargetC,
		WireIndex:  2,
		Epoch:      1_700_000_000,
	}
}

func TestCalibration_BurstThenOneSamplePerFiring(t *testing.T) {
	e, _, sched := newTestEngine(t)

	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("CalibrationStart: %v", err)
	}
	if got := e.CalibrationStatus().Count; got != burstSamples {
		t.Fatalf("burst count=%d, want %d", got, burstSamples)
	}
	if len(sched.tasks) != 1 || sched.tasks[0].interval != 500*time.Millisecond {
		t.Fatalf("expected one 500ms task, got %+v", sched.tasks)
	}

	const firings = 7
	sched.Fire(firings)
	page, err := e.CalibrationPage(0, 1000)
	if err != nil {
		t.Fatalf("CalibrationPage: %v", err)
	}
	if len(page.Samples) != burstSamples+firings {
		t.Fatalf("samples=%d, want %d", len(page.Samples), burstSamples+firings)
	}
	for i := 1; i < len(page.Samples); i++ {
		if page.Samples[i].TMs <= page.Samples[i-1].TMs {
			t.Fatalf("t_ms not strictly increasing at %d: %d <= %d", i, page.Samples[i].TMs, page.Samples[i-1].TMs)
		}
	}

	item, ok := e.CalibrationStop(0)
	if !ok {
		t.Fatalf("stop should archive")
	}
	if sched.live() != 0 {
		t.Fatalf("periodic task not cancelled")
	}
	entry, err := e.CalibrationHistoryFile(item.Name)
	if err != nil {
		t.Fatalf("CalibrationHistoryFile: %v", err)
	}
	if entry.Meta.Count != len(entry.Samples) || entry.Meta.Count != burstSamples+firings {
		t.Fatalf("meta.count=%d samples=%d", entry.Meta.Count, len(entry.Samples))
	}
	if entry.Meta.Running || !entry.Meta.Saved || entry.StartEpoch != 1_700_000_000 {
		t.Fatalf("archived meta %+v", entry.Meta)
	}

	st := e.CalibrationStatus()
	if st.Running || !st.Saved {
		t.Fatalf("status after stop %+v", st)
	}
}

func TestCalibration_HistoryNamesAreUnique(t *testing.T) {
	e, _, _ := newTestEngine(t)
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		req := modelRequest()
		req.Mode = models.CalibModeNtc // same epoch every run
		if err := e.CalibrationStart(req); err != nil {
			t.Fatalf("run %d start: %v", i, err)
		}
		item, ok := e.CalibrationStop(0)
		if !ok || seen[item.Name] {
			t.Fatalf("run %d: name %q ok=%v", i, item.Name, ok)
		}
		seen[item.Name] = true
	}
	list := e.CalibrationHistoryList()
	if len(list) != 4 || list[0].Name != "calib_1700000000_3" {
		t.Fatalf("history newest first: %+v", list)
	}
}

func TestCalibration_AlreadyRunning(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := e.CalibrationStart(modelRequest()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second start err=%v, want ErrAlreadyRunning", err)
	}
}

func TestCalibration_ModelModeDrivesWireTest(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_ = e.SetOutput(2, false)

	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("start: %v", err)
	}
	wt := e.WireTestStatus()
	if !wt.Running || wt.Purpose != models.PurposeModelCal || wt.ActiveWire != 2 || wt.TargetC != 120 {
		t.Fatalf("wire test %+v", wt)
	}
	if !e.Outputs()[1].Energized {
		t.Fatalf("calibration wire should be energized")
	}

	e.CalibrationStop(0)
	if wt := e.WireTestStatus(); wt.Running || wt.Purpose != models.PurposeNone {
		t.Fatalf("model wire test should stop with the run: %+v", wt)
	}
}

func TestCalibration_ModelModeRefusedDuringWireTest(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if err := e.WireTestStart(80, 4); err != nil {
		t.Fatalf("WireTestStart: %v", err)
	}
	if err := e.CalibrationStart(modelRequest()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err=%v, want ErrAlreadyRunning", err)
	}
	if wt := e.WireTestStatus(); !wt.Running || wt.Purpose != models.PurposeWireTest {
		t.Fatalf("refused start must leave the wire test alone: %+v", wt)
	}
}

func TestCalibration_NonModelModeStopsWireTest(t *testing.T) {
	for _, mode := range []string{models.CalibModeNtc, models.CalibModeFloor} {
		t.Run(mode, func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			if err := e.WireTestStart(200, 4); err != nil {
				t.Fatalf("WireTestStart: %v", err)
			}
			req := modelRequest()
			req.Mode = mode
			if err := e.CalibrationStart(req); err != nil {
				t.Fatalf("CalibrationStart: %v", err)
			}
			if wt := e.WireTestStatus(); wt.Running || wt.Purpose != models.PurposeNone {
				t.Fatalf("wire test should stop when a %s run starts: %+v", mode, wt)
			}
			if !e.CalibrationStatus().Running {
				t.Fatal("calibration not running")
			}
		})
	}
}

func TestCalibration_InvalidRequests(t *testing.T) {
	e, _, _ := newTestEngine(t)
	mutate := []func(*CalibrationRequest){
		func(r *CalibrationRequest) { r.WireIndex = 0 },
		func(r *CalibrationRequest) { r.WireIndex = 11 },
		func(r *CalibrationRequest) { r.IntervalMs = -1 },
		func(r *CalibrationRequest) { r.MaxSamples = -5 },
		func(r *CalibrationRequest) { r.Mode = "bogus" },
	}
	for i, m := range mutate {
		req := modelRequest()
		m(&req)
		if err := e.CalibrationStart(req); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("case %d: err=%v, want ErrInvalidRange", i, err)
		}
	}
	if e.CalibrationStatus().Running {
		t.Fatalf("rejected requests must not start a run")
	}
}

func TestCalibration_PageStaysInWindow(t *testing.T) {
	e, _, sched := newTestEngine(t)
	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Fire(10) // 30 samples

	cases := []struct {
		offset, count int
		wantLen       int
	}{
		{0, 200, 30},
		{5, 10, 10},
		{25, 10, 5},
		{30, 10, 0},
		{100, 5, 0},
		{3, 0, 0},
	}
	for _, tc := range cases {
		page, err := e.CalibrationPage(tc.offset, tc.count)
		if err != nil {
			t.Fatalf("page(%d,%d): %v", tc.offset, tc.count, err)
		}
		if len(page.Samples) != tc.wantLen {
			t.Fatalf("page(%d,%d) len=%d, want %d", tc.offset, tc.count, len(page.Samples), tc.wantLen)
		}
		for i, s := range page.Samples {
			wantT := int64(tc.offset+i) * DefaultIntervalMs
			if s.TMs != wantT {
				t.Fatalf("page(%d,%d)[%d] t_ms=%d, want %d", tc.offset, tc.count, i, s.TMs, wantT)
			}
		}
	}
	if _, err := e.CalibrationPage(-1, 5); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("negative offset err=%v", err)
	}
}

func TestCalibration_ClearWipesEverything(t *testing.T) {
	e, _, sched := newTestEngine(t)
	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.CalibrationStop(0)
	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	sched.Fire(3)

	e.CalibrationClear()
	sched.fireStale()

	st := e.CalibrationStatus()
	if st.Count != 0 || st.Running || st.Saved {
		t.Fatalf("status after clear %+v", st)
	}
	if got := e.CalibrationHistoryList(); len(got) != 0 {
		t.Fatalf("history after clear %+v", got)
	}
	if wt := e.WireTestStatus(); wt.Running {
		t.Fatalf("model wire test should stop on clear")
	}
}

func TestCalibration_FullBufferAutoStops(t *testing.T) {
	clk := newFakeClock()
	sched := &manualScheduler{}
	var archived []models.CalibrationHistoryItem
	e := NewEngine(Options{
		Clock:                 clk,
		Scheduler:             sched,
		OnCalibrationArchived: func(item models.CalibrationHistoryItem) { archived = append(archived, item) },
	})

	req := modelRequest()
	req.MaxSamples = 22
	if err := e.CalibrationStart(req); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Fire(2)
	if st := e.CalibrationStatus(); !st.Running || st.Count != 22 {
		t.Fatalf("status %+v", st)
	}
	sched.Fire(1)
	st := e.CalibrationStatus()
	if st.Running || !st.Saved || st.Count != 22 {
		t.Fatalf("buffer full should auto-stop: %+v", st)
	}
	if len(archived) != 1 || len(e.CalibrationHistoryList()) != 1 {
		t.Fatalf("archived=%+v", archived)
	}
}

func TestCalibration_HistoryFileNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if _, err := e.CalibrationHistoryFile("calib_0_0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestCalibration_HistoryEvictsOldest(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(Options{Clock: clk, Scheduler: &manualScheduler{}, CalibrationHistoryMax: 2})
	for i := 0; i < 3; i++ {
		req := modelRequest()
		req.Mode = models.CalibModeFloor
		req.Epoch = int64(100 + i)
		_ = e.CalibrationStart(req)
		e.CalibrationStop(0)
	}
	list := e.CalibrationHistoryList()
	if len(list) != 2 || list[0].StartEpoch != 102 || list[1].StartEpoch != 101 {
		t.Fatalf("list=%+v", list)
	}
}

func TestSynthSample(t *testing.T) {
	s := SynthSample(0, 0, 120)
	if s.TempC != 25 || s.VoltageV != 310 || s.CurrentA != 7.8 || !s.NtcOk {
		t.Fatalf("sample 0: %+v", s)
	}
	if s.NtcAdc != 1365 {
		t.Fatalf("ntc adc=%d, want 1365", s.NtcAdc)
	}
	late := SynthTempC(30*60*1000, 120)
	if !near(late, 120, 0.03*95) {
		t.Fatalf("long run should settle near target, got %.2f", late)
	}
	if got := SynthTempC(30*60*1000, 400); got > 160 {
		t.Fatalf("synthetic temperature above clamp: %.2f", got)
	}
}

func TestModelSuggest_UsesNewestArchiveWhenLiveRunIsEmpty(t *testing.T) {
	e, _, sched := newTestEngine(t)

	_, n, err := e.ModelSuggest()
	if !errors.Is(err, modelfit.ErrInsufficientData) || n != 0 {
		t.Fatalf("empty recorder: n=%d err=%v", n, err)
	}

	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.Fire(5)
	e.CalibrationStop(0)
	e.CalibrationClear()
	if _, n, _ := e.ModelSuggest(); n != 0 {
		t.Fatalf("cleared recorder should have nothing to fit, got %d samples", n)
	}

	if err := e.CalibrationStart(modelRequest()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	sched.Fire(5)
	e.CalibrationStop(0)
	if _, n, _ := e.ModelSuggest(); n != burstSamples+5 {
		t.Fatalf("live buffer is kept after stop: n=%d", n)
	}
}

func TestModelSave_KeepsOnlyPositiveFiniteFields(t *testing.T) {
	e, _, _ := newTestEngine(t)
	before := e.Controls()

	got := e.ModelSave(models.ModelEstimate{WireTau: 21.5, WireKLoss: math.NaN(), WireC: -3, MaxPowerW: 999})
	if got.WireTauSec != 21.5 {
		t.Fatalf("tau=%v, want 21.5", got.WireTauSec)
	}
	if got.WireKLoss != before.WireKLoss || got.WireThermalC != before.WireThermalC {
		t.Fatalf("invalid fields must be ignored: %+v", got)
	}
	if got.MaxPowerW != before.MaxPowerW {
		t.Fatalf("max power is not part of the saved model: %v", got.MaxPowerW)
	}
	if e.Controls() != got {
		t.Fatalf("controls not stored")
	}
}
