package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"heating_board/internal/models"
	"heating_board/internal/service"
	"heating_board/internal/simulation"
)

func TestCalibrationHandlers_StartStop(t *testing.T) {
	cal := &mockCalibration{meta: models.CalibrationMeta{Mode: models.CalibModeModel, IntervalMs: 500}}
	r := newTestRouter(&service.Service{Calibration: cal})

	body := `{"mode":"ntc","interval_ms":250,"max_samples":300,"target_c":90,"wire_index":4,"epoch":1735689600}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/calibration/start", body)
	if w.Code != http.StatusOK {
		t.Fatalf("start status=%d body=%s", w.Code, w.Body.String())
	}
	want := service.CalibrationParams{Mode: "ntc", IntervalMs: 250, MaxSamples: 300, TargetC: 90, WireIndex: 4, Epoch: 1735689600}
	if cal.lastStart != want {
		t.Fatalf("params=%+v want %+v", cal.lastStart, want)
	}
	var out struct {
		Status string                 `json:"status"`
		Meta   models.CalibrationMeta `json:"meta"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Status != statusStarted || !out.Meta.Running {
		t.Fatalf("start response=%+v", out)
	}

	// stop without a body uses epoch 0 (server clock)
	w = doJSON(t, r, http.MethodPost, "/api/v1/calibration/stop", "")
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if w.Code != http.StatusOK || out.Status != statusStopped || out.Meta.Running || cal.lastEpoch != 0 {
		t.Fatalf("stop status=%d body=%s epoch=%d", w.Code, w.Body.String(), cal.lastEpoch)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/calibration/stop", `{"epoch":1735689720}`)
	if w.Code != http.StatusOK || cal.lastEpoch != 1735689720 {
		t.Fatalf("stop with epoch status=%d epoch=%d", w.Code, cal.lastEpoch)
	}
}

func TestCalibrationHandlers_StartDefaultsWithEmptyBody(t *testing.T) {
	cal := &mockCalibration{}
	r := newTestRouter(&service.Service{Calibration: cal})

	w := doJSON(t, r, http.MethodPost, "/api/v1/calibration/start", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cal.lastStart != (service.CalibrationParams{}) {
		t.Fatalf("expected zero params, got %+v", cal.lastStart)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/v1/calibration/start", `{"interval_ms":"fast"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body should be 400, got %d", w.Code)
	}
}

func TestCalibrationHandlers_StartErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"running", fmt.Errorf("calibration: %w", simulation.ErrAlreadyRunning), http.StatusConflict},
		{"range", fmt.Errorf("interval_ms=-1: %w", simulation.ErrInvalidRange), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Calibration: &mockCalibration{startErr: tc.err}})
			w := doJSON(t, r, http.MethodPost, "/api/v1/calibration/start", `{"mode":"model"}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
		})
	}
}

func TestCalibrationHandlers_PageAndStatus(t *testing.T) {
	cal := &mockCalibration{
		meta: models.CalibrationMeta{Running: true, Count: 3},
		page: models.CalibrationPage{Samples: []models.CalibrationSample{{TMs: 0}, {TMs: 500}}},
	}
	r := newTestRouter(&service.Service{Calibration: cal})

	w := doJSON(t, r, http.MethodGet, "/api/v1/calibration/data", "")
	if w.Code != http.StatusOK || cal.lastPage != [2]int{0, service.DefaultPageCount} {
		t.Fatalf("default page status=%d page=%v", w.Code, cal.lastPage)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/calibration/data?offset=1&count=2", "")
	var page models.CalibrationPage
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if w.Code != http.StatusOK || cal.lastPage != [2]int{1, 2} || len(page.Samples) != 2 {
		t.Fatalf("page status=%d page=%v body=%s", w.Code, cal.lastPage, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodGet, "/api/v1/calibration/data?offset=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad offset should be 400, got %d", w.Code)
	}
	cal.pageErr = fmt.Errorf("page offset=-1: %w", simulation.ErrInvalidRange)
	if w := doJSON(t, r, http.MethodGet, "/api/v1/calibration/data?offset=-1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("negative offset should be 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/calibration/status", "")
	var meta models.CalibrationMeta
	_ = json.Unmarshal(w.Body.Bytes(), &meta)
	if w.Code != http.StatusOK || !meta.Running || meta.Count != 3 {
		t.Fatalf("status body=%s", w.Body.String())
	}
}

func TestCalibrationHandlers_HistoryAndClear(t *testing.T) {
	entry := models.CalibrationHistoryEntry{Name: "calib_100_0", StartEpoch: 100}
	cal := &mockCalibration{
		items:    []models.CalibrationHistoryItem{{Name: entry.Name, StartEpoch: 100}},
		entries:  map[string]models.CalibrationHistoryEntry{entry.Name: entry},
		notFound: fmt.Errorf("calibration history %q: %w", "missing", simulation.ErrNotFound),
	}
	r := newTestRouter(&service.Service{Calibration: cal})

	w := doJSON(t, r, http.MethodGet, "/api/v1/calibration/history", "")
	var list struct {
		Count int                             `json:"count"`
		Items []models.CalibrationHistoryItem `json:"items"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || list.Count != 1 || list.Items[0].Name != entry.Name {
		t.Fatalf("history body=%s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/calibration/history/calib_100_0", "")
	var got models.CalibrationHistoryEntry
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || got.Name != entry.Name {
		t.Fatalf("file status=%d body=%s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodGet, "/api/v1/calibration/history/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown name should be 404, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/calibration/clear", "")
	if w.Code != http.StatusOK || cal.cleared != 1 {
		t.Fatalf("clear status=%d cleared=%d", w.Code, cal.cleared)
	}
}
