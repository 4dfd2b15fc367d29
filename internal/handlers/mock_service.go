package handlers

import (
	"context"
	"time"

	"heating_board/internal/models"
	"heating_board/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDevice struct {
	state     models.DeviceState
	outputs   []models.OutputChannel
	err       error
	setState  string
	lastOut   service.OutputParams
	lastRelay bool
	calls     map[string]int
}

func (m *mockDevice) hit(name string) {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

func (m *mockDevice) State(ctx context.Context) models.DeviceState { return m.state }
func (m *mockDevice) SetState(ctx context.Context, next string) (models.DeviceState, error) {
	m.hit("SetState")
	m.setState = next
	if m.err != nil {
		return m.state, m.err
	}
	m.state = models.DeviceState(next)
	return m.state, nil
}
func (m *mockDevice) Start(ctx context.Context) error {
	m.hit("Start")
	if m.err == nil {
		m.state = models.StateRunning
	}
	return m.err
}
func (m *mockDevice) Shutdown(ctx context.Context) error {
	m.hit("Shutdown")
	if m.err == nil {
		m.state = models.StateShutdown
	}
	return m.err
}
func (m *mockDevice) Idle(ctx context.Context) error {
	m.hit("Idle")
	if m.err == nil {
		m.state = models.StateIdle
	}
	return m.err
}
func (m *mockDevice) SetOutput(ctx context.Context, p service.OutputParams) error {
	m.hit("SetOutput")
	m.lastOut = p
	return m.err
}
func (m *mockDevice) SetOutputAccess(ctx context.Context, p service.OutputParams) error {
	m.hit("SetOutputAccess")
	m.lastOut = p
	return m.err
}
func (m *mockDevice) SetRelay(ctx context.Context, on bool) error {
	m.hit("SetRelay")
	m.lastRelay = on
	return m.err
}
func (m *mockDevice) Outputs(ctx context.Context) []models.OutputChannel { return m.outputs }

type mockMonitoring struct {
	snap     models.MonitorSnapshot
	sessions []models.SessionRecord
}

func (m *mockMonitoring) Snapshot(ctx context.Context) models.MonitorSnapshot { return m.snap }
func (m *mockMonitoring) Sessions(ctx context.Context) []models.SessionRecord {
	return m.sessions
}

type mockCalibration struct {
	meta      models.CalibrationMeta
	page      models.CalibrationPage
	items     []models.CalibrationHistoryItem
	entries   map[string]models.CalibrationHistoryEntry
	startErr  error
	pageErr   error
	notFound  error
	lastStart service.CalibrationParams
	lastEpoch int64
	lastPage  [2]int
	cleared   int
}

func (m *mockCalibration) Start(ctx context.Context, p service.CalibrationParams) (models.CalibrationMeta, error) {
	m.lastStart = p
	if m.startErr != nil {
		return m.meta, m.startErr
	}
	m.meta.Running = true
	return m.meta, nil
}
func (m *mockCalibration) Stop(ctx context.Context, epoch int64) (models.CalibrationMeta, error) {
	m.lastEpoch = epoch
	m.meta.Running = false
	return m.meta, nil
}
func (m *mockCalibration) Clear(ctx context.Context) error {
	m.cleared++
	return nil
}
func (m *mockCalibration) Status(ctx context.Context) models.CalibrationMeta { return m.meta }
func (m *mockCalibration) Page(ctx context.Context, offset, count int) (models.CalibrationPage, error) {
	m.lastPage = [2]int{offset, count}
	return m.page, m.pageErr
}
func (m *mockCalibration) HistoryList(ctx context.Context) []models.CalibrationHistoryItem {
	return m.items
}
func (m *mockCalibration) HistoryFile(ctx context.Context, name string) (models.CalibrationHistoryEntry, error) {
	e, ok := m.entries[name]
	if !ok {
		return e, m.notFound
	}
	return e, nil
}

type mockWireTest struct {
	status   models.WireTestStatus
	startErr error
	last     service.WireTestParams
	stops    int
}

func (m *mockWireTest) Start(ctx context.Context, p service.WireTestParams) (models.WireTestStatus, error) {
	m.last = p
	if m.startErr != nil {
		return m.status, m.startErr
	}
	m.status.Running = true
	return m.status, nil
}
func (m *mockWireTest) Stop(ctx context.Context) (models.WireTestStatus, error) {
	m.stops++
	m.status = models.WireTestStatus{Purpose: models.PurposeNone}
	return m.status, nil
}
func (m *mockWireTest) Status(ctx context.Context) models.WireTestStatus { return m.status }

type mockModel struct {
	suggestion models.ModelSuggestion
	err        error
	saved      models.ModelEstimate
	controls   models.Controls
}

func (m *mockModel) Suggest(ctx context.Context) (models.ModelSuggestion, error) {
	return m.suggestion, m.err
}
func (m *mockModel) Save(ctx context.Context, est models.ModelEstimate) (models.Controls, error) {
	m.saved = est
	return m.controls, m.err
}

type mockSettings struct {
	controls models.Controls
	err      error
	last     service.ControlsParams
}

func (m *mockSettings) Controls(ctx context.Context) models.Controls { return m.controls }
func (m *mockSettings) UpdateControls(ctx context.Context, p service.ControlsParams) (models.Controls, error) {
	m.last = p
	return m.controls, m.err
}
func (m *mockSettings) Restore(ctx context.Context) (models.Controls, error) {
	return m.controls, nil
}

type mockEventLog struct {
	resp     []models.DeviceEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
