package service

import (
	"context"
	"time"

	"heating_board/internal/logger"
	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"
)

// Device drives the board state machine, the output bank and the relay.
type Device interface {
	State(ctx context.Context) models.DeviceState
	SetState(ctx context.Context, next string) (models.DeviceState, error)
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Idle(ctx context.Context) error
	SetOutput(ctx context.Context, p OutputParams) error
	SetOutputAccess(ctx context.Context, p OutputParams) error
	SetRelay(ctx context.Context, on bool) error
	Outputs(ctx context.Context) []models.OutputChannel
}

// Monitoring exposes the live snapshot and the session history.
type Monitoring interface {
	Snapshot(ctx context.Context) models.MonitorSnapshot
	Sessions(ctx context.Context) []models.SessionRecord
}

// Calibration runs the sample recorder and serves its archive.
type Calibration interface {
	Start(ctx context.Context, p CalibrationParams) (models.CalibrationMeta, error)
	Stop(ctx context.Context, epoch int64) (models.CalibrationMeta, error)
	Clear(ctx context.Context) error
	Status(ctx context.Context) models.CalibrationMeta
	Page(ctx context.Context, offset, count int) (models.CalibrationPage, error)
	HistoryList(ctx context.Context) []models.CalibrationHistoryItem
	HistoryFile(ctx context.Context, name string) (models.CalibrationHistoryEntry, error)
}

// WireTest energizes a single wire toward a target.
type WireTest interface {
	Start(ctx context.Context, p WireTestParams) (models.WireTestStatus, error)
	Stop(ctx context.Context) (models.WireTestStatus, error)
	Status(ctx context.Context) models.WireTestStatus
}

// Model fits and stores the wire thermal model.
type Model interface {
	Suggest(ctx context.Context) (models.ModelSuggestion, error)
	Save(ctx context.Context, est models.ModelEstimate) (models.Controls, error)
}

// Settings reads and updates the persisted board controls.
type Settings interface {
	Controls(ctx context.Context) models.Controls
	UpdateControls(ctx context.Context, p ControlsParams) (models.Controls, error)
	// Restore loads stored controls into the engine, or stores the engine's controls when none exist.
	Restore(ctx context.Context) (models.Controls, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Simulator runs the background loop that samples the board for metrics and telemetry.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Metrics receives snapshots and event counts. Implemented by metrics.PromMetrics.
type Metrics interface {
	ObserveSnapshot(s models.MonitorSnapshot)
	CountEvent(typ string)
	ObserveFit(seconds float64)
}

// Publisher pushes snapshots off-box. Implemented by telemetry.MQTTPublisher.
type Publisher interface {
	Publish(ctx context.Context, s models.MonitorSnapshot) error
}

type Service struct {
	Device
	Monitoring
	Calibration
	WireTest
	Model
	Settings
	EventLog
	Simulator
}

// Deps are the collaborators of the services. Metrics, Publisher and Log may be nil.
type Deps struct {
	Engine    *simulation.Engine
	Repos     *repository.Repository
	Metrics   Metrics
	Publisher Publisher
	Log       *logger.Logger
}

// NewService wires the engine and the repository layer into concrete services.
func NewService(d Deps) *Service {
	if d.Metrics == nil {
		d.Metrics = nopMetrics{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	events := newEventRecorder(d.Repos.EventRepo, d.Metrics, d.Log)
	return &Service{
		Device:      NewDeviceService(d.Engine, events),
		Monitoring:  NewMonitoringService(d.Engine),
		Calibration: NewCalibrationService(d.Engine, events),
		WireTest:    NewWireTestService(d.Engine, events),
		Model:       NewModelService(d.Engine, d.Repos.ControlsRepo, events, d.Metrics),
		Settings:    NewSettingsService(d.Engine, d.Repos.ControlsRepo, events),
		EventLog:    NewEventLogService(d.Repos.EventRepo),
		Simulator:   NewSimulatorService(d.Engine, d.Metrics, d.Publisher, d.Log),
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveSnapshot(models.MonitorSnapshot) {}
func (nopMetrics) CountEvent(string)                      {}
func (nopMetrics) ObserveFit(float64)                     {}
