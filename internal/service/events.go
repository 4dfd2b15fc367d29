package service

import (
	"context"
	"fmt"
	"time"

	"heating_board/internal/logger"
	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"

	"github.com/google/uuid"
)

// Device event types.
const (
	EventStateChange         = "STATE_CHANGE"
	EventSessionEnd          = "SESSION_END"
	EventOutputChange        = "OUTPUT_CHANGE"
	EventOutputAccess        = "OUTPUT_ACCESS"
	EventRelayChange         = "RELAY_CHANGE"
	EventCalibrationStart    = "CALIBRATION_START"
	EventCalibrationStop     = "CALIBRATION_STOP"
	EventCalibrationAutoStop = "CALIBRATION_AUTO_STOP"
	EventCalibrationClear    = "CALIBRATION_CLEAR"
	EventWireTestStart       = "WIRE_TEST_START"
	EventWireTestStop        = "WIRE_TEST_STOP"
	EventModelSave           = "MODEL_SAVE"
	EventControlsUpdate      = "CONTROLS_UPDATE"
)

// eventRecorder appends device events and counts them.
type eventRecorder struct {
	repo    repository.EventRepo
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

func newEventRecorder(repo repository.EventRepo, m Metrics, log *logger.Logger) *eventRecorder {
	if m == nil {
		m = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &eventRecorder{repo: repo, metrics: m, log: log, now: time.Now}
}

// record appends an event for an action the engine has already applied.
// A failed append is logged and does not fail the action.
func (r *eventRecorder) record(ctx context.Context, typ, description string, meta map[string]any) {
	if err := r.append(ctx, typ, description, meta); err != nil {
		r.log.Errorw("event_append_failed", "err", err, "type", typ)
	}
}

func (r *eventRecorder) append(ctx context.Context, typ, description string, meta map[string]any) error {
	ev := models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  r.now().UTC(),
		Type:        typ,
		Description: description,
	}
	if len(meta) > 0 {
		ev.Metadata = meta
	}
	if err := r.repo.Append(ctx, ev); err != nil {
		return fmt.Errorf("append %s event: %w", typ, err)
	}
	r.metrics.CountEvent(typ)
	return nil
}

// transition logs a state change and, when a session was closed, its record.
func (r *eventRecorder) transition(ctx context.Context, tr simulation.Transition) {
	if !tr.Changed {
		return
	}
	r.record(ctx, EventStateChange,
		fmt.Sprintf("%s -> %s", tr.From, tr.To),
		map[string]any{"from": string(tr.From), "to": string(tr.To)})
	if s := tr.Session; s != nil {
		r.record(ctx, EventSessionEnd, "Session finished", map[string]any{
			"start_ms":       s.StartMs,
			"duration_s":     s.DurationS,
			"energy_wh":      s.EnergyWh,
			"peak_power_w":   s.PeakPowerW,
			"peak_current_a": s.PeakCurrentA,
		})
	}
}
