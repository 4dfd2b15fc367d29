package service

import (
	"context"
	"fmt"
	"strings"

	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var errInvalidTimeRange = fmt.Errorf("invalid time range: from must be <= to: %w", simulation.ErrInvalidRange)

// eventTypes is the closed set of types written by eventRecorder.
var eventTypes = map[string]struct{}{
	EventStateChange:         {},
	EventSessionEnd:          {},
	EventOutputChange:        {},
	EventOutputAccess:        {},
	EventRelayChange:         {},
	EventCalibrationStart:    {},
	EventCalibrationStop:     {},
	EventCalibrationAutoStop: {},
	EventCalibrationClear:    {},
	EventWireTestStart:       {},
	EventWireTestStop:        {},
	EventModelSave:           {},
	EventControlsUpdate:      {},
}

// KnownEventType reports whether typ (already normalized) is written by this service.
func KnownEventType(typ string) bool {
	_, ok := eventTypes[typ]
	return ok
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeFilter converts bounds to UTC (zero stays zero), uppercases the type and
// rejects inverted ranges and unknown types.
func normalizeFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{Type: normalizeEventType(f.Type)}
	if !f.From.IsZero() {
		out.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		out.To = f.To.UTC()
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	if out.Type != "" && !KnownEventType(out.Type) {
		return LogFilter{}, fmt.Errorf("event type %q: %w", out.Type, simulation.ErrInvalidRange)
	}
	return out, nil
}

// List returns events in [From, To] of the given type; zero bounds and an empty type match everything.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error) {
	nf, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, nf.From, nf.To, nf.Type)
}
