package service

import (
	"context"
	"fmt"

	"heating_board/internal/models"
	"heating_board/internal/simulation"
)

type DeviceService struct {
	engine *simulation.Engine
	events *eventRecorder
}

func NewDeviceService(engine *simulation.Engine, events *eventRecorder) *DeviceService {
	return &DeviceService{engine: engine, events: events}
}

func (s *DeviceService) State(ctx context.Context) models.DeviceState {
	return s.engine.DeviceState()
}

// SetState applies a named transition ("Idle", "running", ...). Setting the current state is a no-op.
func (s *DeviceService) SetState(ctx context.Context, next string) (models.DeviceState, error) {
	st, ok := models.ParseDeviceState(next)
	if !ok {
		return s.engine.DeviceState(), fmt.Errorf("device state %q: %w", next, simulation.ErrInvalidRange)
	}
	tr, err := s.engine.SetDeviceState(st)
	if err != nil {
		return s.engine.DeviceState(), err
	}
	s.events.transition(ctx, tr)
	return tr.To, nil
}

// Start enters Running with at least one allowed output on and the relay closed.
func (s *DeviceService) Start(ctx context.Context) error {
	s.events.transition(ctx, s.engine.Start())
	return nil
}

// Shutdown opens the relay and releases every output.
func (s *DeviceService) Shutdown(ctx context.Context) error {
	_, err := s.SetState(ctx, string(models.StateShutdown))
	return err
}

// Idle aborts a run and returns to the ready state.
func (s *DeviceService) Idle(ctx context.Context) error {
	_, err := s.SetState(ctx, string(models.StateIdle))
	return err
}

func (s *DeviceService) SetOutput(ctx context.Context, p OutputParams) error {
	if err := s.engine.SetOutput(p.Index, p.On); err != nil {
		return err
	}
	s.events.record(ctx, EventOutputChange,
		fmt.Sprintf("Output %d %s", p.Index, onOff(p.On)),
		map[string]any{"index": p.Index, "on": p.On})
	return nil
}

func (s *DeviceService) SetOutputAccess(ctx context.Context, p OutputParams) error {
	if err := s.engine.SetOutputAccess(p.Index, p.On); err != nil {
		return err
	}
	s.events.record(ctx, EventOutputAccess,
		fmt.Sprintf("Output %d access %s", p.Index, allowedText(p.On)),
		map[string]any{"index": p.Index, "allowed": p.On})
	return nil
}

func (s *DeviceService) SetRelay(ctx context.Context, on bool) error {
	s.engine.SetRelay(on)
	s.events.record(ctx, EventRelayChange, "Relay "+onOff(on), map[string]any{"on": on})
	return nil
}

func (s *DeviceService) Outputs(ctx context.Context) []models.OutputChannel {
	return s.engine.Outputs()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func allowedText(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "blocked"
}
