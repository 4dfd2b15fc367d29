package service

import (
	"context"
	"fmt"

	"heating_board/internal/models"
	"heating_board/internal/simulation"
)

type WireTestService struct {
	engine *simulation.Engine
	events *eventRecorder
}

func NewWireTestService(engine *simulation.Engine, events *eventRecorder) *WireTestService {
	return &WireTestService{engine: engine, events: events}
}

// Start energizes one wire; zero target or wire select 120°C and wire 1.
func (s *WireTestService) Start(ctx context.Context, p WireTestParams) (models.WireTestStatus, error) {
	target, wire := wireTestRequest(p)
	if err := s.engine.WireTestStart(target, wire); err != nil {
		return s.engine.WireTestStatus(), err
	}
	st := s.engine.WireTestStatus()
	s.events.record(ctx, EventWireTestStart,
		fmt.Sprintf("Wire test on wire %d to %.1f°C", wire, target),
		map[string]any{"wire_index": wire, "target_c": target})
	return st, nil
}

// Stop ends any wire test, including one started by a model calibration.
func (s *WireTestService) Stop(ctx context.Context) (models.WireTestStatus, error) {
	before := s.engine.WireTestStatus()
	s.engine.WireTestStop()
	st := s.engine.WireTestStatus()
	if !before.Running {
		return st, nil
	}
	s.events.record(ctx, EventWireTestStop,
		fmt.Sprintf("Wire test on wire %d stopped", before.ActiveWire),
		map[string]any{"wire_index": before.ActiveWire, "purpose": before.Purpose})
	return st, nil
}

func (s *WireTestService) Status(ctx context.Context) models.WireTestStatus {
	return s.engine.WireTestStatus()
}
