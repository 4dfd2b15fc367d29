package service

import (
	"context"

	"heating_board/internal/models"
	"heating_board/internal/simulation"
)

type MonitoringService struct {
	engine *simulation.Engine
}

func NewMonitoringService(engine *simulation.Engine) *MonitoringService {
	return &MonitoringService{engine: engine}
}

// Snapshot advances the simulation to now and returns the live view.
func (s *MonitoringService) Snapshot(ctx context.Context) models.MonitorSnapshot {
	return s.engine.MonitorSnapshot()
}

// Sessions returns archived sessions, newest first.
func (s *MonitoringService) Sessions(ctx context.Context) []models.SessionRecord {
	return s.engine.SessionHistory()
}
