package service

import (
	"context"
	"fmt"

	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"
)

type SettingsService struct {
	engine   *simulation.Engine
	controls repository.ControlsRepo
	events   *eventRecorder
}

func NewSettingsService(engine *simulation.Engine, controls repository.ControlsRepo, events *eventRecorder) *SettingsService {
	return &SettingsService{engine: engine, controls: controls, events: events}
}

func (s *SettingsService) Controls(ctx context.Context) models.Controls {
	return s.engine.Controls()
}

// UpdateControls merges p into the current controls, applies and persists the result.
func (s *SettingsService) UpdateControls(ctx context.Context, p ControlsParams) (models.Controls, error) {
	next, err := applyControls(s.engine.Controls(), p)
	if err != nil {
		return s.engine.Controls(), err
	}
	if err := s.controls.Save(ctx, next); err != nil {
		return s.engine.Controls(), fmt.Errorf("save controls: %w", err)
	}
	s.engine.SetControls(next)
	next = s.engine.Controls()
	s.events.record(ctx, EventControlsUpdate, "Board controls updated", map[string]any{
		"floor_material":     next.FloorMaterial,
		"floor_thickness_mm": next.FloorThicknessMm,
		"floor_max_c":        next.FloorMaxC,
		"nichrome_final_c":   next.NichromeFinalC,
	})
	return next, nil
}

func (s *SettingsService) Restore(ctx context.Context) (models.Controls, error) {
	stored, found, err := s.controls.Load(ctx)
	if err != nil {
		return s.engine.Controls(), fmt.Errorf("load controls: %w", err)
	}
	if !found {
		current := s.engine.Controls()
		if err := s.controls.Save(ctx, current); err != nil {
			return current, fmt.Errorf("seed controls: %w", err)
		}
		return current, nil
	}
	s.engine.SetControls(stored)
	return s.engine.Controls(), nil
}
