package service

import (
	"context"
	"errors"
	"time"

	"heating_board/internal/modelfit"
	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"
)

type ModelService struct {
	engine   *simulation.Engine
	controls repository.ControlsRepo
	events   *eventRecorder
	metrics  Metrics
}

func NewModelService(engine *simulation.Engine, controls repository.ControlsRepo, events *eventRecorder, m Metrics) *ModelService {
	if m == nil {
		m = nopMetrics{}
	}
	return &ModelService{engine: engine, controls: controls, events: events, metrics: m}
}

// Suggest fits the recorded run. An unusable run is not an error: the controls fallback is
// returned with Fitted=false and the reason.
func (s *ModelService) Suggest(ctx context.Context) (models.ModelSuggestion, error) {
	started := time.Now()
	est, n, err := s.engine.ModelSuggest()
	s.metrics.ObserveFit(time.Since(started).Seconds())

	out := models.ModelSuggestion{ModelEstimate: est, Fitted: err == nil, Samples: n}
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, modelfit.ErrInsufficientData):
		out.Reason = err.Error()
		return out, nil
	default:
		return out, err
	}
}

// Save stores the finite, positive tau/k/C of est into the controls and persists them.
func (s *ModelService) Save(ctx context.Context, est models.ModelEstimate) (models.Controls, error) {
	c := s.engine.ModelSave(est)
	if err := s.controls.Save(ctx, c); err != nil {
		return c, err
	}
	s.events.record(ctx, EventModelSave, "Thermal model saved", map[string]any{
		"wire_tau_s":  c.WireTauSec,
		"wire_k_loss": c.WireKLoss,
		"wire_c":      c.WireThermalC,
	})
	return c, nil
}
