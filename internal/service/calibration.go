package service

import (
	"context"
	"fmt"
	"time"

	"heating_board/internal/logger"
	"heating_board/internal/models"
	"heating_board/internal/repository"
	"heating_board/internal/simulation"
)

const hookTimeout = 5 * time.Second

type CalibrationService struct {
	engine *simulation.Engine
	events *eventRecorder
}

func NewCalibrationService(engine *simulation.Engine, events *eventRecorder) *CalibrationService {
	return &CalibrationService{engine: engine, events: events}
}

// Start normalizes p and begins a recorder run.
func (s *CalibrationService) Start(ctx context.Context, p CalibrationParams) (models.CalibrationMeta, error) {
	req, err := calibrationRequest(p)
	if err != nil {
		return s.engine.CalibrationStatus(), err
	}
	if err := s.engine.CalibrationStart(req); err != nil {
		return s.engine.CalibrationStatus(), err
	}
	meta := s.engine.CalibrationStatus()
	s.events.record(ctx, EventCalibrationStart,
		fmt.Sprintf("Calibration started (%s)", meta.Mode),
		map[string]any{
			"mode":        meta.Mode,
			"interval_ms": meta.IntervalMs,
			"max_samples": meta.Capacity,
			"target_c":    meta.TargetC,
			"wire_index":  meta.WireIndex,
			"start_epoch": meta.StartEpoch,
		})
	return meta, nil
}

// Stop archives the live run. Stopping an idle recorder changes nothing and logs nothing.
func (s *CalibrationService) Stop(ctx context.Context, epoch int64) (models.CalibrationMeta, error) {
	item, archived := s.engine.CalibrationStop(epoch)
	meta := s.engine.CalibrationStatus()
	if !archived {
		return meta, nil
	}
	s.events.record(ctx, EventCalibrationStop,
		"Calibration stopped and archived as "+item.Name,
		map[string]any{"name": item.Name, "start_epoch": item.StartEpoch, "count": meta.Count})
	return meta, nil
}

// Clear stops any run and wipes the live buffer and the whole archive.
func (s *CalibrationService) Clear(ctx context.Context) error {
	s.engine.CalibrationClear()
	s.events.record(ctx, EventCalibrationClear, "Calibration data and history cleared", nil)
	return nil
}

func (s *CalibrationService) Status(ctx context.Context) models.CalibrationMeta {
	return s.engine.CalibrationStatus()
}

// Page returns samples[offset : offset+count]; count 0 selects DefaultPageCount.
func (s *CalibrationService) Page(ctx context.Context, offset, count int) (models.CalibrationPage, error) {
	if count == 0 {
		count = DefaultPageCount
	}
	return s.engine.CalibrationPage(offset, count)
}

func (s *CalibrationService) HistoryList(ctx context.Context) []models.CalibrationHistoryItem {
	return s.engine.CalibrationHistoryList()
}

func (s *CalibrationService) HistoryFile(ctx context.Context, name string) (models.CalibrationHistoryEntry, error) {
	return s.engine.CalibrationHistoryFile(name)
}

// CalibrationArchivedHook returns the engine callback for runs archived because their buffer filled.
// It runs on the scheduler goroutine, so it logs failures instead of returning them.
func CalibrationArchivedHook(repo repository.EventRepo, m Metrics, log *logger.Logger) func(models.CalibrationHistoryItem) {
	if log == nil {
		log = logger.Nop()
	}
	events := newEventRecorder(repo, m, log)
	return func(item models.CalibrationHistoryItem) {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		err := events.append(ctx, EventCalibrationAutoStop,
			"Calibration buffer full; archived as "+item.Name,
			map[string]any{"name": item.Name, "start_epoch": item.StartEpoch})
		if err != nil {
			log.Errorw("calibration_auto_stop_event_failed", "err", err, "name", item.Name)
			return
		}
		log.Infow("calibration_auto_stopped", "name", item.Name)
	}
}
