package service

import (
	"context"
	"time"

	"heating_board/internal/logger"
	"heating_board/internal/simulation"
)

// SimulatorService samples the engine on a ticker and fans the snapshot out to metrics and telemetry.
// Reading the snapshot is what advances the pull-driven simulation, so the board keeps evolving
// even when no client is connected.
type SimulatorService struct {
	engine    *simulation.Engine
	metrics   Metrics
	publisher Publisher
	log       *logger.Logger

	publishFailing bool
}

func NewSimulatorService(engine *simulation.Engine, m Metrics, p Publisher, log *logger.Logger) *SimulatorService {
	if m == nil {
		m = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatorService{engine: engine, metrics: m, publisher: p, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.step(ctx, tick)
		}
	}
}

func (s *SimulatorService) step(ctx context.Context, budget time.Duration) {
	snap := s.engine.MonitorSnapshot()
	s.metrics.ObserveSnapshot(snap)
	if s.publisher == nil {
		return
	}

	pctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	err := s.publisher.Publish(pctx, snap)
	switch {
	case err != nil && !s.publishFailing:
		s.publishFailing = true
		s.log.Warnw("telemetry_publish_failed", "err", err)
	case err == nil && s.publishFailing:
		s.publishFailing = false
		s.log.Infow("telemetry_publish_recovered")
	}
}
