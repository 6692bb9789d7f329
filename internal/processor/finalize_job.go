package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"courtstats/internal/logging"
	"courtstats/internal/metrics"
	"courtstats/internal/service"
	"courtstats/internal/stats"
)

// JobPayload represents one finalization job from the redis queue, enqueued
// by game management when a game transitions to finished.
type JobPayload struct {
	GameID string `json:"game_id"`
}

// FinalizeProcessor handles snapshot finalization jobs.
type FinalizeProcessor struct {
	ctx context.Context
	svc *service.StatsService
}

// NewFinalizeProcessor creates a processor bound to the worker's lifetime
// context.
func NewFinalizeProcessor(ctx context.Context, svc *service.StatsService) *FinalizeProcessor {
	return &FinalizeProcessor{ctx: ctx, svc: svc}
}

// Handle processes a single finalization job from the queue. A missing game
// is skipped, not retried; any other failure is returned so the queue can
// retry and eventually dead-letter the job. The triggering status transition
// has already committed by the time a job arrives, so nothing here can block
// or roll it back.
func (p *FinalizeProcessor) Handle(payload []byte) error {
	logger := logging.Logger()
	startTime := time.Now()

	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("unmarshal job payload: %w", err)
	}

	gameID, err := uuid.Parse(job.GameID)
	if err != nil {
		return fmt.Errorf("parse game_id: %w", err)
	}

	logger.Infof("finalizing stats for game %s", gameID)

	if err := p.svc.FinalizeGameStats(p.ctx, gameID); err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			logger.Warnf("game %s not found, skipping", gameID)
			metrics.ObserveFinalize(metrics.ResultSkipped, time.Since(startTime))
			return nil
		}
		metrics.ObserveFinalize(metrics.ResultError, time.Since(startTime))
		return fmt.Errorf("finalize game %s: %w", gameID, err)
	}

	elapsed := time.Since(startTime)
	metrics.ObserveFinalize(metrics.ResultOK, elapsed)
	logger.Infof("finalization completed for game %s in %v", gameID, elapsed)

	return nil
}
