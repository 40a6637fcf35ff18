package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/jobs"
)

const examStatsJobType = "exam_stats_refresh"

type examStatsRefresher interface {
	RefreshStats(ctx context.Context, tenantID, examID string) (*models.ExamStats, error)
}

type examStatsPayload struct {
	TenantID string
	ExamID   string
}

// StatsWorker refreshes persisted exam statistics in the background.
type StatsWorker struct {
	queue     *jobs.Queue
	refresher examStatsRefresher
	logger    *zap.Logger
}

// NewStatsWorker constructs a worker around its own job queue.
func NewStatsWorker(refresher examStatsRefresher, cfg jobs.QueueConfig) *StatsWorker {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	w := &StatsWorker{refresher: refresher, logger: cfg.Logger}
	w.queue = jobs.NewQueue("exam-stats", w.handle, cfg)
	return w
}

// Start launches the queue workers.
func (w *StatsWorker) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Stop drains the workers.
func (w *StatsWorker) Stop() {
	w.queue.Stop()
}

// ScheduleRefresh queues a refresh; refreshes already pending for the exam absorb it.
func (w *StatsWorker) ScheduleRefresh(tenantID, examID string) {
	if w == nil || tenantID == "" || examID == "" {
		return
	}
	queued, err := w.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    examStatsJobType,
		Key:     tenantID + "|" + examID,
		Payload: examStatsPayload{TenantID: tenantID, ExamID: examID},
	})
	if err != nil {
		w.logger.Warn("exam stats refresh not queued", zap.String(logTenant, tenantID), zap.String("exam_id", examID), zap.Error(err))
		return
	}
	if !queued {
		w.logger.Debug("exam stats refresh already pending", zap.String(logTenant, tenantID), zap.String("exam_id", examID))
	}
}

func (w *StatsWorker) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(examStatsPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	stats, err := w.refresher.RefreshStats(ctx, payload.TenantID, payload.ExamID)
	if err != nil {
		return err
	}
	w.logger.Debug("exam stats refreshed",
		zap.String(logTenant, payload.TenantID),
		zap.String("exam_id", payload.ExamID),
		zap.Int("registrations", stats.TotalRegistrations),
	)
	return nil
}
