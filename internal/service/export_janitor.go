package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiringStorage interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportJanitor deletes exports whose download links can no longer be valid.
type ExportJanitor struct {
	storage   expiringStorage
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
}

// NewExportJanitor constructs ExportJanitor.
func NewExportJanitor(storage expiringStorage, retention, interval time.Duration, logger *zap.Logger) *ExportJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportJanitor{storage: storage, retention: retention, interval: interval, logger: logger}
}

// Sweep removes expired exports once and returns how many were deleted.
func (j *ExportJanitor) Sweep() int {
	removed, err := j.storage.CleanupOlderThan(j.retention)
	if err != nil {
		j.logger.Warn("export cleanup failed", zap.Error(err))
	}
	if len(removed) > 0 {
		j.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return len(removed)
}

// Run sweeps on every tick until ctx is cancelled.
func (j *ExportJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}
