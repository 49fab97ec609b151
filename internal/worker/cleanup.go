package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/pkg/logger"
)

// CleanupWorker prunes aged audit logs and processed outbox events on a
// fixed interval.
type CleanupWorker struct {
	auditRepo       repository.AuditRepository
	outboxRepo      repository.OutboxRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewCleanupWorker(auditRepo repository.AuditRepository, outboxRepo repository.OutboxRepository,
	retentionDays int, cleanupInterval time.Duration, logger *logger.Logger) *CleanupWorker {
	return &CleanupWorker{
		auditRepo:       auditRepo,
		outboxRepo:      outboxRepo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error(err, "cleanup run failed")
			}
		}
	}
}

func (w *CleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	auditRows, err := w.auditRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune audit logs: %w", err)
	}

	outboxRows, err := w.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune outbox events: %w", err)
	}

	w.logger.Info("cleanup run finished",
		"audit_rows", auditRows,
		"outbox_rows", outboxRows,
		"cutoff", cutoff.Format(time.RFC3339))
	return nil
}
