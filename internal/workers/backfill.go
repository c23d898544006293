package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/queue"
	"go.uber.org/zap"
)

const (
	defaultBackfillGrace  = 10 * time.Minute
	defaultBackfillWindow = 72 * time.Hour
	defaultBackfillBatch  = 200
)

// PendingReflectionLister finds entries still waiting for a reflection
type PendingReflectionLister interface {
	ListWithoutReflection(ctx context.Context, after, before time.Time, limit uint64) ([]database.PendingReflection, error)
}

// ReflectionBackfill re-enqueues reflection jobs for entries whose first job
// was lost or failed. Entries newer than the grace period are left to their
// original job; entries older than the window are given up on.
type ReflectionBackfill struct {
	jobQueue queue.Publisher
	journal  PendingReflectionLister
	logger   *zap.Logger
	now      func() time.Time
	grace    time.Duration
	window   time.Duration
	batch    uint64
}

// NewReflectionBackfill creates a new backfill scheduler
func NewReflectionBackfill(jobQueue queue.Publisher, journal PendingReflectionLister, logger *zap.Logger) *ReflectionBackfill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReflectionBackfill{
		jobQueue: jobQueue,
		journal:  journal,
		logger:   logger,
		now:      time.Now,
		grace:    defaultBackfillGrace,
		window:   defaultBackfillWindow,
		batch:    defaultBackfillBatch,
	}
}

// ScheduleBackfillJobs enqueues one job per pending entry and returns how many were enqueued
func (b *ReflectionBackfill) ScheduleBackfillJobs(ctx context.Context) (int, error) {
	now := b.now()
	pending, err := b.journal.ListWithoutReflection(ctx, now.Add(-b.window), now.Add(-b.grace), b.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending reflections: %w", err)
	}

	enqueued := 0
	for _, p := range pending {
		deviceID, ok := database.DeviceIDFromKey(p.ProfileKey)
		if !ok {
			b.logger.Warn("backfill_unknown_key", zap.String("entry_id", p.EntryID))
			continue
		}
		job := queue.NewJournalReflectionJob(deviceID, p.EntryID)
		// Expire with the window so a stuck entry is not retried forever
		notAfter := p.CreatedAt.Add(b.window)
		job.NotAfter = &notAfter

		if err := b.jobQueue.Enqueue(ctx, job); err != nil {
			b.logger.Warn("backfill_enqueue_failed",
				zap.String("entry_id", p.EntryID),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	b.logger.Info("backfill_jobs_scheduled",
		zap.Int("pending", len(pending)),
		zap.Int("enqueued", enqueued),
	)
	return enqueued, nil
}

// Start runs ScheduleBackfillJobs every interval until ctx is cancelled
func (b *ReflectionBackfill) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.ScheduleBackfillJobs(ctx); err != nil {
				b.logger.Error("backfill_failed", zap.Error(err))
			}
		}
	}
}
