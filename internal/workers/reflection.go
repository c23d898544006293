package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/models"
	"github.com/benvon/devotional/internal/queue"
	"github.com/benvon/devotional/internal/services/ai"
	"go.uber.org/zap"
)

// maxNotBeforeWait bounds how long a consumer holds a job that arrived early
const maxNotBeforeWait = 30 * time.Second

// JournalStore is the part of the journal repository the worker needs
type JournalStore interface {
	GetByID(ctx context.Context, key, id string) (*models.JournalEntry, error)
	SetReflection(ctx context.Context, key, id, reflection string) error
}

// Reflector generates journal reflections and reports why a call failed
type Reflector interface {
	TryJournalReflection(ctx context.Context, entry string) (string, error)
}

// ReflectionWorker processes journal reflection jobs
type ReflectionWorker struct {
	reflector Reflector
	journal   JournalStore
	jobQueue  queue.Publisher // For re-enqueueing jobs with delays
	logger    *zap.Logger
	now       func() time.Time
}

// NewReflectionWorker creates a new reflection worker
func NewReflectionWorker(reflector Reflector, journal JournalStore, jobQueue queue.Publisher, logger *zap.Logger) *ReflectionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReflectionWorker{
		reflector: reflector,
		journal:   journal,
		jobQueue:  jobQueue,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessReflectionJob generates and stores the reflection of one entry
func (w *ReflectionWorker) ProcessReflectionJob(ctx context.Context, job *queue.Job) error {
	if job.EntryID == "" {
		return fmt.Errorf("entry_id is required for journal reflection job")
	}

	key := database.ProfileKey(job.DeviceID)
	entry, err := w.journal.GetByID(ctx, key, job.EntryID)
	if err != nil {
		return fmt.Errorf("failed to get journal entry: %w", err)
	}
	if entry.Reflection != "" {
		w.logger.Debug("reflection_already_present", zap.String("entry_id", entry.ID))
		return nil
	}

	reflection, err := w.reflector.TryJournalReflection(ctx, entry.Content)
	if errors.Is(err, ai.ErrUnconfigured) {
		reflection, err = ai.JournalOfflineReflection, nil
	}
	if err != nil {
		return fmt.Errorf("failed to generate reflection: %w", err)
	}

	if err := w.journal.SetReflection(ctx, key, entry.ID, reflection); err != nil {
		return fmt.Errorf("failed to store reflection: %w", err)
	}

	w.logger.Info("reflection_stored",
		zap.String("entry_id", entry.ID),
		zap.String("device", ai.HashDeviceID(job.DeviceID)),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (w *ReflectionWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		w.logger.Info("job_expired", zap.String("job_id", job.ID.String()))
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return nil
	}

	// Without the delayed exchange a job can arrive before NotBefore
	if job.Early(w.now()) {
		w.waitUntil(ctx, *job.NotBefore)
		if !job.ShouldProcess() {
			if nackErr := msg.Nack(true); nackErr != nil {
				w.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return nil
		}
	}

	switch job.Type {
	case queue.JobTypeJournalReflection:
		err := w.ProcessReflectionJob(ctx, job)
		if errors.Is(err, database.ErrNotFound) {
			w.logger.Warn("reflection_entry_missing", zap.String("entry_id", job.EntryID))
			if nackErr := msg.Nack(false); nackErr != nil {
				w.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return err
		}
		if err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError re-enqueues failed jobs with a delay that depends on the
// failure class, and dead-letters them once the retry budget is spent
func (w *ReflectionWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	}

	// Quota exhaustion waits out the quota window regardless of the retry budget
	quota := ai.IsQuotaError(err)
	if !quota && !job.CanRetry() {
		w.logger.Error("job_dead_lettered", fields...)
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (max retries): %w", err)
	}

	if w.jobQueue == nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed, no queue to retry on: %w", err)
	}

	delay := ai.GetRetryDelay(err, job.RetryCount)
	delayed := job.Delayed(w.now().Add(delay))
	if quota {
		delayed.RetryCount = job.RetryCount
	}

	if enqueueErr := w.jobQueue.Enqueue(ctx, delayed); enqueueErr != nil {
		w.logger.Error("job_reenqueue_failed", append(fields, zap.NamedError("enqueue_error", enqueueErr))...)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("failed to re-enqueue job: %w", enqueueErr)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		w.logger.Warn("job_ack_failed", zap.Error(ackErr))
	}

	w.logger.Warn("job_retry_scheduled", append(fields, zap.Duration("delay", delay))...)
	return nil
}

func (w *ReflectionWorker) waitUntil(ctx context.Context, t time.Time) {
	d := min(t.Sub(w.now()), maxNotBeforeWait)
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Run processes messages until ctx is cancelled or the channel closes
func (w *ReflectionWorker) Run(ctx context.Context, msgs <-chan *queue.Message, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := w.ProcessJob(ctx, msg); err != nil {
				w.logger.Error("job_failed",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}
}
