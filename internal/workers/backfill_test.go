package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/devotional/internal/database"
	"github.com/benvon/devotional/internal/queue"
)

// mockPendingLister is a mock implementation of PendingReflectionLister
type mockPendingLister struct {
	listFunc func(ctx context.Context, after, before time.Time, limit uint64) ([]database.PendingReflection, error)
}

func (m *mockPendingLister) ListWithoutReflection(ctx context.Context, after, before time.Time, limit uint64) ([]database.PendingReflection, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, after, before, limit)
	}
	return nil, nil
}

// Ensure mock implements interface
var _ PendingReflectionLister = (*mockPendingLister)(nil)

func TestReflectionBackfill_ScheduleBackfillJobs(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-time.Hour)

	tests := []struct {
		name         string
		pending      []database.PendingReflection
		listErr      error
		enqueueErr   error
		wantEnqueued int
		wantErr      bool
	}{
		{
			name: "enqueues one job per entry",
			pending: []database.PendingReflection{
				{ProfileKey: database.ProfileKey("a"), EntryID: "e1", CreatedAt: created},
				{ProfileKey: database.ProfileKey("b"), EntryID: "e2", CreatedAt: created},
			},
			wantEnqueued: 2,
		},
		{
			name: "skips keys that are not profile keys",
			pending: []database.PendingReflection{
				{ProfileKey: "other:a", EntryID: "e1", CreatedAt: created},
			},
			wantEnqueued: 0,
		},
		{
			name: "enqueue failures are skipped",
			pending: []database.PendingReflection{
				{ProfileKey: database.ProfileKey("a"), EntryID: "e1", CreatedAt: created},
			},
			enqueueErr:   errors.New("broker down"),
			wantEnqueued: 0,
		},
		{
			name:    "list failure",
			listErr: errors.New("db down"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotAfter, gotBefore time.Time
			lister := &mockPendingLister{listFunc: func(_ context.Context, after, before time.Time, _ uint64) ([]database.PendingReflection, error) {
				gotAfter, gotBefore = after, before
				return tt.pending, tt.listErr
			}}
			publisher := &mockPublisher{enqueueFunc: func(context.Context, *queue.Job) error { return tt.enqueueErr }}

			b := NewReflectionBackfill(publisher, lister, nil)
			b.now = func() time.Time { return now }

			n, err := b.ScheduleBackfillJobs(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ScheduleBackfillJobs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.wantEnqueued {
				t.Errorf("enqueued = %d, want %d", n, tt.wantEnqueued)
			}
			if tt.wantErr {
				return
			}
			if !gotBefore.Equal(now.Add(-defaultBackfillGrace)) || !gotAfter.Equal(now.Add(-defaultBackfillWindow)) {
				t.Errorf("window = [%v, %v)", gotAfter, gotBefore)
			}
			if tt.enqueueErr == nil {
				for _, job := range publisher.jobs {
					if job.Type != queue.JobTypeJournalReflection {
						t.Errorf("job type = %s", job.Type)
					}
					if job.NotAfter == nil || !job.NotAfter.Equal(created.Add(defaultBackfillWindow)) {
						t.Errorf("NotAfter = %v", job.NotAfter)
					}
				}
			}
		})
	}
}
