package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJournalReflectionJob(t *testing.T) {
	t.Parallel()

	job := NewJournalReflectionJob("device-1", "entry-1")

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeJournalReflection {
		t.Errorf("Expected job type to be %s, got %s", JobTypeJournalReflection, job.Type)
	}
	if job.DeviceID != "device-1" {
		t.Errorf("Expected device ID to be device-1, got %s", job.DeviceID)
	}
	if job.EntryID != "entry-1" {
		t.Errorf("Expected entry ID to be entry-1, got %s", job.EntryID)
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries to be %d, got %d", DefaultMaxRetries, job.MaxRetries)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no time constraints", want: true},
		{name: "not before in past", notBefore: timePtr(now.Add(-1 * time.Hour)), want: true},
		{name: "not before in future", notBefore: timePtr(now.Add(1 * time.Hour)), want: false},
		{name: "not after in past", notAfter: timePtr(now.Add(-1 * time.Hour)), want: false},
		{name: "not after in future", notAfter: timePtr(now.Add(1 * time.Hour)), want: true},
		{
			name:      "within time window",
			notBefore: timePtr(now.Add(-1 * time.Hour)),
			notAfter:  timePtr(now.Add(1 * time.Hour)),
			want:      true,
		},
		{
			name:      "outside time window - before",
			notBefore: timePtr(now.Add(1 * time.Hour)),
			notAfter:  timePtr(now.Add(2 * time.Hour)),
			want:      false,
		},
		{
			name:      "outside time window - after",
			notBefore: timePtr(now.Add(-2 * time.Hour)),
			notAfter:  timePtr(now.Add(-1 * time.Hour)),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := NewJournalReflectionJob("device", "entry")
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name     string
		notAfter *time.Time
		want     bool
	}{
		{name: "no expiration", want: false},
		{name: "expired", notAfter: timePtr(now.Add(-1 * time.Hour)), want: true},
		{name: "not expired", notAfter: timePtr(now.Add(1 * time.Hour)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeJournalReflection, NotAfter: tt.notAfter}
			if got := job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Early(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no not before", want: false},
		{name: "no not before but expired", notAfter: timePtr(now.Add(-time.Minute)), want: false},
		{name: "not before in past", notBefore: timePtr(now.Add(-time.Minute)), want: false},
		{name: "not before in future", notBefore: timePtr(now.Add(time.Minute)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeJournalReflection, NotBefore: tt.notBefore, NotAfter: tt.notAfter}
			if got := job.Early(now); got != tt.want {
				t.Errorf("Early() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_CanRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		retryCount int
		maxRetries int
		want       bool
	}{
		{name: "can retry - no retries yet", retryCount: 0, maxRetries: 3, want: true},
		{name: "can retry - max retries minus one", retryCount: 2, maxRetries: 3, want: true},
		{name: "cannot retry - at max retries", retryCount: 3, maxRetries: 3, want: false},
		{name: "cannot retry - exceeded max retries", retryCount: 4, maxRetries: 3, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{
				ID:         uuid.New(),
				Type:       JobTypeJournalReflection,
				RetryCount: tt.retryCount,
				MaxRetries: tt.maxRetries,
			}
			if got := job.CanRetry(); got != tt.want {
				t.Errorf("CanRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IncrementRetry(t *testing.T) {
	t.Parallel()

	job := NewJournalReflectionJob("device", "entry")
	for want := 1; want <= 3; want++ {
		job.IncrementRetry()
		if job.RetryCount != want {
			t.Errorf("Expected retry count to be %d after increment, got %d", want, job.RetryCount)
		}
	}
}

func TestJob_Delayed(t *testing.T) {
	t.Parallel()

	job := NewJournalReflectionJob("device", "entry")
	at := time.Now().Add(time.Minute)

	next := job.Delayed(at)

	if next.ID != job.ID || next.EntryID != job.EntryID {
		t.Error("Expected delayed job to keep identity")
	}
	if next.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", next.RetryCount)
	}
	if next.NotBefore == nil || !next.NotBefore.Equal(at) {
		t.Errorf("Expected NotBefore %v, got %v", at, next.NotBefore)
	}
	if job.RetryCount != 0 || job.NotBefore != nil {
		t.Error("Expected original job to be unchanged")
	}
}

func TestRabbitMQQueue_PublishTarget(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name             string
		delayedAvailable bool
		notBefore        *time.Time
		wantExchange     string
		wantDelay        bool
	}{
		{name: "immediate", delayedAvailable: true, wantExchange: DefaultExchangeName},
		{name: "past not before", delayedAvailable: true, notBefore: timePtr(now.Add(-time.Minute)), wantExchange: DefaultExchangeName},
		{name: "future not before", delayedAvailable: true, notBefore: timePtr(now.Add(time.Minute)), wantExchange: DefaultDelayedExchangeName, wantDelay: true},
		{name: "no delay plugin", delayedAvailable: false, notBefore: timePtr(now.Add(time.Minute)), wantExchange: DefaultExchangeName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := &RabbitMQQueue{
				exchangeName:        DefaultExchangeName,
				delayedExchangeName: DefaultDelayedExchangeName,
				delayedAvailable:    tt.delayedAvailable,
			}
			job := NewJournalReflectionJob("device", "entry")
			job.NotBefore = tt.notBefore

			exchange, headers := q.publishTarget(job, now)
			if exchange != tt.wantExchange {
				t.Errorf("exchange = %s, want %s", exchange, tt.wantExchange)
			}
			if _, ok := headers["x-delay"]; ok != tt.wantDelay {
				t.Errorf("x-delay header present = %v, want %v", ok, tt.wantDelay)
			}
		})
	}
}

// Helper function to create time pointers
func timePtr(t time.Time) *time.Time {
	return &t
}
