package database

import (
	"context"
	"time"

	"github.com/benvon/devotional/internal/models"
)

// ProfileRepositoryInterface defines profile persistence
type ProfileRepositoryInterface interface {
	Load(ctx context.Context, key string) (*models.UserProfile, error)
	Save(ctx context.Context, key string, profile models.UserProfile) error
}

// JournalRepositoryInterface defines journal persistence
// This interface enables better testability by allowing mock implementations
type JournalRepositoryInterface interface {
	List(ctx context.Context, key string) ([]models.JournalEntry, error)
	Append(ctx context.Context, key string, entry models.JournalEntry) error
	GetByID(ctx context.Context, key, id string) (*models.JournalEntry, error)
	SetReflection(ctx context.Context, key, id, reflection string) error
	ListWithoutReflection(ctx context.Context, after, before time.Time, limit uint64) ([]PendingReflection, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ProfileRepositoryInterface = (*ProfileRepository)(nil)
	_ JournalRepositoryInterface = (*JournalRepository)(nil)
)
