package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/benvon/devotional/internal/models"
)

var journalColumns = []string{"id", "entry_date", "content", "entry_type", "reflection", "created_at"}

// JournalRepository stores append-only journal entries
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// List returns the entries stored under key, newest first
func (r *JournalRepository) List(ctx context.Context, key string) ([]models.JournalEntry, error) {
	query, args, err := r.db.Builder().
		Select(journalColumns...).
		From("journal_entries").
		Where(sq.Eq{"profile_key": key}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build journal query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]models.JournalEntry, 0)
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}
	return entries, nil
}

// Append stores a new entry under key
func (r *JournalRepository) Append(ctx context.Context, key string, entry models.JournalEntry) error {
	query, args, err := r.db.Builder().
		Insert("journal_entries").
		Columns("id", "profile_key", "entry_date", "content", "entry_type", "reflection", "created_at").
		Values(entry.ID, key, entry.Date, entry.Content, string(entry.Type), entry.Reflection, entry.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build journal insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// GetByID returns one entry, or ErrNotFound
func (r *JournalRepository) GetByID(ctx context.Context, key, id string) (*models.JournalEntry, error) {
	query, args, err := r.db.Builder().
		Select(journalColumns...).
		From("journal_entries").
		Where(sq.Eq{"profile_key": key, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build journal query: %w", err)
	}

	entry, err := scanJournalEntry(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetReflection stores the generated reflection of an entry
func (r *JournalRepository) SetReflection(ctx context.Context, key, id, reflection string) error {
	query, args, err := r.db.Builder().
		Update("journal_entries").
		Set("reflection", reflection).
		Where(sq.Eq{"profile_key": key, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build journal update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set reflection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// PendingReflection identifies an entry that has no reflection yet
type PendingReflection struct {
	ProfileKey string
	EntryID    string
	CreatedAt  time.Time
}

// ListWithoutReflection returns entries created in [after, before) that
// still have an empty reflection, oldest first
func (r *JournalRepository) ListWithoutReflection(ctx context.Context, after, before time.Time, limit uint64) ([]PendingReflection, error) {
	query, args, err := r.db.Builder().
		Select("profile_key", "id", "created_at").
		From("journal_entries").
		Where(sq.Eq{"reflection": ""}).
		Where(sq.GtOrEq{"created_at": after.UnixMilli()}).
		Where(sq.Lt{"created_at": before.UnixMilli()}).
		OrderBy("created_at ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending reflection query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reflections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pending []PendingReflection
	for rows.Next() {
		var (
			p         PendingReflection
			createdAt int64
		)
		if err := rows.Scan(&p.ProfileKey, &p.EntryID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending reflection: %w", err)
		}
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending reflections: %w", err)
	}
	return pending, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(row rowScanner) (models.JournalEntry, error) {
	var (
		entry     models.JournalEntry
		entryType string
		createdAt int64
	)
	if err := row.Scan(&entry.ID, &entry.Date, &entry.Content, &entryType, &entry.Reflection, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	entry.Type = models.JournalType(entryType)
	entry.CreatedAt = time.UnixMilli(createdAt).UTC()
	return entry, nil
}
