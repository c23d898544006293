package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/benvon/devotional/internal/models"
)

const profileKeyPrefix = "user_profile:"

// ProfileKey is the storage key of a device's profile
func ProfileKey(deviceID string) string {
	return profileKeyPrefix + deviceID
}

// DeviceIDFromKey reverses ProfileKey
func DeviceIDFromKey(key string) (string, bool) {
	return strings.CutPrefix(key, profileKeyPrefix)
}

// ProfileRepository stores each profile as a single JSON document
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Load returns the profile stored under key, or nil when there is none
func (r *ProfileRepository) Load(ctx context.Context, key string) (*models.UserProfile, error) {
	query, args, err := r.db.Builder().
		Select("data").
		From("profiles").
		Where(sq.Eq{"profile_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var data []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// Save replaces the profile stored under key
func (r *ProfileRepository) Save(ctx context.Context, key string, profile models.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query, args, err := r.db.Builder().
		Insert("profiles").
		Columns("profile_key", "data", "updated_at").
		Values(key, string(data), time.Now().UnixMilli()).
		Suffix("ON CONFLICT (profile_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Delete removes the profile stored under key
func (r *ProfileRepository) Delete(ctx context.Context, key string) error {
	query, args, err := r.db.Builder().
		Delete("profiles").
		Where(sq.Eq{"profile_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
