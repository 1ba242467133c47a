package lightconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store defines the persistence contract for user lighting configuration.
type Store interface {
	// Lookup returns the user's configuration if a row exists and is enabled.
	// ok is false when the user is untracked or disabled; that is not an error.
	Lookup(ctx context.Context, userID string) (cfg UserLightConfig, ok bool, err error)

	// ListEnabled returns every enabled configuration.
	ListEnabled(ctx context.Context) ([]UserLightConfig, error)

	// Get returns the row regardless of its enabled flag.
	// Returns ErrNotFound if the user has no row.
	Get(ctx context.Context, userID string) (UserLightConfig, error)

	// List returns every row, enabled or not, newest first.
	List(ctx context.Context) ([]UserLightConfig, error)

	// Upsert inserts or fully replaces the configuration for userID.
	// Returns ErrValidation for bad input.
	Upsert(ctx context.Context, userID, username string, fields Fields) error

	// SetEnabled flips the enabled flag.
	// Returns ErrNotFound if the user has no row.
	SetEnabled(ctx context.Context, userID string, enabled bool) error

	// Delete removes the row.
	// Returns ErrNotFound if the user has no row.
	Delete(ctx context.Context, userID string) error
}

// SQLiteStore implements Store on the user_lights table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a store over an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

const selectColumns = `
	SELECT user_id, username, device, led, color,
		join_effect, join_duration, next_effect, speed, brightness,
		leave_effect, leave_duration, enabled, created_at, updated_at
	FROM user_lights`

// Lookup returns the enabled configuration for userID.
func (s *SQLiteStore) Lookup(ctx context.Context, userID string) (UserLightConfig, bool, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE user_id = ? AND enabled = 1`, userID)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserLightConfig{}, false, nil
		}
		return UserLightConfig{}, false, fmt.Errorf("looking up user %s: %w", userID, err)
	}
	return cfg, true, nil
}

// ListEnabled returns every enabled configuration in insertion order.
func (s *SQLiteStore) ListEnabled(ctx context.Context) ([]UserLightConfig, error) {
	return s.query(ctx, selectColumns+` WHERE enabled = 1 ORDER BY created_at, user_id`)
}

// Get returns the row for userID whether or not it is enabled.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (UserLightConfig, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE user_id = ?`, userID)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserLightConfig{}, ErrNotFound
		}
		return UserLightConfig{}, fmt.Errorf("getting user %s: %w", userID, err)
	}
	return cfg, nil
}

// List returns every row, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]UserLightConfig, error) {
	return s.query(ctx, selectColumns+` ORDER BY created_at DESC, user_id`)
}

// Upsert inserts a new row or replaces every configurable column of the
// existing one in a single statement. created_at and enabled survive an
// update; updated_at is bumped.
func (s *SQLiteStore) Upsert(ctx context.Context, userID, username string, fields Fields) error {
	cfg, err := fields.resolve(userID, username)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(timeLayout)

	query := `
		INSERT INTO user_lights (
			user_id, username, device, led, color,
			join_effect, join_duration, next_effect, speed, brightness,
			leave_effect, leave_duration, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			device = excluded.device,
			led = excluded.led,
			color = excluded.color,
			join_effect = excluded.join_effect,
			join_duration = excluded.join_duration,
			next_effect = excluded.next_effect,
			speed = excluded.speed,
			brightness = excluded.brightness,
			leave_effect = excluded.leave_effect,
			leave_duration = excluded.leave_duration,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		cfg.UserID,
		cfg.Username,
		cfg.Device,
		cfg.LED,
		cfg.Color,
		cfg.JoinEffect,
		cfg.JoinDuration,
		cfg.NextEffect,
		cfg.Speed,
		cfg.Brightness,
		cfg.LeaveEffect,
		cfg.LeaveDuration,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", userID, err)
	}
	return nil
}

// SetEnabled flips the enabled flag and bumps updated_at.
func (s *SQLiteStore) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE user_lights SET enabled = ?, updated_at = ? WHERE user_id = ?`,
		boolToInt(enabled),
		s.now().UTC().Format(timeLayout),
		userID,
	)
	if err != nil {
		return fmt.Errorf("setting enabled for user %s: %w", userID, err)
	}
	return requireAffected(result)
}

// Delete removes the row for userID.
func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_lights WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", userID, err)
	}
	return requireAffected(result)
}

// query executes a multi-row select.
func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]UserLightConfig, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying user lights: %w", err)
	}
	defer rows.Close()

	var configs []UserLightConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user light: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user lights: %w", err)
	}
	return configs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(row scanner) (UserLightConfig, error) {
	var (
		cfg                  UserLightConfig
		enabled              int
		createdAt, updatedAt string
	)

	err := row.Scan(
		&cfg.UserID,
		&cfg.Username,
		&cfg.Device,
		&cfg.LED,
		&cfg.Color,
		&cfg.JoinEffect,
		&cfg.JoinDuration,
		&cfg.NextEffect,
		&cfg.Speed,
		&cfg.Brightness,
		&cfg.LeaveEffect,
		&cfg.LeaveDuration,
		&enabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return UserLightConfig{}, err
	}

	cfg.Enabled = enabled != 0
	cfg.CreatedAt, _ = time.Parse(timeLayout, createdAt) //nolint:errcheck // Format is controlled
	cfg.UpdatedAt, _ = time.Parse(timeLayout, updatedAt) //nolint:errcheck // Format is controlled
	return cfg, nil
}

// requireAffected maps "no row matched" to ErrNotFound.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
