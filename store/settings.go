package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting names used by the CLI.
const (
	SettingAPIKey     = "apiKey"
	SettingTargetUser = "targetUserId"
)

// Setting returns the stored value for a setting key, "" when unset.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a setting value, overwriting any previous one.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("storage: write setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting; deleting an absent key is not an error.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage: delete setting %s: %w", key, err)
	}
	return nil
}
