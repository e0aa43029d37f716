package notes

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

// GetSetting returns the value stored under key and whether it exists.
func (s *Service) GetSetting(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("%w: empty setting key", types.ErrInvalidArgument)
	}
	rows, err := s.store.Execute(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		return "", false, s.fail("get setting", err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return asString(rows[0]["value"]), true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty setting key", types.ErrInvalidArgument)
	}
	err := s.store.Run(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return s.fail("set setting", err)
	}
	return nil
}

// AllSettings returns every stored setting.
func (s *Service) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.store.Execute(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, s.fail("list settings", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[asString(r["key"])] = asString(r["value"])
	}
	return out, nil
}
