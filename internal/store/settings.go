package store

import (
	"fmt"
	"strconv"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// BreakSettings loads the break configuration, falling back to the
// defaults for any missing key.
func (s *Store) BreakSettings() (BreakSettings, error) {
	bs := BreakSettings{
		Interval:       "180",
		Duration:       "15",
		CustomInterval: 180,
		CustomDuration: 15,
	}
	if v, err := s.GetSetting("break_interval"); err == nil && v != "" {
		bs.Interval = v
	}
	if v, err := s.GetSetting("break_duration"); err == nil && v != "" {
		bs.Duration = v
	}
	if v, err := s.GetSetting("custom_interval"); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			bs.CustomInterval = n
		}
	}
	if v, err := s.GetSetting("custom_duration"); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			bs.CustomDuration = n
		}
	}
	return bs, nil
}

func (s *Store) SaveBreakSettings(bs BreakSettings) error {
	pairs := []struct{ key, value string }{
		{"break_interval", bs.Interval},
		{"break_duration", bs.Duration},
		{"custom_interval", strconv.Itoa(bs.CustomInterval)},
		{"custom_duration", strconv.Itoa(bs.CustomDuration)},
	}
	for _, p := range pairs {
		if err := s.SetSetting(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}
	return nil
}
