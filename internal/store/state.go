package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/studyfocus/internal/watch"
)

// State keys. These are the durable fields the engine needs across a
// restart; values are stored as strings like the settings table.
const (
	stateMonitoring       = "is_monitoring"
	stateStartTime        = "start_time"
	stateApprovedPlaylist = "approved_playlist"
	stateLastVideo        = "last_video"
	stateOnBreak          = "is_on_break"
	stateLastBreakTime    = "last_break_time"
)

func (s *Store) setState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

func (s *Store) getState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get state %q: %w", key, err)
	}
	return value, nil
}

// SaveSession persists the session fields. Implements watch.StateStore.
func (s *Store) SaveSession(monitoring bool, startedAt time.Time, approvedPlaylistID, lastVideoID string) error {
	if err := s.setState(stateMonitoring, boolValue(monitoring)); err != nil {
		return err
	}
	if err := s.setState(stateStartTime, timeValue(startedAt)); err != nil {
		return err
	}
	if err := s.setState(stateApprovedPlaylist, approvedPlaylistID); err != nil {
		return err
	}
	return s.setState(stateLastVideo, lastVideoID)
}

// SaveBreak persists the break fields. Implements watch.StateStore.
func (s *Store) SaveBreak(onBreak bool, lastBreakAt time.Time) error {
	if err := s.setState(stateOnBreak, boolValue(onBreak)); err != nil {
		return err
	}
	return s.setState(stateLastBreakTime, timeValue(lastBreakAt))
}

// Load reads the persisted state. Missing keys come back as zero values.
func (s *Store) Load() (watch.PersistedState, error) {
	var st watch.PersistedState
	var err error

	if st.Monitoring, err = s.getBoolState(stateMonitoring); err != nil {
		return st, err
	}
	if st.StartedAt, err = s.getTimeState(stateStartTime); err != nil {
		return st, err
	}
	if st.ApprovedPlaylistID, err = s.getState(stateApprovedPlaylist); err != nil {
		return st, err
	}
	if st.LastVideoID, err = s.getState(stateLastVideo); err != nil {
		return st, err
	}
	if st.OnBreak, err = s.getBoolState(stateOnBreak); err != nil {
		return st, err
	}
	if st.LastBreakAt, err = s.getTimeState(stateLastBreakTime); err != nil {
		return st, err
	}
	return st, nil
}

func (s *Store) getBoolState(key string) (bool, error) {
	v, err := s.getState(key)
	return v == "1", err
}

func (s *Store) getTimeState(key string) (time.Time, error) {
	v, err := s.getState(key)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, perr := time.Parse(time.RFC3339, v)
	if perr != nil {
		return time.Time{}, fmt.Errorf("parse state %q: %w", key, perr)
	}
	return t, nil
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func timeValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
