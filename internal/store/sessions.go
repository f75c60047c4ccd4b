package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordSession appends a completed monitoring session to the history.
func (s *Store) RecordSession(startedAt, endedAt time.Time, playlistID, playlistTitle string, breaksTaken int) (*StudySession, error) {
	duration := int64(endedAt.Sub(startedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	res, err := s.db.Exec(
		`INSERT INTO study_sessions (started_at, ended_at, duration, playlist_id, playlist_title, breaks_taken)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339), endedAt.UTC().Format(time.RFC3339),
		duration, playlistID, playlistTitle, breaksTaken,
	)
	if err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

func (s *Store) GetSession(id int64) (*StudySession, error) {
	sess := &StudySession{}
	var startedAt string
	var endedAt sql.NullString

	err := s.db.QueryRow(
		`SELECT id, started_at, ended_at, duration, playlist_id, playlist_title, breaks_taken
		 FROM study_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &startedAt, &endedAt, &sess.Duration, &sess.PlaylistID, &sess.PlaylistTitle, &sess.BreaksTaken)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	sess.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339, endedAt.String)
		sess.EndedAt = &t
	}
	return sess, nil
}

// ListSessions returns sessions started in [from, to), newest first.
// Zero times widen the range on that side.
func (s *Store) ListSessions(from, to time.Time) ([]StudySession, error) {
	query := `SELECT id, started_at, ended_at, duration, playlist_id, playlist_title, breaks_taken
	          FROM study_sessions WHERE 1=1`
	var args []any

	if !from.IsZero() {
		query += ` AND started_at >= ?`
		args = append(args, from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		query += ` AND started_at < ?`
		args = append(args, to.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []StudySession
	for rows.Next() {
		var sess StudySession
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&sess.ID, &startedAt, &endedAt, &sess.Duration, &sess.PlaylistID, &sess.PlaylistTitle, &sess.BreaksTaken); err != nil {
			return nil, err
		}
		sess.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if endedAt.Valid {
			t, _ := time.Parse(time.RFC3339, endedAt.String)
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// DailyTotals aggregates study time per calendar day in [from, to).
func (s *Store) DailyTotals(from, to time.Time) ([]DailyStudy, error) {
	rows, err := s.db.Query(`
		SELECT date(started_at) AS day,
		       COALESCE(SUM(duration), 0), COUNT(*), COALESCE(SUM(breaks_taken), 0)
		FROM study_sessions
		WHERE started_at >= ? AND started_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var days []DailyStudy
	for rows.Next() {
		var d DailyStudy
		if err := rows.Scan(&d.Date, &d.TotalSeconds, &d.SessionCount, &d.BreaksTaken); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// TodayTotal returns today's accumulated study seconds.
func (s *Store) TodayTotal() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration), 0) FROM study_sessions WHERE date(started_at) = ?`, today,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
