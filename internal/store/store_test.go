package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/studyfocus.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

// ============================================================
// Persisted state
// ============================================================

func TestLoadEmptyState(t *testing.T) {
	s := newTestStore(t)

	st, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if st.Monitoring || st.OnBreak {
		t.Fatal("fresh store should report nothing active")
	}
	if !st.StartedAt.IsZero() || !st.LastBreakAt.IsZero() {
		t.Fatal("fresh store should have zero timestamps")
	}
}

func TestSessionStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	started := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	if err := s.SaveSession(true, started, "PL123", "vid456"); err != nil {
		t.Fatal(err)
	}

	st, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !st.Monitoring {
		t.Fatal("monitoring flag lost")
	}
	if !st.StartedAt.Equal(started) {
		t.Fatalf("started = %v, want %v", st.StartedAt, started)
	}
	if st.ApprovedPlaylistID != "PL123" || st.LastVideoID != "vid456" {
		t.Fatalf("position lost: %q / %q", st.ApprovedPlaylistID, st.LastVideoID)
	}
}

func TestSessionStateCleared(t *testing.T) {
	s := newTestStore(t)
	s.SaveSession(true, time.Now().UTC(), "PL123", "vid456")

	if err := s.SaveSession(false, time.Time{}, "", ""); err != nil {
		t.Fatal(err)
	}

	st, _ := s.Load()
	if st.Monitoring {
		t.Fatal("monitoring flag not cleared")
	}
	if !st.StartedAt.IsZero() {
		t.Fatal("start time not cleared")
	}
}

func TestBreakStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.SaveBreak(true, at); err != nil {
		t.Fatal(err)
	}
	st, _ := s.Load()
	if !st.OnBreak || !st.LastBreakAt.Equal(at) {
		t.Fatalf("break state lost: %+v", st)
	}

	s.SaveBreak(false, at.Add(15*time.Minute))
	st, _ = s.Load()
	if st.OnBreak {
		t.Fatal("break flag not cleared")
	}
	if !st.LastBreakAt.Equal(at.Add(15 * time.Minute)) {
		t.Fatal("last break time not updated")
	}
}

// ============================================================
// Settings
// ============================================================

func TestDefaultBreakSettings(t *testing.T) {
	s := newTestStore(t)

	bs, err := s.BreakSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got := bs.EffectiveInterval(); got != 3*time.Hour {
		t.Fatalf("default interval = %v, want 3h", got)
	}
	if got := bs.EffectiveDuration(); got != 15*time.Minute {
		t.Fatalf("default duration = %v, want 15m", got)
	}
}

func TestCustomBreakSettings(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveBreakSettings(BreakSettings{
		Interval:       "custom",
		Duration:       "30",
		CustomInterval: 45,
		CustomDuration: 99, // ignored while Duration is a preset
	})
	if err != nil {
		t.Fatal(err)
	}

	bs, _ := s.BreakSettings()
	if got := bs.EffectiveInterval(); got != 45*time.Minute {
		t.Fatalf("custom interval = %v, want 45m", got)
	}
	if got := bs.EffectiveDuration(); got != 30*time.Minute {
		t.Fatalf("preset duration = %v, want 30m", got)
	}
}

func TestBreakSettingsBadValuesFallBack(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("break_interval", "not-a-number")
	s.SetSetting("custom_duration", "-5")

	bs, _ := s.BreakSettings()
	if got := bs.EffectiveInterval(); got != 3*time.Hour {
		t.Fatalf("bad interval should fall back to 3h, got %v", got)
	}
	bs.Duration = "custom"
	if got := bs.EffectiveDuration(); got != 15*time.Minute {
		t.Fatalf("bad custom duration should fall back to 15m, got %v", got)
	}
}

func TestSetSettingUpsert(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting("break_duration", "20"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting("break_duration")
	if err != nil {
		t.Fatal(err)
	}
	if v != "20" {
		t.Fatalf("value = %q, want 20", v)
	}

	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 4 {
		t.Fatalf("settings count = %d, want 4", len(settings))
	}
}

// ============================================================
// Study session history
// ============================================================

func TestRecordAndListSessions(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	sess, err := s.RecordSession(start, start.Add(2*time.Hour), "PL1", "Algorithms", 1)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Duration != 7200 {
		t.Fatalf("duration = %d, want 7200", sess.Duration)
	}
	if sess.EndedAt == nil {
		t.Fatal("ended_at not set")
	}
	if sess.PlaylistTitle != "Algorithms" || sess.BreaksTaken != 1 {
		t.Fatalf("metadata lost: %+v", sess)
	}

	s.RecordSession(start.Add(24*time.Hour), start.Add(25*time.Hour), "PL2", "", 0)

	all, err := s.ListSessions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("sessions = %d, want 2", len(all))
	}
	if all[0].PlaylistID != "PL2" {
		t.Fatal("sessions not newest-first")
	}

	day1, err := s.ListSessions(start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(day1) != 1 || day1[0].PlaylistID != "PL1" {
		t.Fatalf("range filter returned %+v", day1)
	}
}

func TestRecordSessionNegativeDurationClamped(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC()

	sess, err := s.RecordSession(start, start.Add(-time.Minute), "PL1", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Duration != 0 {
		t.Fatalf("duration = %d, want 0", sess.Duration)
	}
}

func TestDailyTotals(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	s.RecordSession(day.Add(9*time.Hour), day.Add(10*time.Hour), "PL1", "", 1)
	s.RecordSession(day.Add(14*time.Hour), day.Add(15*time.Hour), "PL1", "", 0)
	s.RecordSession(day.Add(33*time.Hour), day.Add(34*time.Hour), "PL2", "", 2)

	totals, err := s.DailyTotals(day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("days = %d, want 2", len(totals))
	}
	if totals[0].Date != "2025-03-01" || totals[0].TotalSeconds != 7200 || totals[0].SessionCount != 2 {
		t.Fatalf("day 1 = %+v", totals[0])
	}
	if totals[1].Date != "2025-03-02" || totals[1].TotalSeconds != 3600 || totals[1].BreaksTaken != 2 {
		t.Fatalf("day 2 = %+v", totals[1])
	}
}
