package watch

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// ============================================================
// Fakes
// ============================================================

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeProbe struct {
	playlist string
	video    string
}

func (p *fakeProbe) PlaylistID() string { return p.playlist }
func (p *fakeProbe) VideoID() string    { return p.video }

type alertRecord struct {
	kind     Kind
	text     string
	duration time.Duration
	action   *Action
	handle   string
}

type confirmRecord struct {
	id     string
	prompt string
}

type recordingNotifier struct {
	alerts    []alertRecord
	confirms  []confirmRecord
	dismissed []string
	seq       int
}

func (n *recordingNotifier) Notify(kind Kind, text string, duration time.Duration, action *Action) string {
	n.seq++
	handle := fmt.Sprintf("alert-%d", n.seq)
	n.alerts = append(n.alerts, alertRecord{kind, text, duration, action, handle})
	return handle
}

func (n *recordingNotifier) Confirm(id, prompt string) {
	n.confirms = append(n.confirms, confirmRecord{id, prompt})
}

func (n *recordingNotifier) Dismiss(handle string) {
	n.dismissed = append(n.dismissed, handle)
}

func (n *recordingNotifier) lastAlert() *alertRecord {
	if len(n.alerts) == 0 {
		return nil
	}
	return &n.alerts[len(n.alerts)-1]
}

func (n *recordingNotifier) lastConfirm() *confirmRecord {
	if len(n.confirms) == 0 {
		return nil
	}
	return &n.confirms[len(n.confirms)-1]
}

type navCall struct {
	playlist string
	video    string
}

type fakeNav struct {
	calls []navCall
}

func (f *fakeNav) Navigate(playlistID, videoID string) error {
	f.calls = append(f.calls, navCall{playlistID, videoID})
	return nil
}

type fakeChime struct {
	plays int
	err   error
}

func (f *fakeChime) Play() error {
	f.plays++
	return f.err
}

type memStore struct {
	state    PersistedState
	failWith error
}

func (s *memStore) SaveSession(monitoring bool, startedAt time.Time, approvedPlaylistID, lastVideoID string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.state.Monitoring = monitoring
	s.state.StartedAt = startedAt
	s.state.ApprovedPlaylistID = approvedPlaylistID
	s.state.LastVideoID = lastVideoID
	return nil
}

func (s *memStore) SaveBreak(onBreak bool, lastBreakAt time.Time) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.state.OnBreak = onBreak
	s.state.LastBreakAt = lastBreakAt
	return nil
}

func (s *memStore) Load() (PersistedState, error) {
	if s.failWith != nil {
		return PersistedState{}, s.failWith
	}
	return s.state, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type harness struct {
	engine   *Engine
	clock    *fakeClock
	probe    *fakeProbe
	notifier *recordingNotifier
	nav      *fakeNav
	chime    *fakeChime
	store    *memStore
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		clock:    &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		probe:    &fakeProbe{},
		notifier: &recordingNotifier{},
		nav:      &fakeNav{},
		chime:    &fakeChime{},
		store:    &memStore{},
	}
	h.engine = New(h.probe, h.notifier, h.nav, h.chime, h.store, nopLogger{}, cfg)
	h.engine.now = h.clock.Now
	return h
}

// tickAfter advances the clock and runs one tick.
func (h *harness) tickAfter(d time.Duration) {
	h.clock.advance(d)
	h.engine.Tick()
}

// ============================================================
// Session lifecycle
// ============================================================

func TestInactiveSessionProducesNothing(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"

	for i := 0; i < 10; i++ {
		h.tickAfter(time.Second)
	}
	h.probe.playlist = ""
	for i := 0; i < 10; i++ {
		h.tickAfter(time.Hour)
	}

	if len(h.notifier.alerts) != 0 || len(h.notifier.confirms) != 0 {
		t.Fatalf("inactive session produced notifications: %d alerts, %d confirms",
			len(h.notifier.alerts), len(h.notifier.confirms))
	}
	if len(h.nav.calls) != 0 {
		t.Fatal("inactive session navigated")
	}
}

func TestStartCapturesCurrentPlaylist(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"
	h.probe.video = "v1"

	h.engine.Start()

	snap := h.engine.Snapshot()
	if !snap.Active || !snap.Tracking {
		t.Fatal("engine should be active and tracking after start")
	}
	if snap.ApprovedPlaylistID != "P1" {
		t.Fatalf("approved = %q, want P1", snap.ApprovedPlaylistID)
	}
	if snap.LastVideoID != "v1" {
		t.Fatalf("last video = %q, want v1", snap.LastVideoID)
	}
	if !h.store.state.Monitoring {
		t.Fatal("monitoring flag not persisted")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"

	h.engine.Start()
	started := h.engine.Snapshot().StartedAt

	h.clock.advance(time.Hour)
	h.engine.Start()

	if got := h.engine.Snapshot().StartedAt; !got.Equal(started) {
		t.Fatalf("second start reset the session: %v -> %v", started, got)
	}
}

func TestStopClearsSessionAndPrompt(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"
	h.engine.Start()

	h.probe.playlist = "P2"
	h.tickAfter(time.Second)
	confirm := h.notifier.lastConfirm()
	if confirm == nil {
		t.Fatal("expected pending confirmation")
	}

	h.engine.Stop()

	snap := h.engine.Snapshot()
	if snap.Active || snap.AwaitingConfirm {
		t.Fatal("engine still active after stop")
	}
	if h.store.state.Monitoring {
		t.Fatal("monitoring flag still persisted")
	}
	dismissed := false
	for _, handle := range h.notifier.dismissed {
		if handle == confirm.id {
			dismissed = true
		}
	}
	if !dismissed {
		t.Fatal("pending prompt not dismissed on stop")
	}

	// A stale response after stop must be ignored.
	before := len(h.notifier.alerts)
	h.engine.RespondConfirm(confirm.id, true)
	if h.engine.Snapshot().ApprovedPlaylistID != "" {
		t.Fatal("stale confirm response mutated a stopped session")
	}
	if len(h.notifier.alerts) != before {
		t.Fatal("stale confirm response produced alerts")
	}
}

func TestResumeKeepsStartAndPlaylist(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	started := h.clock.t.Add(-2 * time.Hour)

	h.engine.Resume(PersistedState{
		Monitoring:         true,
		StartedAt:          started,
		ApprovedPlaylistID: "P1",
		LastVideoID:        "v9",
	})

	snap := h.engine.Snapshot()
	if !snap.Active || !snap.Tracking {
		t.Fatal("resume should re-enter tracking")
	}
	if !snap.StartedAt.Equal(started) {
		t.Fatalf("resume reset start time: %v", snap.StartedAt)
	}
	if snap.ApprovedPlaylistID != "P1" || snap.LastVideoID != "v9" {
		t.Fatalf("resume lost position: %q / %q", snap.ApprovedPlaylistID, snap.LastVideoID)
	}
}

func TestResumeRestoresExpiredBreak(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"

	h.engine.Resume(PersistedState{
		Monitoring:  true,
		StartedAt:   h.clock.t.Add(-4 * time.Hour),
		OnBreak:     true,
		LastBreakAt: h.clock.t.Add(-time.Hour), // break long over
	})

	if !h.engine.Snapshot().OnBreak {
		t.Fatal("break flag not restored")
	}
	h.tickAfter(time.Second)
	if h.engine.Snapshot().OnBreak {
		t.Fatal("expired break not ended on first tick")
	}
}

func TestPersistenceFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.store.failWith = errors.New("disk full")
	h.probe.playlist = "P1"

	h.engine.Start()
	if !h.engine.Snapshot().Active {
		t.Fatal("start aborted on persistence failure")
	}

	h.probe.playlist = ""
	h.tickAfter(time.Second)
	alert := h.notifier.lastAlert()
	if alert == nil || alert.kind != KindWarning {
		t.Fatal("monitoring rules stopped after persistence failure")
	}
}

func TestChimeFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.chime.err = errors.New("no audio device")
	h.probe.playlist = "P1"
	h.engine.Start()

	h.probe.playlist = ""
	h.tickAfter(time.Second)

	if h.notifier.lastAlert() == nil {
		t.Fatal("alert suppressed by chime failure")
	}
}
