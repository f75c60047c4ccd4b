package watch

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTickInterval is the monitor's polling cadence.
	DefaultTickInterval = time.Second

	// DefaultPromptTimeout is how long a playlist-change confirmation
	// stays open before it resolves as declined.
	DefaultPromptTimeout = 10 * time.Second

	// DefaultBreakInterval is the study time between break suggestions.
	DefaultBreakInterval = 3 * time.Hour

	// DefaultBreakDuration is the length of a suggested break.
	DefaultBreakDuration = 15 * time.Minute

	// endBreakNoticeDuration is how long the break-over alert stays up.
	endBreakNoticeDuration = 8 * time.Second

	// declineNoticeDuration is how long the returning-to-playlist
	// notice stays up after a declined switch.
	declineNoticeDuration = 3 * time.Second
)

// Config carries the engine's timing knobs.
type Config struct {
	PromptTimeout time.Duration
	BreakInterval time.Duration
	BreakDuration time.Duration
}

// DefaultConfig returns the stock timing configuration.
func DefaultConfig() Config {
	return Config{
		PromptTimeout: DefaultPromptTimeout,
		BreakInterval: DefaultBreakInterval,
		BreakDuration: DefaultBreakDuration,
	}
}

// Engine is the session controller. It owns the navigation monitor
// and the break scheduler and is the only writer of Session and
// BreakState. All methods must be called from a single event loop;
// the engine does not lock.
type Engine struct {
	probe    LocationProbe
	notifier Notifier
	nav      Navigator
	chime    Chime
	store    StateStore
	log      Logger

	cfg Config

	session Session
	breaks  BreakState
	state   monitorState

	// Single-slot pending confirmation.
	promptID       string
	promptPlaylist string
	promptDeadline time.Time

	// Deadline for the automatic end of the current break; zero when
	// no break end is scheduled.
	breakEndAt time.Time

	// Set once a suggestion fired; cleared by a break boundary or an
	// interval-anchor reset so a suggestion never repeats on its own.
	suggested bool

	// Handle of the sticky left-playlist alert, so the detection is
	// edge-triggered rather than re-firing every tick.
	leftAlertID string

	now   func() time.Time
	newID func() string
}

// New wires an engine from its collaborators.
func New(probe LocationProbe, notifier Notifier, nav Navigator, chime Chime, store StateStore, log Logger, cfg Config) *Engine {
	if cfg.PromptTimeout <= 0 {
		cfg.PromptTimeout = DefaultPromptTimeout
	}
	if cfg.BreakInterval <= 0 {
		cfg.BreakInterval = DefaultBreakInterval
	}
	if cfg.BreakDuration <= 0 {
		cfg.BreakDuration = DefaultBreakDuration
	}
	return &Engine{
		probe:    probe,
		notifier: notifier,
		nav:      nav,
		chime:    chime,
		store:    store,
		log:      log,
		cfg:      cfg,
		breaks: BreakState{
			Interval: cfg.BreakInterval,
			Duration: cfg.BreakDuration,
		},
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Start begins monitoring. Calling it while already active is a no-op.
func (e *Engine) Start() {
	if e.session.Active {
		return
	}
	now := e.now()
	e.session = Session{
		Active:          true,
		StartedAt:       now,
		ApprovedHistory: make(map[string]struct{}),
	}
	e.breaks.OnBreak = false
	e.breaks.LastBreakAt = time.Time{}
	e.breakEndAt = time.Time{}
	e.suggested = false

	if pl := e.probe.PlaylistID(); pl != "" {
		e.approve(pl)
		e.session.LastKnownPlaylistID = pl
		e.session.LastKnownVideoID = e.probe.VideoID()
	}

	// Restore a durably-saved break in progress, if any.
	if st, err := e.store.Load(); err != nil {
		e.log.Warnf("load persisted state: %v", err)
	} else {
		if !st.LastBreakAt.IsZero() {
			e.breaks.LastBreakAt = st.LastBreakAt
		}
		if st.OnBreak {
			e.breaks.OnBreak = true
			e.breakEndAt = st.LastBreakAt.Add(e.breaks.Duration)
		}
	}

	e.state = stateTracking
	e.persistSession()
	e.notifier.Notify(KindInfo, "Study Focus monitoring started. Break suggestions enabled!", 5*time.Second, nil)
	e.log.Infof("monitoring started, playlist=%q", e.session.ApprovedPlaylistID)
}

// Resume re-enters Tracking after a process restart, keeping the
// persisted session start and approved playlist.
func (e *Engine) Resume(st PersistedState) {
	if e.session.Active || !st.Monitoring {
		return
	}
	e.session = Session{
		Active:             true,
		StartedAt:          st.StartedAt,
		ApprovedPlaylistID: st.ApprovedPlaylistID,
		ApprovedHistory:    make(map[string]struct{}),
		LastKnownVideoID:   st.LastVideoID,
	}
	if st.ApprovedPlaylistID != "" {
		e.session.ApprovedHistory[st.ApprovedPlaylistID] = struct{}{}
		e.session.LastKnownPlaylistID = st.ApprovedPlaylistID
	}
	e.breaks.OnBreak = st.OnBreak
	e.breaks.LastBreakAt = st.LastBreakAt
	e.breakEndAt = time.Time{}
	if st.OnBreak {
		e.breakEndAt = st.LastBreakAt.Add(e.breaks.Duration)
	}
	e.suggested = false
	e.state = stateTracking
	e.log.Infof("monitoring resumed, started=%s playlist=%q", st.StartedAt.Format(time.RFC3339), st.ApprovedPlaylistID)
}

// Stop ends monitoring, cancels the pending prompt and any scheduled
// break end, and persists the cleared session. A break in progress is
// abandoned.
func (e *Engine) Stop() {
	if !e.session.Active {
		return
	}
	e.dismissPrompt()
	if e.leftAlertID != "" {
		e.notifier.Dismiss(e.leftAlertID)
		e.leftAlertID = ""
	}
	e.session = Session{}
	e.breaks.OnBreak = false
	e.breakEndAt = time.Time{}
	e.suggested = false
	e.state = stateIdle

	e.persistSession()
	if err := e.store.SaveBreak(false, e.breaks.LastBreakAt); err != nil {
		e.log.Errorf("persist break state: %v", err)
	}
	e.notifier.Notify(KindInfo, "Study Focus monitoring stopped.", 5*time.Second, nil)
	e.log.Infof("monitoring stopped")
}

// Active reports whether a session is running.
func (e *Engine) Active() bool {
	return e.session.Active
}

// Snapshot returns a display view of the current state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Active:             e.session.Active,
		Tracking:           e.state == stateTracking,
		AwaitingConfirm:    e.state == stateAwaitingConfirm,
		StartedAt:          e.session.StartedAt,
		ApprovedPlaylistID: e.session.ApprovedPlaylistID,
		LastVideoID:        e.session.LastKnownVideoID,
		OnBreak:            e.breaks.OnBreak,
		BreakEndsAt:        e.breakEndAt,
		BreaksTaken:        e.session.BreaksTaken,
		BreakSuggested:     e.suggested,
	}
	if e.session.Active && !e.breaks.OnBreak && !e.suggested {
		snap.NextBreakAt = e.breaks.anchor(e.session.StartedAt).Add(e.breaks.Interval)
	}
	return snap
}

// ReturnToApproved navigates the watched page back to the last known
// position in the approved playlist. With no approved playlist it is
// a no-op.
func (e *Engine) ReturnToApproved() {
	if e.session.ApprovedPlaylistID == "" {
		return
	}
	if err := e.nav.Navigate(e.session.ApprovedPlaylistID, e.session.LastKnownVideoID); err != nil {
		e.log.Errorf("navigate back: %v", err)
	}
}

func (e *Engine) approve(playlistID string) {
	e.session.ApprovedPlaylistID = playlistID
	e.session.ApprovedHistory[playlistID] = struct{}{}
}

func (e *Engine) persistSession() {
	err := e.store.SaveSession(
		e.session.Active,
		e.session.StartedAt,
		e.session.ApprovedPlaylistID,
		e.session.LastKnownVideoID,
	)
	if err != nil {
		e.log.Errorf("persist session state: %v", err)
	}
}

func (e *Engine) playChime() {
	if err := e.chime.Play(); err != nil {
		e.log.Warnf("chime: %v", err)
	}
}
