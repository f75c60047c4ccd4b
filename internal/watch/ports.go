package watch

import "time"

// Kind classifies an alert for presentation.
type Kind int

const (
	KindInfo Kind = iota
	KindWarning
	KindDanger
)

// Action is an optional button attached to an alert. Do is invoked
// on the driver's event loop when the user activates it.
type Action struct {
	Label string
	Do    func()
}

// Notifier presents alerts and confirmation prompts to the user.
// Both surfaces are single-slot: showing a new alert or prompt
// replaces any visible one.
type Notifier interface {
	// Notify shows an alert and returns a handle for dismissal.
	// A zero duration means the alert stays until acted on.
	Notify(kind Kind, text string, duration time.Duration, action *Action) string

	// Confirm shows a yes/no prompt. The answer comes back through
	// Engine.RespondConfirm with the same id.
	Confirm(id, prompt string)

	// Dismiss removes the alert or prompt with the given handle.
	// Unknown handles are ignored.
	Dismiss(handle string)
}

// LocationProbe reports the playlist and video identifiers of the
// watched page. Empty string means the parameter is absent.
type LocationProbe interface {
	PlaylistID() string
	VideoID() string
}

// Navigator sends the watched page to a playlist position.
type Navigator interface {
	Navigate(playlistID, videoID string) error
}

// Chime plays a short attention tone. Errors are logged and ignored.
type Chime interface {
	Play() error
}

// PersistedState holds the durable fields that survive a restart.
type PersistedState struct {
	Monitoring         bool
	StartedAt          time.Time
	ApprovedPlaylistID string
	LastVideoID        string
	OnBreak            bool
	LastBreakAt        time.Time
}

// StateStore persists session and break state. Writes are
// fire-and-forget: the engine logs failures and keeps its in-memory
// state authoritative.
type StateStore interface {
	SaveSession(monitoring bool, startedAt time.Time, approvedPlaylistID, lastVideoID string) error
	SaveBreak(onBreak bool, lastBreakAt time.Time) error
	Load() (PersistedState, error)
}

// Logger is the subset of the file logger the engine uses.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
