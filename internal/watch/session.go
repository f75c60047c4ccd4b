package watch

import (
	"fmt"
	"time"
)

// monitorState is the navigation monitor's position in its state machine.
type monitorState int

const (
	stateIdle monitorState = iota
	stateTracking
	stateAwaitingConfirm
)

// Session is the monitoring lifecycle unit. It exists between Start
// and Stop and is mutated only by the engine.
type Session struct {
	Active             bool
	StartedAt          time.Time
	ApprovedPlaylistID string
	ApprovedHistory    map[string]struct{}

	// Last observed position inside the approved playlist; used to
	// build the return target.
	LastKnownPlaylistID string
	LastKnownVideoID    string

	BreaksTaken int
}

// BreakState tracks break scheduling. OnBreak transitions only
// through the engine's break methods; the navigation rules read it
// to suppress the left-playlist alert.
type BreakState struct {
	OnBreak     bool
	LastBreakAt time.Time
	Interval    time.Duration
	Duration    time.Duration
}

// anchor returns the reference point for the next break suggestion:
// the last break boundary, or the session start if no break happened yet.
func (b BreakState) anchor(sessionStart time.Time) time.Time {
	if !b.LastBreakAt.IsZero() {
		return b.LastBreakAt
	}
	return sessionStart
}

// Snapshot is a read-only view of the engine for display.
type Snapshot struct {
	Active             bool
	Tracking           bool
	AwaitingConfirm    bool
	StartedAt          time.Time
	ApprovedPlaylistID string
	LastVideoID        string
	OnBreak            bool
	BreakEndsAt        time.Time

	// NextBreakAt is zero while on break or while a fired suggestion
	// is still pending; BreakSuggested reports the latter.
	NextBreakAt    time.Time
	BreakSuggested bool

	BreaksTaken int
}

// FormatDuration renders an elapsed span as "3h 12m" for alert text.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
