package store

import (
	"strconv"
	"time"
)

// StudySession is one completed monitoring session.
type StudySession struct {
	ID            int64
	StartedAt     time.Time
	EndedAt       *time.Time
	Duration      int64 // seconds
	PlaylistID    string
	PlaylistTitle string
	BreaksTaken   int
}

type Setting struct {
	Key   string
	Value string
}

// BreakSettings mirrors the break configuration keys. Interval and
// Duration hold a preset minute count or "custom"; the custom fields
// apply when the selector says so.
type BreakSettings struct {
	Interval       string
	Duration       string
	CustomInterval int // minutes
	CustomDuration int // minutes
}

// EffectiveInterval resolves the configured study interval.
func (b BreakSettings) EffectiveInterval() time.Duration {
	return resolveMinutes(b.Interval, b.CustomInterval, 180)
}

// EffectiveDuration resolves the configured break length.
func (b BreakSettings) EffectiveDuration() time.Duration {
	return resolveMinutes(b.Duration, b.CustomDuration, 15)
}

func resolveMinutes(selector string, custom, fallback int) time.Duration {
	minutes := fallback
	if selector == "custom" {
		if custom > 0 {
			minutes = custom
		}
	} else if n, err := strconv.Atoi(selector); err == nil && n > 0 {
		minutes = n
	}
	return time.Duration(minutes) * time.Minute
}

// DailyStudy is the aggregated study time for one calendar day.
type DailyStudy struct {
	Date         string
	TotalSeconds int64
	SessionCount int
	BreaksTaken  int
}
