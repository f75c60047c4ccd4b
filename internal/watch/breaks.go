package watch

import (
	"fmt"
	"time"
)

// evalBreak runs the break scheduler's rules for this tick: end an
// expired break, or suggest one once the interval has elapsed.
func (e *Engine) evalBreak(now time.Time) {
	if e.breaks.OnBreak {
		if !e.breakEndAt.IsZero() && !now.Before(e.breakEndAt) {
			e.EndBreak()
		}
		return
	}

	if e.suggested {
		return
	}
	elapsed := now.Sub(e.breaks.anchor(e.session.StartedAt))
	if elapsed >= e.breaks.Interval {
		e.suggestBreak(now)
	}
}

func (e *Engine) suggestBreak(now time.Time) {
	e.suggested = true
	breakMinutes := int(e.breaks.Duration.Minutes())
	studied := now.Sub(e.session.StartedAt)
	e.playChime()
	e.notifier.Notify(
		KindInfo,
		fmt.Sprintf("You've been studying for %s. Time for a %d-minute break!", FormatDuration(studied), breakMinutes),
		0,
		&Action{Label: fmt.Sprintf("Take %dmin Break", breakMinutes), Do: e.StartBreak},
	)
	e.log.Infof("break suggested after %s", FormatDuration(studied))
}

// StartBreak begins a break now. Starting one while a break is
// already running, or while no session is active, is a no-op.
func (e *Engine) StartBreak() {
	if !e.session.Active || e.breaks.OnBreak {
		return
	}
	now := e.now()
	e.breaks.OnBreak = true
	e.breaks.LastBreakAt = now
	e.breakEndAt = now.Add(e.breaks.Duration)
	e.suggested = false
	e.session.BreaksTaken++

	if err := e.store.SaveBreak(true, now); err != nil {
		e.log.Errorf("persist break state: %v", err)
	}

	breakMinutes := int(e.breaks.Duration.Minutes())
	e.notifier.Notify(
		KindInfo,
		fmt.Sprintf("Break started! Take %d minutes to stretch, rest your eyes, or grab a snack.", breakMinutes),
		0,
		&Action{Label: "End Break Early", Do: e.EndBreak},
	)
	e.log.Infof("break started, ends at %s", e.breakEndAt.Format(time.RFC3339))
}

// EndBreak ends the current break, whether by expiry or early by the
// user. Ending when no break is running is a no-op.
func (e *Engine) EndBreak() {
	if !e.breaks.OnBreak {
		return
	}
	now := e.now()
	e.breaks.OnBreak = false
	e.breaks.LastBreakAt = now
	e.breakEndAt = time.Time{}
	e.suggested = false

	if err := e.store.SaveBreak(false, now); err != nil {
		e.log.Errorf("persist break state: %v", err)
	}

	e.notifier.Notify(
		KindInfo,
		"Break time is over! Ready to continue studying?",
		endBreakNoticeDuration,
		&Action{Label: "Resume Studying", Do: func() {
			if e.session.LastKnownVideoID != "" {
				e.ReturnToApproved()
			}
		}},
	)
	e.playChime()
	e.log.Infof("break ended")
}

// UpdateBreakSettings replaces the break interval and duration. While
// studying, the interval anchor resets to now so the new interval
// starts fresh rather than firing against the old anchor.
func (e *Engine) UpdateBreakSettings(interval, duration time.Duration) {
	if interval > 0 {
		e.breaks.Interval = interval
	}
	if duration > 0 {
		e.breaks.Duration = duration
	}
	if e.session.Active && !e.breaks.OnBreak {
		e.breaks.LastBreakAt = e.now()
		e.suggested = false
		if err := e.store.SaveBreak(false, e.breaks.LastBreakAt); err != nil {
			e.log.Errorf("persist break state: %v", err)
		}
	}
	e.notifier.Notify(KindInfo, "Break settings updated!", 3*time.Second, nil)
	e.log.Infof("break settings updated: interval=%s duration=%s", e.breaks.Interval, e.breaks.Duration)
}
