package watch

import (
	"strings"
	"testing"
	"time"
)

func countSuggestions(n *recordingNotifier) int {
	count := 0
	for _, a := range n.alerts {
		if strings.Contains(a.text, "Time for a") {
			count++
		}
	}
	return count
}

func TestBreakScenarioThreeHours(t *testing.T) {
	h := newHarness(t, Config{
		PromptTimeout: 10 * time.Second,
		BreakInterval: 3 * time.Hour,
		BreakDuration: 15 * time.Minute,
	})
	h.probe.playlist = "P1"
	h.engine.Start()

	// t = 2h59m: no suggestion yet.
	h.tickAfter(2*time.Hour + 59*time.Minute)
	if countSuggestions(h.notifier) != 0 {
		t.Fatal("suggestion fired before the interval elapsed")
	}

	// t = 3h00m01s: suggestion appears.
	h.tickAfter(time.Minute + time.Second)
	if countSuggestions(h.notifier) != 1 {
		t.Fatal("no suggestion after the interval elapsed")
	}
	suggestion := h.notifier.lastAlert()
	if suggestion.duration != 0 || suggestion.action == nil {
		t.Fatal("suggestion should be sticky with a start-break action")
	}

	// User accepts.
	suggestion.action.Do()
	snap := h.engine.Snapshot()
	if !snap.OnBreak {
		t.Fatal("accepting the suggestion did not start a break")
	}
	if !h.store.state.OnBreak {
		t.Fatal("break start not persisted")
	}
	wantEnd := h.clock.t.Add(15 * time.Minute)
	if !snap.BreakEndsAt.Equal(wantEnd) {
		t.Fatalf("break ends at %v, want %v", snap.BreakEndsAt, wantEnd)
	}

	// t = 3h15m02s: automatic end.
	h.tickAfter(15*time.Minute + time.Second)
	snap = h.engine.Snapshot()
	if snap.OnBreak {
		t.Fatal("break did not end automatically")
	}
	if h.store.state.OnBreak {
		t.Fatal("break end not persisted")
	}
	if !strings.Contains(h.notifier.lastAlert().text, "Break time is over") {
		t.Fatalf("unexpected end-break alert: %q", h.notifier.lastAlert().text)
	}
	if h.notifier.lastAlert().duration != endBreakNoticeDuration {
		t.Fatalf("end-break alert duration = %v", h.notifier.lastAlert().duration)
	}
}

func TestSuggestionFiresOnceUntilBreak(t *testing.T) {
	h := newHarness(t, Config{BreakInterval: time.Hour, BreakDuration: 10 * time.Minute})
	h.probe.playlist = "P1"
	h.engine.Start()

	h.tickAfter(time.Hour + time.Second)
	for i := 0; i < 30; i++ {
		h.tickAfter(time.Minute)
	}
	if got := countSuggestions(h.notifier); got != 1 {
		t.Fatalf("suggestion fired %d times without an intervening break", got)
	}

	// A break boundary re-arms the suggestion.
	h.engine.StartBreak()
	h.tickAfter(10*time.Minute + time.Second) // auto end
	h.tickAfter(time.Hour + time.Second)
	if got := countSuggestions(h.notifier); got != 2 {
		t.Fatalf("suggestion count after break cycle = %d, want 2", got)
	}
}

func TestStartBreakIdempotent(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"
	h.engine.Start()

	h.engine.StartBreak()
	firstEnd := h.engine.Snapshot().BreakEndsAt
	taken := h.engine.Snapshot().BreaksTaken

	h.clock.advance(time.Minute)
	h.engine.StartBreak()

	snap := h.engine.Snapshot()
	if !snap.BreakEndsAt.Equal(firstEnd) {
		t.Fatal("second StartBreak rescheduled the break end")
	}
	if snap.BreaksTaken != taken {
		t.Fatal("second StartBreak counted as a new break")
	}
}

func TestStartBreakWithoutSessionIsNoop(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.engine.StartBreak()
	if h.engine.Snapshot().OnBreak {
		t.Fatal("break started without an active session")
	}
}

func TestEndBreakEarly(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"
	h.probe.video = "v1"
	h.engine.Start()
	h.engine.StartBreak()

	h.clock.advance(2 * time.Minute)
	h.engine.EndBreak()

	snap := h.engine.Snapshot()
	if snap.OnBreak {
		t.Fatal("break still active after early end")
	}
	if snap.BreakEndsAt != (time.Time{}) {
		t.Fatal("break-end deadline not cancelled")
	}

	// The stale deadline must not fire a second transition later.
	alerts := len(h.notifier.alerts)
	h.tickAfter(20 * time.Minute)
	for _, a := range h.notifier.alerts[alerts:] {
		if strings.Contains(a.text, "Break time is over") {
			t.Fatal("cancelled break-end fired late")
		}
	}

	// The resume action returns to the last known video.
	endAlert := h.notifier.alerts[alerts-1]
	if endAlert.action == nil {
		t.Fatal("end-break alert missing resume action")
	}
	endAlert.action.Do()
	if len(h.nav.calls) != 1 || h.nav.calls[0] != (navCall{"P1", "v1"}) {
		t.Fatalf("resume navigated to %+v", h.nav.calls)
	}
}

func TestUpdateSettingsResetsAnchor(t *testing.T) {
	h := newHarness(t, Config{BreakInterval: time.Hour, BreakDuration: 10 * time.Minute})
	h.probe.playlist = "P1"
	h.engine.Start()

	// Five minutes before the old interval would fire, switch to a
	// longer one. The anchor resets to now, so nothing fires at the
	// old deadline.
	h.tickAfter(55 * time.Minute)
	h.engine.UpdateBreakSettings(2*time.Hour, 10*time.Minute)

	h.tickAfter(6 * time.Minute)
	if countSuggestions(h.notifier) != 0 {
		t.Fatal("suggestion fired at the old deadline after a settings update")
	}

	// The new interval fires from the reset anchor.
	h.tickAfter(2 * time.Hour)
	if countSuggestions(h.notifier) != 1 {
		t.Fatal("suggestion did not fire under the new interval")
	}
}

func TestUpdateSettingsWhileOnBreakKeepsAnchor(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"
	h.engine.Start()
	h.engine.StartBreak()
	anchor := h.engine.Snapshot().BreakEndsAt

	h.clock.advance(time.Minute)
	h.engine.UpdateBreakSettings(2*time.Hour, 20*time.Minute)

	if !h.engine.Snapshot().BreakEndsAt.Equal(anchor) {
		t.Fatal("settings update rescheduled a running break")
	}
	if !h.engine.Snapshot().OnBreak {
		t.Fatal("settings update ended the running break")
	}
}

func TestSnapshotWhileSuggestionPending(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.playlist = "P1"
	h.engine.Start()

	snap := h.engine.Snapshot()
	if snap.NextBreakAt.IsZero() || snap.BreakSuggested {
		t.Fatal("next break deadline should be reported before the suggestion fires")
	}

	h.tickAfter(3*time.Hour + time.Second)
	snap = h.engine.Snapshot()
	if !snap.BreakSuggested {
		t.Fatal("suggestion should be pending after the interval elapses")
	}
	if !snap.NextBreakAt.IsZero() {
		t.Fatalf("NextBreakAt should be zero while the suggestion is pending, got %v", snap.NextBreakAt)
	}

	h.engine.StartBreak()
	if h.engine.Snapshot().BreakSuggested {
		t.Fatal("starting the break should clear the pending suggestion")
	}
}

func TestSuggestionTextReportsStudyTime(t *testing.T) {
	h := newHarness(t, Config{BreakInterval: 90 * time.Minute, BreakDuration: 15 * time.Minute})
	h.probe.playlist = "P1"
	h.engine.Start()

	h.tickAfter(90*time.Minute + time.Second)

	alert := h.notifier.lastAlert()
	if !strings.Contains(alert.text, "1h 30m") {
		t.Fatalf("suggestion text missing study duration: %q", alert.text)
	}
	if !strings.Contains(alert.action.Label, "15min") {
		t.Fatalf("action label missing break length: %q", alert.action.Label)
	}
}
