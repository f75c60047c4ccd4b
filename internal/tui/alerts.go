package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/watch"
)

// activeAlert is the single visible alert slot.
type activeAlert struct {
	handle    string
	kind      watch.Kind
	text      string
	action    *watch.Action
	expiresAt time.Time // zero = sticky
}

// activePrompt is the single visible yes/no prompt slot.
type activePrompt struct {
	id     string
	prompt string
}

// alertCenter collects alerts and prompts raised by the monitoring
// engine and renders them inside the TUI. It also carries the bell
// flag so a chime becomes a terminal bell on the next frame.
type alertCenter struct {
	alert      *activeAlert
	prompt     *activePrompt
	nextHandle int
	bell       bool
}

func newAlertCenter() *alertCenter {
	return &alertCenter{}
}

func (c *alertCenter) Notify(kind watch.Kind, text string, duration time.Duration, action *watch.Action) string {
	c.nextHandle++
	handle := fmt.Sprintf("alert-%d", c.nextHandle)

	a := &activeAlert{
		handle: handle,
		kind:   kind,
		text:   text,
		action: action,
	}
	if duration > 0 {
		a.expiresAt = time.Now().Add(duration)
	}
	c.alert = a
	return handle
}

func (c *alertCenter) Confirm(id, prompt string) {
	c.prompt = &activePrompt{id: id, prompt: prompt}
}

func (c *alertCenter) Dismiss(handle string) {
	if c.alert != nil && c.alert.handle == handle {
		c.alert = nil
	}
	if c.prompt != nil && c.prompt.id == handle {
		c.prompt = nil
	}
}

func (c *alertCenter) Play() error {
	c.bell = true
	return nil
}

// expire drops a timed alert whose deadline passed.
func (c *alertCenter) expire(now time.Time) {
	if c.alert != nil && !c.alert.expiresAt.IsZero() && now.After(c.alert.expiresAt) {
		c.alert = nil
	}
}

// takeBell reports and clears the pending bell flag.
func (c *alertCenter) takeBell() bool {
	b := c.bell
	c.bell = false
	return b
}

// invokeAction runs the visible alert's action and clears the slot.
func (c *alertCenter) invokeAction() bool {
	if c.alert == nil || c.alert.action == nil {
		return false
	}
	do := c.alert.action.Do
	c.alert = nil
	if do != nil {
		do()
	}
	return true
}

func (c *alertCenter) hasPrompt() bool {
	return c.prompt != nil
}

func (c *alertCenter) promptID() string {
	if c.prompt == nil {
		return ""
	}
	return c.prompt.id
}

// render draws the alert and prompt bars, or "" when both slots are
// empty.
func (c *alertCenter) render(width int) string {
	var bars []string

	if c.alert != nil {
		style := alertInfoStyle
		switch c.alert.kind {
		case watch.KindWarning:
			style = alertWarningStyle
		case watch.KindDanger:
			style = alertDangerStyle
		}

		text := c.alert.text
		if c.alert.action != nil {
			text += mutedStyle.Render("  [enter: " + c.alert.action.Label + "]")
		}
		bars = append(bars, style.Width(width).Render(text))
	}

	if c.prompt != nil {
		text := c.prompt.prompt + mutedStyle.Render("  [y: yes  n: no]")
		bars = append(bars, alertWarningStyle.Width(width).Render(text))
	}

	if len(bars) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, bars...)
}
