package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/watch"
)

type settingsModel struct {
	store  *store.Store
	engine *watch.Engine
	width  int
	height int

	current    store.BreakSettings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	interval       *string
	duration       *string
	customInterval *string
	customDuration *string
}

func newSettingsModel(s *store.Store, e *watch.Engine) settingsModel {
	iv, dv, ci, cd := "", "", "", ""
	return settingsModel{
		store:          s,
		engine:         e,
		interval:       &iv,
		duration:       &dv,
		customInterval: &ci,
		customDuration: &cd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings store.BreakSettings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		bs, _ := s.store.BreakSettings()
		return settingsDataMsg{settings: bs}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.current = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.interval = s.current.Interval
	*s.duration = s.current.Duration
	*s.customInterval = strconv.Itoa(s.current.CustomInterval)
	*s.customDuration = strconv.Itoa(s.current.CustomDuration)
	if *s.interval == "" {
		*s.interval = "180"
	}
	if *s.duration == "" {
		*s.duration = "15"
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Suggest a break after").
				Options(
					huh.NewOption("30 minutes", "30"),
					huh.NewOption("1 hour", "60"),
					huh.NewOption("2 hours", "120"),
					huh.NewOption("3 hours", "180"),
					huh.NewOption("Custom", "custom"),
				).Value(s.interval),
			huh.NewInput().Title("Custom interval (min)").Value(s.customInterval),
			huh.NewSelect[string]().Title("Break length").
				Options(
					huh.NewOption("5 minutes", "5"),
					huh.NewOption("10 minutes", "10"),
					huh.NewOption("15 minutes", "15"),
					huh.NewOption("30 minutes", "30"),
					huh.NewOption("Custom", "custom"),
				).Value(s.duration),
			huh.NewInput().Title("Custom duration (min)").Value(s.customDuration),
		).Title("Breaks"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Batch(s.saveSettings(), s.refresh())
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	bs := store.BreakSettings{
		Interval:       *s.interval,
		Duration:       *s.duration,
		CustomInterval: atoiOrZero(*s.customInterval),
		CustomDuration: atoiOrZero(*s.customDuration),
	}

	if err := s.store.SaveBreakSettings(bs); err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error saving settings: %v", err), isError: true}
		}
	}

	s.engine.UpdateBreakSettings(bs.EffectiveInterval(), bs.EffectiveDuration())

	return func() tea.Msg {
		return statusMsg{text: "Settings saved"}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	intervalLabel := lipgloss.NewStyle().Width(24).Render("Break interval")
	durationLabel := lipgloss.NewStyle().Width(24).Render("Break duration")

	rows := []string{
		title,
		"",
		fmt.Sprintf("  %s %s", intervalLabel, highlightStyle.Render(formatMinutes(s.current.EffectiveInterval()))),
		fmt.Sprintf("  %s %s", durationLabel, highlightStyle.Render(formatMinutes(s.current.EffectiveDuration()))),
		"",
		hint,
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%d min", int(d.Minutes()))
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
