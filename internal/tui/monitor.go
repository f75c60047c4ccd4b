package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/browser"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/watch"
)

// onSiteChecker reports whether the watched page is on the monitored
// site. Satisfied by *browser.Browser; nil when no browser is
// attached (headless runs, tests).
type onSiteChecker interface {
	EnsureOnSite() error
}

type monitorModel struct {
	store  *store.Store
	engine *watch.Engine
	site   onSiteChecker
	width  int
	height int

	// Title of the playlist under watch, filled in by the analysis
	// view when it runs.
	playlistTitle string

	todayTotal int64
	recent     []store.StudySession
}

func newMonitorModel(s *store.Store, e *watch.Engine, site onSiteChecker) monitorModel {
	return monitorModel{
		store:  s,
		engine: e,
		site:   site,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *monitorModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type monitorDataMsg struct {
	todayTotal int64
	recent     []store.StudySession
}

func (m monitorModel) loadData() tea.Cmd {
	return func() tea.Msg {
		total, _ := m.store.TodayTotal()

		sessions, _ := m.store.ListSessions(time.Time{}, time.Time{})
		if len(sessions) > 5 {
			sessions = sessions[:5]
		}

		return monitorDataMsg{
			todayTotal: total,
			recent:     sessions,
		}
	}
}

func (m monitorModel) update(msg tea.Msg) (monitorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case monitorDataMsg:
		m.todayTotal = msg.todayTotal
		m.recent = msg.recent
		return m, nil

	case analysisDataMsg:
		if msg.analysis != nil {
			m.playlistTitle = msg.analysis.Title
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			return m.startMonitoring()

		case key.Matches(msg, keys.Stop):
			return m.stopMonitoring()

		case key.Matches(msg, keys.Break):
			return m.toggleBreak()

		case key.Matches(msg, keys.Return):
			if m.engine.Active() {
				m.engine.ReturnToApproved()
			}
			return m, nil
		}
	}
	return m, nil
}

func (m monitorModel) startMonitoring() (monitorModel, tea.Cmd) {
	if m.engine.Active() {
		return m, nil
	}
	if m.site == nil {
		return m, func() tea.Msg {
			return statusMsg{text: "No browser attached; cannot start monitoring", isError: true}
		}
	}
	if err := m.site.EnsureOnSite(); err != nil {
		text := fmt.Sprintf("Cannot start monitoring: %v", err)
		if errors.Is(err, browser.ErrNotOnTargetSite) {
			text = "Navigate to youtube.com before starting monitoring"
		}
		return m, func() tea.Msg {
			return statusMsg{text: text, isError: true}
		}
	}
	m.engine.Start()
	return m, func() tea.Msg { return monitorStartedMsg{} }
}

func (m monitorModel) stopMonitoring() (monitorModel, tea.Cmd) {
	if !m.engine.Active() {
		return m, nil
	}
	snap := m.engine.Snapshot()
	m.engine.Stop()

	session, err := m.store.RecordSession(snap.StartedAt, time.Now(), snap.ApprovedPlaylistID, m.playlistTitle, snap.BreaksTaken)
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error recording session: %v", err), isError: true}
		}
	}
	return m, tea.Batch(
		m.loadData(),
		func() tea.Msg { return monitorStoppedMsg{session: session} },
	)
}

func (m monitorModel) toggleBreak() (monitorModel, tea.Cmd) {
	if !m.engine.Active() {
		return m, nil
	}
	if m.engine.Snapshot().OnBreak {
		m.engine.EndBreak()
	} else {
		m.engine.StartBreak()
	}
	return m, nil
}

func (m monitorModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}

	contentWidth := m.width - 4

	clockPanel := m.renderClockPanel(contentWidth)
	summaryPanel := m.renderSummaryPanel(contentWidth)
	recentPanel := m.renderRecentPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, clockPanel, summaryPanel, recentPanel)
}

func (m monitorModel) renderClockPanel(w int) string {
	snap := m.engine.Snapshot()

	if !snap.Active {
		timeDisplay := clockStyle.Width(w - 6).Render("00:00:00")
		indicator := mutedStyle.Render("■  NOT MONITORING")
		hint := mutedStyle.Render("Press s to start monitoring")

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			hint,
		)
		return panelStyle.Width(w).Render(content)
	}

	now := time.Now()
	elapsed := now.Sub(snap.StartedAt)

	var timeDisplay, indicator string
	if snap.OnBreak {
		remaining := snap.BreakEndsAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		timeDisplay = clockBreakStyle.Width(w - 6).Render(formatDuration(remaining))
		indicator = warningStyle.Render("☕ ON BREAK")
	} else {
		timeDisplay = clockRunningStyle.Width(w - 6).Render(formatDuration(elapsed))
		indicator = successStyle.Render("●  MONITORING")
	}

	playlistLine := ""
	if snap.ApprovedPlaylistID != "" {
		label := snap.ApprovedPlaylistID
		if m.playlistTitle != "" {
			label = m.playlistTitle
		}
		playlistLine = highlightStyle.Render(label)
	} else {
		playlistLine = mutedStyle.Render("No playlist detected yet")
	}

	nextBreakLine := ""
	if snap.BreakSuggested {
		nextBreakLine = warningStyle.Render("Break suggestion pending")
	} else if !snap.OnBreak && !snap.NextBreakAt.IsZero() {
		until := snap.NextBreakAt.Sub(now)
		if until < 0 {
			until = 0
		}
		nextBreakLine = mutedStyle.Render("Next break suggestion in " + watch.FormatDuration(until))
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		playlistLine,
		nextBreakLine,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (m monitorModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(m.todayTotal))
	header := fmt.Sprintf("%s  %s", title, total)

	snap := m.engine.Snapshot()
	breaksLine := mutedStyle.Render(fmt.Sprintf("  Breaks this session: %d", snap.BreaksTaken))

	content := lipgloss.JoinVertical(lipgloss.Left, header, breaksLine)
	return panelStyle.Width(w).Render(content)
}

func (m monitorModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(m.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, s := range m.recent {
		name := s.PlaylistTitle
		if name == "" {
			name = s.PlaylistID
		}
		if name == "" {
			name = "?"
		}
		startStr := s.StartedAt.Local().Format("Jan 02 15:04")
		dur := formatSeconds(s.Duration)
		row := fmt.Sprintf("  %s  %-24s %s  (%d breaks)", startStr, name, dur, s.BreaksTaken)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
