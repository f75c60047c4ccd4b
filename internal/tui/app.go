package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/browser"
	"github.com/sadopc/studyfocus/internal/export"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/watch"
)

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	browser *browser.Browser
	engine  *watch.Engine
	alerts  *alertCenter
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	monitor  monitorModel
	analysis analysisModel
	reports  reportsModel
	settings settingsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, b *browser.Browser, log watch.Logger) App {
	h := help.New()
	h.ShowAll = false

	alerts := newAlertCenter()

	bs, _ := s.BreakSettings()
	cfg := watch.Config{
		BreakInterval: bs.EffectiveInterval(),
		BreakDuration: bs.EffectiveDuration(),
	}

	var probe watch.LocationProbe
	var nav watch.Navigator
	var site onSiteChecker
	if b != nil {
		probe = b
		nav = b
		site = b
	}

	engine := watch.New(probe, alerts, nav, alerts, s, log, cfg)

	// Pick up a session that was running when the program last exited.
	if st, err := s.Load(); err == nil && st.Monitoring && b != nil {
		engine.Resume(st)
	}

	return App{
		store:      s,
		browser:    b,
		engine:     engine,
		alerts:     alerts,
		activeView: viewMonitor,
		monitor:    newMonitorModel(s, engine, site),
		analysis:   newAnalysisModel(b),
		reports:    newReportsModel(s),
		settings:   newSettingsModel(s, engine),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.monitor.Init(),
		a.settings.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.monitor.setSize(a.width, contentHeight)
		a.analysis.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If the settings form is capturing input, delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		// Playlist-change prompt takes y/n ahead of everything else.
		if a.alerts.hasPrompt() {
			switch {
			case key.Matches(msg, keys.Yes):
				a.engine.RespondConfirm(a.alerts.promptID(), true)
				return a, nil
			case key.Matches(msg, keys.No):
				a.engine.RespondConfirm(a.alerts.promptID(), false)
				return a, nil
			}
		}

		// A visible alert action binds enter.
		if key.Matches(msg, keys.Enter) && a.alerts.invokeAction() {
			return a, nil
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewMonitor
			return a, a.monitor.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewAnalysis
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			if a.activeView == viewReports {
				// Reports uses tab to switch chart mode.
				return a.updateActiveView(msg)
			}
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		a.engine.Tick()
		a.alerts.expire(time.Time(msg))
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case monitorStartedMsg:
		a.status = "Monitoring started"
		return a, nil

	case monitorStoppedMsg:
		a.status = "Monitoring stopped"
		if msg.session != nil {
			a.status = "Session saved: " + formatSeconds(msg.session.Duration)
		}
		return a, nil

	case analysisDataMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.analysis, cmd = a.analysis.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.monitor, cmd = a.monitor.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewMonitor:
		a.monitor, cmd = a.monitor.update(msg)
	case viewAnalysis:
		a.analysis, cmd = a.analysis.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewMonitor:
		return a.monitor.loadData()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()
	alertBars := a.alerts.render(a.width - 2)

	var content string
	switch a.activeView {
	case viewMonitor:
		content = a.monitor.view()
	case viewAnalysis:
		content = a.analysis.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	alertHeight := 0
	if alertBars != "" {
		alertHeight = lipgloss.Height(alertBars)
	}
	contentHeight := a.height - headerHeight - footerHeight - alertHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if alertBars != "" {
		parts = append(parts, alertBars)
	}
	parts = append(parts, content, footer)

	out := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if a.alerts.takeBell() {
		out = "\a" + out
	}
	return out
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyfocus")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Session indicator in footer
	sessionInfo := ""
	snap := a.engine.Snapshot()
	if snap.Active {
		elapsed := time.Since(snap.StartedAt)
		sessionInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if snap.OnBreak {
			sessionInfo = warningStyle.Render(" ☕ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(time.Time{}, time.Time{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("studyfocus-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("studyfocus-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
