package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/analyze"
	"github.com/sadopc/studyfocus/internal/browser"
)

type analysisModel struct {
	browser *browser.Browser
	width   int
	height  int

	analysis *analyze.Analysis
	errText  string
	loading  bool
}

func newAnalysisModel(b *browser.Browser) analysisModel {
	return analysisModel{browser: b}
}

func (a *analysisModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a analysisModel) refresh() tea.Cmd {
	if a.browser == nil {
		return func() tea.Msg {
			return analysisDataMsg{err: fmt.Errorf("no browser attached")}
		}
	}
	b := a.browser
	return func() tea.Msg {
		info, err := b.PlaylistInfo()
		if err != nil {
			return analysisDataMsg{err: err}
		}
		result := analyze.Score(info)
		return analysisDataMsg{analysis: &result}
	}
}

func (a analysisModel) update(msg tea.Msg) (analysisModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisDataMsg:
		a.loading = false
		if msg.err != nil {
			a.errText = msg.err.Error()
			return a, nil
		}
		a.errText = ""
		a.analysis = msg.analysis
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Analyze), key.Matches(msg, keys.Enter):
			a.loading = true
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a analysisModel) view() string {
	w := a.width - 4

	title := titleStyle.Render("Playlist Analysis")
	hint := mutedStyle.Render("Press a to analyze the current playlist")

	if a.loading {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("Analyzing...")),
		)
	}

	if a.errText != "" {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", errorStyle.Render(a.errText), "", hint),
		)
	}

	if a.analysis == nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("No analysis yet"), "", hint),
		)
	}

	r := a.analysis

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, highlightStyle.Render(r.Title))
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d videos", r.VideoCount)))
	rows = append(rows, "")
	rows = append(rows, a.renderScoreBar(w-8))
	rows = append(rows, "")

	recStyle := mutedStyle
	switch r.Recommendation.Type {
	case analyze.RecommendPositive:
		recStyle = successStyle
	case analyze.RecommendNeutral:
		recStyle = warningStyle
	case analyze.RecommendWarning:
		recStyle = errorStyle
	}
	rows = append(rows, recStyle.Render(r.Recommendation.Message))
	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a analysisModel) renderScoreBar(w int) string {
	r := a.analysis
	if w < 10 {
		w = 10
	}

	filled := int(r.EducationalScore / 100 * float64(w))
	if filled > w {
		filled = w
	}

	barStyle := errorStyle
	if r.EducationalScore >= 60 {
		barStyle = successStyle
	} else if r.EducationalScore >= 40 {
		barStyle = warningStyle
	}

	bar := barStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", w-filled))

	label := fmt.Sprintf("Educational score: %.0f/100", r.EducationalScore)
	if r.IsEducational {
		label += successStyle.Render("  ✓ educational")
	}

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(label), bar)
}
