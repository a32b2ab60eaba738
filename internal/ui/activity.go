package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pricewatch/internal/logtail"
)

// handleActivityKey scrolls the activity log.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.activityViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.activityViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.activityViewport, cmd = m.activityViewport.Update(msg)
	return m, cmd
}

// updateActivityViewport re-renders the loaded events, staying pinned to the
// bottom when the user was already there.
func (m *Model) updateActivityViewport() {
	if !m.ready {
		return
	}
	atBottom := m.activityViewport.AtBottom() || m.activityViewport.TotalLineCount() == 0

	m.activityViewport.Width = max(m.width-4, 10)
	m.activityViewport.Height = max(m.contentHeight()-2, 1)
	m.activityViewport.SetContent(m.renderActivityLines(m.activityViewport.Width))

	if atBottom {
		m.activityViewport.GotoBottom()
	}
}

// renderActivity renders the activity view.
func (m Model) renderActivity() string {
	title := "Activity"
	if m.cfg.LogFile != "" {
		title = "Activity · " + truncateMiddle(m.cfg.LogFile, max(m.width/2, 10))
	}
	return m.renderTitledBox(title, m.activityViewport.View(), m.width, m.contentHeight(), true)
}

func (m Model) renderActivityLines(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	switch {
	case m.cfg.LogFile == "":
		return bg.Render("Logging is disabled. Set log_file to see activity here.", styles.MutedText)
	case m.activityErr != nil:
		return bg.Render(fmt.Sprintf("Unable to read log: %v", m.activityErr), styles.DangerText)
	case len(m.activity) == 0:
		return bg.Render("No activity yet", styles.FaintText)
	}

	lines := make([]string, 0, len(m.activity))
	for _, ev := range m.activity {
		lines = append(lines, m.formatEvent(ev, width, bg, styles))
	}
	return strings.Join(lines, "\n")
}

// formatEvent renders "15:04:05 INF message key=value".
func (m Model) formatEvent(ev logtail.Event, width int, bg BgStyle, styles Styles) string {
	levelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.LevelColor(ev.Level)))

	var parts []string
	if !ev.Time.IsZero() {
		parts = append(parts, bg.Render(ev.Time.Local().Format("15:04:05"), styles.FaintText))
	}
	if label := levelLabel(ev); label != "" {
		parts = append(parts, bg.Render(label, levelStyle.Bold(true)))
	}
	parts = append(parts, bg.Render(ev.Message, styles.Text))

	var fields []string
	for _, k := range ev.FieldKeys() {
		fields = append(fields, k+"="+ev.Fields[k])
	}
	if len(fields) > 0 {
		parts = append(parts, bg.Render(truncate(strings.Join(fields, " "), max(width-30, 10)), styles.MutedText))
	}
	return strings.Join(parts, bg.Space())
}

func levelLabel(ev logtail.Event) string {
	if ev.Time.IsZero() && ev.Message == ev.Raw {
		return ""
	}
	label := strings.ToUpper(ev.Level.String())
	if len(label) > 3 {
		label = label[:3]
	}
	return label
}
