package ui

import (
	"fmt"
	"strings"
)

// renderHeader renders the status bar: loading and error state, result
// count, the active query and the session badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("pricewatch", styles.Logo)}

	s := m.snapshot
	switch {
	case s.Loading:
		parts = append(parts, bg.Render(m.spinner.View(), styles.AccentText)+bg.Space()+
			bg.Render("Loading...", styles.WarningText.Bold(true)))
	case s.HasError():
		maxErr := 80
		if compact {
			maxErr = 40
		}
		parts = append(parts, bg.Render("ERROR", styles.DangerText)+bg.Space()+
			bg.Render(truncate(s.Error, maxErr), styles.DangerText))
	}

	parts = append(parts,
		bg.Render("Results:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(s.Products)), styles.Text),
	)

	if q := strings.TrimSpace(s.Query); q != "" {
		limit := 40
		if compact {
			limit = 20
		}
		parts = append(parts, bg.Render("Query:", styles.MutedText)+bg.Space()+
			bg.Render(truncate(q, limit), styles.InfoText))
	}

	if ts := formatClock(s.LastUpdated, m.now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if badge := m.sessionBadge(styles, bg, compact); badge != "" {
		parts = append(parts, badge)
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// sessionBadge shows who the token belongs to and flags an expiring or
// expired token.
func (m Model) sessionBadge(styles Styles, bg BgStyle, compact bool) string {
	if m.session == nil || m.session.Token() == "" {
		return bg.Render("anonymous", styles.FaintText)
	}
	claims, ok := m.session.Claims()
	if !ok {
		return bg.Render("token", styles.MutedText)
	}

	label := claims.Subject
	if label == "" {
		label = "token"
	}
	if !compact {
		label = truncate(label, 24)
	} else {
		label = truncate(label, 12)
	}

	now := m.now()
	switch {
	case claims.Expired(now):
		return bg.Render(label, styles.MutedText) + bg.Space() + bg.Render("expired", styles.DangerText)
	case claims.ExpiresWithin(now, ExpiryWarning):
		return bg.Render(label, styles.MutedText) + bg.Space() +
			bg.Render("exp "+formatRemaining(claims.ExpiresAt.Sub(now)), styles.WarningText)
	default:
		return bg.Render(label, styles.SuccessText)
	}
}

// renderCommandBar renders the command hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewActivity:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"q", "Results"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"r", "Fetch"},
			{"c", "Clear"},
			{"j/k", "Navigate"},
			{"a", "Activity"},
			{"Tab", "Focus"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderSearchBar renders the query input line.
func (m Model) renderSearchBar() string {
	bg := NewBgStyle(m.theme.Background)
	styles := m.theme.Styles().WithBackground(m.theme.Background)

	var content string
	if m.input.Focused() {
		content = m.input.View()
	} else {
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			content = bg.Render("/ Search products...", styles.FaintText)
		} else {
			content = bg.Render("/", styles.AccentText) + bg.Space() + bg.Render(value, styles.MutedText)
		}
	}
	return bg.FillLine(" "+content, m.width)
}
