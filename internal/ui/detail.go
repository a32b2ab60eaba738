package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pricewatch/internal/pricewatch"
)

// updateDetailViewport resizes the detail viewport and reloads it with the
// selected product.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	_, detailWidth := m.paneWidths()
	width := max(detailWidth-4, 10)
	height := max(m.contentHeight()-2, 1)

	m.detailViewport.Width = width
	m.detailViewport.Height = height

	bgColor := m.theme.SurfaceAlt
	if m.focusedPane == paneDetail {
		bgColor = m.theme.FocusBg
	}

	p := m.selectedProduct()
	if p == nil {
		m.detailViewport.SetContent(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Render("Select a product"))
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent(*p, width, bgColor))
}

// renderDetailContent renders the full product card: title, link, image,
// last update and the price history in recorded order.
func (m Model) renderDetailContent(p pricewatch.Product, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var b strings.Builder

	title := p.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Text)).
		Background(lipgloss.Color(bgColor)).
		Bold(true).
		Width(width).
		Render(title))
	b.WriteString("\n\n")

	row := func(label, value string, valueStyle lipgloss.Style) {
		b.WriteString(bg.Render(padRight(label, 9), styles.FaintText))
		b.WriteString(bg.Render(value, valueStyle))
		b.WriteString("\n")
	}

	linkStyle := styles.InfoText
	if p.Link() == pricewatch.LinkPlaceholder {
		linkStyle = styles.FaintText
	}
	row("Link", truncateMiddle(p.Link(), width-9), linkStyle)
	if p.HasImage() {
		row("Image", truncateMiddle(p.ImageURL, width-9), styles.MutedText)
	}
	if ts := p.ParsedUpdatedAt(); !ts.IsZero() {
		row("Updated", ts.Local().Format("2006-01-02 15:04"), styles.MutedText)
	} else if p.UpdatedAt != "" {
		row("Updated", p.UpdatedAt, styles.MutedText)
	}

	if latest, ok := p.LatestPrice(); ok {
		row("Latest", formatPrice(m.cfg.PriceSymbol, latest.Price), styles.AccentText.Bold(true))
	}
	if change, style, ok := m.priceChange(p, styles); ok {
		row("Change", change, style)
	}

	b.WriteString("\n")
	b.WriteString(bg.Render("PRICE HISTORY", styles.MutedText))
	b.WriteString("\n")

	if len(p.Prices) == 0 {
		b.WriteString(bg.Render("No prices recorded", styles.FaintText))
		b.WriteString("\n")
		return b.String()
	}

	for _, pp := range p.Prices {
		when := pp.RecordedAt
		if ts := pp.ParsedRecordedAt(); !ts.IsZero() {
			when = ts.Local().Format("2006-01-02 15:04")
		}
		priceStyle := styles.Text
		if !pp.HasPrice() {
			priceStyle = styles.FaintText
		}
		b.WriteString(bg.Render(padRight(when, 17), styles.FaintText))
		b.WriteString(bg.Render(padRight(formatPrice(m.cfg.PriceSymbol, pp.Price), 12), priceStyle))
		b.WriteString(bg.Render(truncate(pp.Site, max(width-29, 4)), styles.MutedText))
		b.WriteString("\n")
	}

	return b.String()
}

// priceChange compares the first and last recorded prices. Points without a
// price are ignored.
func (m Model) priceChange(p pricewatch.Product, styles Styles) (string, lipgloss.Style, bool) {
	var priced []pricewatch.PricePoint
	for _, pp := range p.Prices {
		if pp.HasPrice() {
			priced = append(priced, pp)
		}
	}
	if len(priced) < 2 {
		return "", lipgloss.Style{}, false
	}
	first := priced[0].Price.Decimal
	last := priced[len(priced)-1].Price.Decimal

	style := styles.MutedText
	switch last.Cmp(first) {
	case -1:
		style = styles.Text.Foreground(lipgloss.Color(m.theme.PriceDown))
	case 1:
		style = styles.Text.Foreground(lipgloss.Color(m.theme.PriceUp))
	}
	return formatChange(m.cfg.PriceSymbol, first, last), style, true
}
