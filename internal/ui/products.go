package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pricewatch/internal/pricewatch"
	"github.com/five82/pricewatch/internal/search"
)

// selectedProduct returns the highlighted product, or nil when the list is
// empty.
func (m Model) selectedProduct() *pricewatch.Product {
	products := m.snapshot.Products
	if m.selectedRow < 0 || m.selectedRow >= len(products) {
		return nil
	}
	return &products[m.selectedRow]
}

// contentHeight is the height left for the main panes.
func (m Model) contentHeight() int {
	return max(m.height-chromeHeight, 3)
}

// paneWidths splits the screen between the list and the detail pane.
// Extra wide terminals give the detail pane 70%.
func (m Model) paneWidths() (list, detail int) {
	if m.width >= LayoutExtraWideWidth {
		list = m.width * 30 / 100
	} else {
		list = m.width * 40 / 100
	}
	return list, m.width - list
}

// handleResultsKey moves the selection or scrolls the detail pane,
// depending on which pane has focus.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focusedPane == paneDetail {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	count := len(m.snapshot.Products)
	if count == 0 {
		return m, nil
	}

	prev := m.selectedRow
	half := max(m.contentHeight()/2, 1)
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+half, count-1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-half, 0)
	}

	if m.selectedRow != prev {
		m.updateDetailViewport()
		m.detailViewport.GotoTop()
	}
	return m, nil
}

// renderResults renders the split list and detail layout.
func (m Model) renderResults() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if len(m.snapshot.Products) == 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(emptyMessage(m.snapshot)))
	}

	listWidth, detailWidth := m.paneWidths()

	listFocused := m.focusedPane == paneList
	listBg := m.theme.SurfaceAlt
	if listFocused {
		listBg = m.theme.FocusBg
	}
	list := m.renderProductList(listWidth-2, height-2, listBg)
	listPane := m.renderTitledBox("Products", list, listWidth, height, listFocused)

	detailPane := m.renderTitledBox("Details", m.detailViewport.View(), detailWidth, height, m.focusedPane == paneDetail)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func emptyMessage(s search.State) string {
	switch {
	case s.Loading:
		return "Searching..."
	case s.HasError():
		return s.Error
	case s.Phase == search.PhaseSucceeded && s.Products == nil:
		return "Search started. Press r to fetch products"
	case s.Phase == search.PhaseSucceeded:
		return "No products found"
	default:
		return "Press / to search"
	}
}

// renderProductList renders the visible window of product rows around the
// selection.
func (m Model) renderProductList(width, height int, bgColor string) string {
	products := m.snapshot.Products
	if height <= 0 {
		return ""
	}

	start := 0
	if m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := min(start+height, len(products))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatProductRow(products[i], width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatProductRow formats one product as "Title · $12.99 · site".
// Selected rows use SelectionText throughout for contrast.
func (m Model) formatProductRow(p pricewatch.Product, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Text))
	priceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted))
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		titleStyle, priceStyle, metaStyle = sel, sel.Bold(true), sel
	}

	price := "n/a"
	site := ""
	if latest, ok := p.LatestPrice(); ok {
		price = formatPrice(m.cfg.PriceSymbol, latest.Price)
		site = latest.Site
	}

	dot := bg.Render(" · ", metaStyle)
	tail := bg.Render(price, priceStyle)
	tailLen := len([]rune(price))
	if site != "" {
		tail += dot + bg.Render(site, metaStyle)
		tailLen += 3 + len([]rune(site))
	}

	titleWidth := width - tailLen - 4
	title := p.DisplayTitle()
	if titleWidth > 0 && len([]rune(title)) > titleWidth {
		title = truncate(title, titleWidth)
	}

	return bg.Space() + bg.Render(title, titleStyle) + dot + tail
}

// renderTitledBox renders content in a box with the title set into the
// top border: ┌─── Title ───┐. Focused boxes use the focus colors.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	titleLen := len([]rune(title))
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}

	return top + "\n" + strings.Join(lines, "\n") + "\n" + bottom
}
