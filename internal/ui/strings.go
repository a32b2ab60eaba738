package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// truncate shortens a string to the given rune limit, adding an ellipsis if
// needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle keeps both ends of a long value, which suits URLs.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 5 {
		return string(runes[:limit])
	}
	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// formatPrice renders a nullable price with the currency symbol.
func formatPrice(symbol string, price decimal.NullDecimal) string {
	if !price.Valid {
		return "n/a"
	}
	return symbol + price.Decimal.StringFixed(2)
}

// formatChange renders the move from first to last as "+$1.50 (+12.0%)".
func formatChange(symbol string, first, last decimal.Decimal) string {
	delta := last.Sub(first)
	sign := "+"
	if delta.IsNegative() {
		sign = "-"
	}
	out := sign + symbol + delta.Abs().StringFixed(2)
	if !first.IsZero() {
		pct := delta.Div(first).Mul(decimal.NewFromInt(100))
		out += fmt.Sprintf(" (%s%s%%)", signOf(pct), pct.Abs().StringFixed(1))
	}
	return out
}

func signOf(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-"
	}
	return "+"
}

// formatClock formats a timestamp with a relative suffix.
func formatClock(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	out := ts.Local().Format("15:04:05")
	since := now.Sub(ts)
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// formatRemaining renders a short "4m" or "2h" style duration.
func formatRemaining(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
