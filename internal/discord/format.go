package discord

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatGlyphs renders a glyph amount with thousands separators, e.g.
// "1,234,567 glyphs".
func formatGlyphs(amount int64) string {
	return printer.Sprintf("%d glyphs", amount)
}

// formatAmount renders a bare number with thousands separators.
func formatAmount(amount int64) string {
	return printer.Sprintf("%d", amount)
}
