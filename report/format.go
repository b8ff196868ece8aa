package report

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers with locale-aware grouping.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter returns a Formatter for a BCP 47 locale tag. Unknown tags fall
// back to English.
func NewFormatter(locale, currency string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if currency == "" {
		currency = "EUR"
	}
	return &Formatter{printer: message.NewPrinter(tag), currency: currency}
}

// Default formats in English with EUR prices.
var Default = NewFormatter("en", "EUR")

// Int formats a count with thousands separators.
func (f *Formatter) Int(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Percent formats a percentage with one decimal.
func (f *Formatter) Percent(v float64) string {
	return f.printer.Sprintf("%.1f%%", v)
}

// Price formats an amount with two decimals and the currency code.
func (f *Formatter) Price(v float64) string {
	return strings.TrimSpace(f.currency + " " + f.printer.Sprintf("%.2f", v))
}

// Index formats a price index with one decimal.
func (f *Formatter) Index(v float64) string {
	return f.printer.Sprintf("%.1f", v)
}
