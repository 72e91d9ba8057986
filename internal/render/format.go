package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NumberFormatter renders numbers with the thousands grouping of a locale
type NumberFormatter struct {
	printer *message.Printer
}

// NewNumberFormatter builds a formatter for a BCP 47 tag, English if the tag does not parse.
func NewNumberFormatter(locale string) *NumberFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &NumberFormatter{printer: message.NewPrinter(tag)}
}

// Format groups thousands and keeps at most three fraction digits.
func (f *NumberFormatter) Format(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// PercentTick labels a [0,100] axis tick.
func PercentTick(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64) + "%"
}

func formatThreshold(threshold float64) string {
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}
