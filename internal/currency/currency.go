// Package currency renders peso amounts the way the counting screens show them.
package currency

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
)

const (
	// DefaultLocale is Colombian Spanish
	DefaultLocale = "es-CO"
	// DefaultSymbol is the peso sign
	DefaultSymbol = "$"
)

// Formatter formats whole peso amounts without decimals
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// New creates a formatter for the given BCP 47 locale and symbol
func New(locale, symbol string) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, mdwerror.Wrap(err, "locale inválido").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("currency.New").
			WithDetail("locale", locale)
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}, nil
}

var defaultFormatter = &Formatter{
	printer: message.NewPrinter(language.MustParse(DefaultLocale)),
	symbol:  DefaultSymbol,
}

// Format renders amount with the es-CO formatter: 20000 -> "$ 20.000"
func Format(amount int64) string {
	return defaultFormatter.Format(amount)
}

// Format renders amount as "<symbol> <grouped digits>", with a leading
// "-" for negative amounts
func (f *Formatter) Format(amount int64) string {
	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
	}
	b.WriteString(f.symbol)
	b.WriteByte(' ')
	b.WriteString(f.digits(magnitude(amount)))
	return b.String()
}

// digits groups n with the locale printer. Locales that leave short
// numbers ungrouped fall back to dot grouping.
func (f *Formatter) digits(n uint64) string {
	s := f.printer.Sprintf("%d", n)
	if n >= 1000 && !strings.ContainsAny(s, ".,\u00a0\u202f") {
		return Group(strconv.FormatUint(n, 10), ".")
	}
	return s
}

// Group inserts sep every three digits from the right
func Group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func magnitude(amount int64) uint64 {
	if amount >= 0 {
		return uint64(amount)
	}
	return uint64(-(amount + 1)) + 1
}
