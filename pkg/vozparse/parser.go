package vozparse

import (
	"github.com/vozinv/vozinv/pkg/core/logging"
)

// Parser runs the parse pipeline. The zero value is ready to use; set
// Logger to trace stage decisions at debug level.
type Parser struct {
	Logger *logging.Logger
}

// recordNumbers is how many spoken numbers a record uses: quantity and
// unit price. Later numbers are ignored.
const recordNumbers = 2

// Parse converts input into a Record or Command, or nil when fewer than
// two numbers can be resolved. It is safe for concurrent use.
func Parse(input string) Result {
	return Parser{}.Parse(input)
}

// Parse runs the pipeline on input.
func (p Parser) Parse(input string) Result {
	return p.run(input, nil)
}

// run executes every stage and, when tr is non-nil, records each one.
func (p Parser) run(input string, tr *Trace) Result {
	normalized := Normalize(input)
	if tr != nil {
		tr.Normalized = normalized
	}

	if kind, ok := DetectCommand(normalized); ok {
		p.debug("command detected", "command", kind.String(), "text", normalized)
		return Command{Kind: kind, RawText: input}
	}

	tokens := Tokenize(normalized)
	merged := MergeCompounds(tokens)
	segments := Segments(merged)
	numbers, ok := resolve(segments, recordNumbers)
	if tr != nil {
		tr.Tokens = tokens
		tr.Merged = merged
		tr.Segments = segments
		tr.Numbers = numbers
		tr.Overflow = !ok
	}
	if !ok {
		p.debug("numeral overflow", "text", normalized)
		return nil
	}

	if len(numbers) < recordNumbers {
		p.debug("not enough numbers", "text", normalized, "numbers", numbers)
		return nil
	}

	rec, ok := NewRecord(numbers[0], numbers[1], input)
	if !ok {
		if tr != nil {
			tr.Overflow = true
		}
		p.debug("subtotal overflow", "quantity", numbers[0], "unit_price", numbers[1])
		return nil
	}

	p.debug("record parsed", "quantity", rec.Quantity, "unit_price", rec.UnitPrice, "subtotal", rec.Subtotal)
	return rec
}

func (p Parser) debug(msg string, keysAndValues ...interface{}) {
	if p.Logger != nil {
		p.Logger.Debug(msg, keysAndValues...)
	}
}
