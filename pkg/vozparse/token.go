package vozparse

import (
	"strconv"
	"strings"
)

// Token is one classified word of a normalized utterance.
type Token struct {
	Value   int64  `json:"value,omitempty"`
	Text    string `json:"text"`
	Numeric bool   `json:"numeric"`
}

// Literal reports whether the token was written as digits.
func (t Token) Literal() bool {
	return t.Numeric && isDigits(t.Text)
}

func (t Token) String() string {
	if t.Numeric {
		return t.Text + "=" + strconv.FormatInt(t.Value, 10)
	}
	return t.Text
}

// Tokenize splits normalized text on whitespace and classifies each word
// as a digit literal, a numeral word or plain text.
func Tokenize(normalized string) []Token {
	fields := strings.Fields(normalized)
	tokens := make([]Token, 0, len(fields))

	for _, f := range fields {
		if isDigits(f) {
			// digit runs too long for int64 stay text
			if v, err := strconv.ParseInt(f, 10, 64); err == nil {
				tokens = append(tokens, Token{Value: v, Text: f, Numeric: true})
				continue
			}
		}
		if v, ok := Lookup(f); ok {
			tokens = append(tokens, Token{Value: v, Text: f, Numeric: true})
			continue
		}
		tokens = append(tokens, Token{Text: f})
	}
	return tokens
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MergeCompounds folds "<tens> y <unit>" into one numeric token, so
// "cuarenta y dos" becomes 42. Tens are values in [20,100), units are
// below 10.
func MergeCompounds(tokens []Token) []Token {
	merged := make([]Token, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		cur := tokens[i]
		if i+2 < len(tokens) && isTens(cur) && tokens[i+1].Text == "y" && isUnit(tokens[i+2]) {
			unit := tokens[i+2]
			merged = append(merged, Token{
				Value:   cur.Value + unit.Value,
				Text:    cur.Text + " y " + unit.Text,
				Numeric: true,
			})
			i += 2
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

func isTens(t Token) bool {
	return t.Numeric && t.Value >= 20 && t.Value < 100
}

func isUnit(t Token) bool {
	return t.Numeric && t.Value < 10
}
