package vozparse

import "math"

// group accumulates one spoken number.
//
// total holds groups already closed by a multiplier; current is the
// additive group under construction. A bare multiplier counts as one of
// itself, so "mil quinientos" is 1500.
type group struct {
	total    int64
	current  int64
	size     int
	literal  bool
	closed   bool
	overflow bool
}

func (g *group) add(v int64) {
	g.size++
	if g.overflow {
		return
	}
	if !IsMultiplier(v) {
		g.current, g.overflow = addChecked(g.current, v)
		return
	}

	if g.current == 0 {
		g.current = 1
	}
	var scaled int64
	if scaled, g.overflow = mulChecked(g.current, v); g.overflow {
		return
	}
	g.total, g.overflow = addChecked(g.total, scaled)
	g.current = 0
}

func (g *group) value() (int64, bool) {
	if g.overflow {
		return 0, false
	}
	v, overflow := addChecked(g.total, g.current)
	return v, !overflow
}

// accepts reports whether t continues the number being built.
//
// A digit literal is a complete number on its own: it always starts a new
// number and only a multiplier word may follow it. Multiplier words
// always continue the number. An additive word
// continues the number only when it fits below the lowest place already
// spoken: "ciento cincuenta" is one number, "ocho cuarenta" is two.
// "cien" is the standalone form of a hundred, so only a multiplier may
// follow it: "cien cinco mil" is 100 and 5000.
func (g *group) accepts(t Token) bool {
	if g.size == 0 {
		return true
	}
	if t.Literal() {
		return false
	}
	if IsMultiplier(t.Value) {
		return true
	}
	if g.literal || g.closed {
		return false
	}
	ref := g.current
	if ref == 0 {
		ref = g.total
	}
	return t.Value < lowestPlace(ref)
}

func (g *group) push(t Token) {
	g.add(t.Value)
	g.literal = t.Literal()
	g.closed = t.Text == "cien"
}

// lowestPlace returns the smallest power of ten that is a non-zero digit
// of n, e.g. 2000 -> 1000, 150 -> 10. It returns 0 for n <= 0.
func lowestPlace(n int64) int64 {
	if n <= 0 {
		return 0
	}
	place := int64(1)
	for place <= math.MaxInt64/10 && n%(place*10) == 0 {
		place *= 10
	}
	return place
}

// ResolveGroup folds the values of one spoken number left to right:
// additive values sum into the current group, a multiplier scales the
// current group (1 when empty) and adds it to the total.
//
//	[2 1000 500]  -> 2500
//	[1000 500]    -> 1500
//	[100 50]      -> 150
//
// It reports false when the result does not fit in an int64.
func ResolveGroup(values []int64) (int64, bool) {
	var g group
	for _, v := range values {
		g.add(v)
	}
	return g.value()
}

// Segments splits the numeric runs of tokens into the values of
// individual spoken numbers. Text tokens always end a run; inside a run
// a new number starts where a value cannot continue the previous one.
func Segments(tokens []Token) [][]int64 {
	var (
		out [][]int64
		cur []int64
		g   group
	)

	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
		g = group{}
	}

	for _, t := range tokens {
		if !t.Numeric {
			flush()
			continue
		}
		if !g.accepts(t) {
			flush()
		}
		g.push(t)
		cur = append(cur, t.Value)
	}
	flush()
	return out
}

// Aggregate resolves merged tokens into the list of spoken numbers. It
// reports false if any number overflows int64.
func Aggregate(tokens []Token) ([]int64, bool) {
	return resolve(Segments(tokens), 0)
}

// resolve folds the first limit segments, or all of them when limit is
// zero. Segments past the limit are not resolved and cannot overflow.
func resolve(segments [][]int64, limit int) ([]int64, bool) {
	if limit > 0 && len(segments) > limit {
		segments = segments[:limit]
	}
	numbers := make([]int64, 0, len(segments))
	for _, seg := range segments {
		v, ok := ResolveGroup(seg)
		if !ok {
			return nil, false
		}
		numbers = append(numbers, v)
	}
	return numbers, true
}

func addChecked(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, true
	}
	return s, false
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, true
	}
	return p, false
}
