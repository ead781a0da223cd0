package vozparse

// Trace records every pipeline stage for one input.
type Trace struct {
	Input      string    `json:"input"`
	Normalized string    `json:"normalized"`
	Tokens     []Token   `json:"tokens,omitempty"`
	Merged     []Token   `json:"merged,omitempty"`
	Segments   [][]int64 `json:"segments,omitempty"`
	Numbers    []int64   `json:"numbers,omitempty"`
	Overflow   bool      `json:"overflow,omitempty"`
	Kind       string    `json:"kind"`
	Result     Result    `json:"result"`
}

// Explain parses input and returns the intermediate output of each stage.
// Command inputs stop after normalization, as in Parse.
func Explain(input string) Trace {
	return Parser{}.Explain(input)
}

// Explain is Parse with a stage trace.
func (p Parser) Explain(input string) Trace {
	tr := Trace{Input: input}
	tr.Result = p.run(input, &tr)
	tr.Kind = Kind(tr.Result)
	return tr
}
