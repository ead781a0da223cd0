package vozparse

// Result is the outcome of a successful parse: either a Record or a
// Command. A nil Result means the utterance was not understood.
type Result interface {
	isResult()
}

// Record is one inventory line: quantity times unit price.
type Record struct {
	Quantity          int64  `json:"quantity" yaml:"quantity"`
	UnitPrice         int64  `json:"unit_price" yaml:"unit_price"`
	RawText           string `json:"raw_text" yaml:"raw_text"`
	ProductIdentifier string `json:"product_identifier" yaml:"product_identifier"`
	Subtotal          int64  `json:"subtotal" yaml:"subtotal"`
}

// Command is an editing instruction spoken instead of a record.
type Command struct {
	Kind    CommandKind `json:"command"`
	RawText string      `json:"raw_text"`
}

func (Record) isResult()  {}
func (Command) isResult() {}

// NewRecord builds a record from quantity and unit price. The product
// identifier is the raw text itself.
func NewRecord(quantity, unitPrice int64, rawText string) (Record, bool) {
	subtotal, overflow := mulChecked(quantity, unitPrice)
	if overflow {
		return Record{}, false
	}
	return Record{
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		RawText:           rawText,
		ProductIdentifier: rawText,
		Subtotal:          subtotal,
	}, true
}

// Kind names the variant of r: "RECORD", "COMMAND" or "" for nil.
func Kind(r Result) string {
	switch r.(type) {
	case Record:
		return "RECORD"
	case Command:
		return "COMMAND"
	default:
		return ""
	}
}
