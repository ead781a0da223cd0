package vozparse

import (
	"testing"
	"unicode/utf8"
)

// FuzzParse checks the invariants every result must satisfy.
func FuzzParse(f *testing.F) {
	f.Add("")
	f.Add("ocho cuarenta y dos mil")
	f.Add("tres dos mil quinientos cincuenta")
	f.Add("borrar el último")
	f.Add("5 20.000")
	f.Add("hola mundo")
	f.Add("noventa y nueve millones novecientos mil 9223372036854775807")
	f.Add("y y y mil mil")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			return
		}

		switch r := Parse(input).(type) {
		case nil:
		case Record:
			if r.Subtotal != r.Quantity*r.UnitPrice {
				t.Errorf("Parse(%q): subtotal %d != %d * %d", input, r.Subtotal, r.Quantity, r.UnitPrice)
			}
			if r.RawText != input || r.ProductIdentifier != input {
				t.Errorf("Parse(%q): raw text not preserved", input)
			}
		case Command:
			if _, ok := DetectCommand(Normalize(input)); !ok {
				t.Errorf("Parse(%q) returned a command without a keyword", input)
			}
		default:
			t.Fatalf("Parse(%q) returned unexpected type %T", input, r)
		}
	})
}

// FuzzNormalize checks that normalization is idempotent.
func FuzzNormalize(f *testing.F) {
	f.Add("Más")
	f.Add("  ÉSTE, 1.500 ")
	f.Add("é́")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			return
		}
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(%q) = %q, Normalize again = %q", input, once, twice)
		}
	})
}
