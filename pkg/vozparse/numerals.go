package vozparse

// Multiplier values. A multiplier scales the group collected before it.
const (
	Thousand int64 = 1_000
	Million  int64 = 1_000_000
)

// numerals maps diacritic-free lowercase numeral words to their value.
var numerals = map[string]int64{
	"un": 1, "uno": 1, "una": 1, "unos": 1, "unas": 1,
	"dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9,

	"diez": 10, "once": 11, "doce": 12, "trece": 13, "catorce": 14, "quince": 15,
	"dieciseis": 16, "diecisiete": 17, "dieciocho": 18, "diecinueve": 19,

	"veinte": 20, "veintiuno": 21, "veintidos": 22, "veintitres": 23,
	"veinticuatro": 24, "veinticinco": 25,

	"treinta": 30, "cuarenta": 40, "cincuenta": 50, "sesenta": 60,
	"setenta": 70, "ochenta": 80, "noventa": 90,

	"cien": 100, "ciento": 100, "doscientos": 200, "trescientos": 300,
	"cuatrocientos": 400, "quinientos": 500, "seiscientos": 600,
	"setecientos": 700, "ochocientos": 800, "novecientos": 900,

	"mil": Thousand, "millon": Million, "millones": Million,
}

// Lookup returns the value of a normalized numeral word.
func Lookup(word string) (int64, bool) {
	v, ok := numerals[word]
	return v, ok
}

// Numerals returns a copy of the numeral table.
func Numerals() map[string]int64 {
	out := make(map[string]int64, len(numerals))
	for k, v := range numerals {
		out[k] = v
	}
	return out
}

// IsMultiplier reports whether v scales the preceding group.
func IsMultiplier(v int64) bool {
	return v == Thousand || v == Million
}
