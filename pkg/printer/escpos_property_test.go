package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

func keepPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x20 && r <= 0x7E {
			return r
		}
		return -1
	}, s)
}

// Property: FilterASCII drops exactly the runes outside 0x20-0x7E
func TestFilterASCIIProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("only non-printable runes are dropped", prop.ForAll(
		func(s string) bool {
			return string(FilterASCII(s)) == keepPrintable(s)
		},
		gen.AnyString(),
	))

	properties.Property("ascii text around a non-ascii rune survives unchanged", prop.ForAll(
		func(before, after string) bool {
			doc := &receipt.Document{Lines: []receipt.Line{{Text: before + "é" + after}}}
			return bytes.Contains(Encode(doc, EncoderProfile{}), []byte(before+after+"\n"))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
