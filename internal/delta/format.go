package delta

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-AR"))

// Number formats v with exactly digits fraction digits using Argentine
// grouping ("1.234.567,89").
func Number(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return printer.Sprintf("%v", number.Decimal(v, number.Scale(digits)))
}

func Plain(v float64) string { return Number(v, 2) }

func ARS(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return "$ " + Number(v, 2)
}

func USD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return "US$ " + Number(v, 2)
}
