// Package numeric parses loosely formatted amounts such as "50.000",
// "1.234,56" or "$ 1715.0394" as they come from quote APIs and user input.
package numeric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse converts s into a float. The boolean is false when s holds no usable
// number; callers treat that as "no value".
//
// A comma always marks the decimal point (periods are then grouping). Without
// a comma, periods are grouping only when every group after the first has
// exactly three digits, so "50.000" is fifty thousand but "1715.0394" is a
// decimal.
func Parse(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return math.NaN(), false
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, "."):
		if groupedThousands(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return finite(s)
}

// Positive parses s and keeps the result only when it is greater than zero.
func Positive(s string) *float64 {
	v, ok := Parse(s)
	if !ok || v <= 0 {
		return nil
	}
	return &v
}

func groupedThousands(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !digits(p) {
			return false
		}
	}
	return true
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func finite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

// Flexible decodes a JSON field that may be a number, a numeric string in any
// format Parse accepts, or null/absent.
type Flexible struct {
	Value float64
	Valid bool
}

func (f *Flexible) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Flexible{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, ok := Parse(s)
		*f = Flexible{Value: v, Valid: ok}
		return nil
	}

	v, ok := finite(string(data))
	*f = Flexible{Value: v, Valid: ok}
	return nil
}

func (f Flexible) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// Positive returns the value when it is valid and greater than zero.
func (f Flexible) Positive() *float64 {
	if !f.Valid || f.Value <= 0 {
		return nil
	}
	v := f.Value
	return &v
}

// OrZero returns the value, or zero when it is invalid or negative.
func (f Flexible) OrZero() float64 {
	if !f.Valid || f.Value < 0 {
		return 0
	}
	return f.Value
}
