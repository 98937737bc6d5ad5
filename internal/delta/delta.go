// Package delta turns successive rate snapshots into display values carrying
// a trend and the percentage change against the previous refresh.
package delta

import (
	"fmt"
	"math"

	"github.com/langowen/cotizaya/internal/entities"
)

// Placeholder is shown when there is no value to display.
const Placeholder = "–"

const (
	glyphUp   = "▲"
	glyphDown = "▼"
	glyphFlat = "•"
)

// Formatter renders a number for display.
type Formatter func(float64) string

// Format renders current with its change against previous. A nil or
// non-finite current yields the placeholder; a missing or zero previous
// yields the bare formatted value without a trend.
func Format(current, previous *float64, format Formatter) entities.Display {
	if current == nil || !isFinite(*current) {
		return entities.Display{Text: Placeholder, Trend: entities.TrendNone}
	}

	base := format(*current)

	pct, ok := percentChange(*current, previous)
	if !ok {
		return entities.Display{Text: base, Trend: entities.TrendNone}
	}

	trend, glyph := entities.TrendFlat, glyphFlat
	switch {
	case pct > 0:
		trend, glyph = entities.TrendUp, glyphUp
	case pct < 0:
		trend, glyph = entities.TrendDown, glyphDown
	}

	return entities.Display{
		Text:    fmt.Sprintf("%s %s %s", base, glyph, PercentText(pct)),
		Trend:   trend,
		Percent: &pct,
	}
}

// PercentText renders the absolute percentage with two decimals, e.g. "10.00%".
func PercentText(pct float64) string {
	return fmt.Sprintf("%.2f%%", math.Abs(pct))
}

func percentChange(current float64, previous *float64) (float64, bool) {
	if previous == nil || !isFinite(*previous) || *previous == 0 {
		return 0, false
	}
	return (current - *previous) / *previous * 100, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
