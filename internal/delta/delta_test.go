package delta

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
)

func id(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func ptr(v float64) *float64 { return &v }

func TestFormat(t *testing.T) {
	cases := []struct {
		name      string
		current   *float64
		previous  *float64
		wantText  string
		wantTrend entities.Trend
	}{
		{name: "up", current: ptr(110), previous: ptr(100), wantText: "110 ▲ 10.00%", wantTrend: entities.TrendUp},
		{name: "down", current: ptr(90), previous: ptr(100), wantText: "90 ▼ 10.00%", wantTrend: entities.TrendDown},
		{name: "flat", current: ptr(100), previous: ptr(100), wantText: "100 • 0.00%", wantTrend: entities.TrendFlat},
		{name: "no previous", current: ptr(100), previous: nil, wantText: "100", wantTrend: entities.TrendNone},
		{name: "zero previous", current: ptr(100), previous: ptr(0), wantText: "100", wantTrend: entities.TrendNone},
		{name: "nan previous", current: ptr(100), previous: ptr(math.NaN()), wantText: "100", wantTrend: entities.TrendNone},
		{name: "no current", current: nil, previous: ptr(100), wantText: Placeholder, wantTrend: entities.TrendNone},
		{name: "nan current", current: ptr(math.NaN()), previous: ptr(100), wantText: Placeholder, wantTrend: entities.TrendNone},
		{name: "rounding", current: ptr(1250), previous: ptr(1200), wantText: "1250 ▲ 4.17%", wantTrend: entities.TrendUp},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Format(c.current, c.previous, id)
			if got.Text != c.wantText {
				t.Errorf("Text = %q; want %q", got.Text, c.wantText)
			}
			if got.Trend != c.wantTrend {
				t.Errorf("Trend = %q; want %q", got.Trend, c.wantTrend)
			}
			if (got.Percent != nil) != (c.wantTrend != entities.TrendNone) {
				t.Errorf("Percent = %v; want set only when a trend exists", got.Percent)
			}
		})
	}
}

func TestPercentText(t *testing.T) {
	if got := PercentText(10); got != "10.00%" {
		t.Errorf("PercentText(10) = %q; want %q", got, "10.00%")
	}
	if got := PercentText(-2.345); got != "2.35%" && got != "2.34%" {
		t.Errorf("PercentText(-2.345) = %q; want absolute value with 2 decimals", got)
	}
}

func TestNumber(t *testing.T) {
	if got := Number(1234567.891, 2); got != "1.234.567,89" {
		t.Errorf("Number = %q; want %q", got, "1.234.567,89")
	}
	if got := ARS(math.NaN()); got != Placeholder {
		t.Errorf("ARS(NaN) = %q; want placeholder", got)
	}
	if got := USD(98765.4); !strings.HasPrefix(got, "US$ ") || !strings.HasSuffix(got, ",40") {
		t.Errorf("USD = %q; want US$ prefix and two decimals", got)
	}
}

func TestBuildBoard_FirstCycleHasNoTrends(t *testing.T) {
	current := &entities.RateSnapshot{
		Quotes: map[entities.Currency]entities.RateQuote{
			entities.UsdBlue: entities.NewQuote(1200, 1250),
		},
		Cross:     map[entities.Currency]float64{entities.MxnArs: 55},
		FetchedAt: time.Unix(1700000000, 0),
	}

	board := BuildBoard(current, nil)

	if len(board.Rows) != len(entities.DirectCurrencies) {
		t.Fatalf("len(Rows) = %d; want %d", len(board.Rows), len(entities.DirectCurrencies))
	}
	for _, r := range board.Rows {
		if r.Buy.Trend != entities.TrendNone || r.Sell.Trend != entities.TrendNone {
			t.Errorf("row %s has a trend on the first cycle", r.Currency)
		}
	}

	oficial, _ := board.Row(entities.UsdOficial)
	if oficial.Sell.Text != Placeholder {
		t.Errorf("missing quote Text = %q; want placeholder", oficial.Sell.Text)
	}

	mxn, _ := board.CrossRow(entities.MxnArs)
	if !strings.HasPrefix(mxn.Text, "1 MXN ≈ $ ") {
		t.Errorf("cross Text = %q; want 1 MXN prefix", mxn.Text)
	}
	pyg, _ := board.CrossRow(entities.PygArs)
	if pyg.Value != nil || pyg.Text != Placeholder {
		t.Errorf("absent cross row = %+v; want nil value and placeholder", pyg)
	}
}

func TestBuildBoard_TrendsAgainstPrevious(t *testing.T) {
	previous := &entities.RateSnapshot{
		Quotes: map[entities.Currency]entities.RateQuote{
			entities.UsdBlue: entities.NewQuote(1200, 1250),
		},
		Crypto: map[string]entities.CryptoPrice{
			entities.Bitcoin: {ARS: ptr(100), USD: ptr(100)},
		},
	}
	current := &entities.RateSnapshot{
		Quotes: map[entities.Currency]entities.RateQuote{
			entities.UsdBlue: entities.NewQuote(1100, 1250),
		},
		Crypto: map[string]entities.CryptoPrice{
			entities.Bitcoin: {ARS: ptr(110), USD: ptr(90)},
		},
		Fallback: []entities.Currency{entities.UsdOficial},
	}

	board := BuildBoard(current, previous)

	blue, _ := board.Row(entities.UsdBlue)
	if blue.Buy.Trend != entities.TrendDown {
		t.Errorf("blue buy trend = %q; want down", blue.Buy.Trend)
	}
	if blue.Sell.Trend != entities.TrendFlat {
		t.Errorf("blue sell trend = %q; want flat", blue.Sell.Trend)
	}

	oficial, _ := board.Row(entities.UsdOficial)
	if !oficial.Fallback {
		t.Error("oficial row should be flagged as fallback")
	}

	if len(board.Crypto) != 1 {
		t.Fatalf("len(Crypto) = %d; want 1", len(board.Crypto))
	}
	if board.Crypto[0].ARS.Trend != entities.TrendUp || board.Crypto[0].USD.Trend != entities.TrendDown {
		t.Errorf("bitcoin trends = %q/%q; want up/down", board.Crypto[0].ARS.Trend, board.Crypto[0].USD.Trend)
	}
}
