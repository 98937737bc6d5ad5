package service

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/pkg/errors"
)

func ptr(v float64) *float64 { return &v }

func testSnapshot() *entities.RateSnapshot {
	return &entities.RateSnapshot{
		Quotes: map[entities.Currency]entities.RateQuote{
			entities.UsdOficial: entities.NewQuote(900, 940),
			entities.UsdBlue:    entities.NewQuote(1200, 1250),
			entities.UsdMep:     entities.NewQuote(1100, 1120),
			entities.Eur:        entities.NewQuote(950, 1000),
		},
		Cross: map[entities.Currency]float64{entities.MxnArs: 50},
		Crypto: map[string]entities.CryptoPrice{
			entities.Bitcoin: {ARS: ptr(2000000), USD: ptr(1000)},
		},
	}
}

func TestConvert(t *testing.T) {
	snapshot := testSnapshot()

	cases := []struct {
		name      string
		amount    float64
		key       string
		direction string
		want      float64
		err       error
	}{
		{name: "ars to blue", amount: 12500, key: "usd_blue", direction: DirectionARSTo, want: 10},
		{name: "blue to ars", amount: 10, key: "usd_blue", direction: DirectionToARS, want: 12500},
		{name: "default direction", amount: 500, key: "mxn", want: 10},
		{name: "ars to euro", amount: 5000, key: "eur", direction: DirectionARSTo, want: 5},
		{name: "euro under eur_oficial", amount: 5, key: "eur_oficial", direction: DirectionToARS, want: 5000},
		{name: "btc to ars", amount: 0.5, key: "btc", direction: DirectionToARS, want: 1000000},
		{name: "zero amount", amount: 0, key: "usd_blue", err: entities.ErrInvalidAmount},
		{name: "nan amount", amount: math.NaN(), key: "usd_blue", err: entities.ErrInvalidAmount},
		{name: "unknown key", amount: 1, key: "gbp", err: entities.ErrUnknownCurrency},
		{name: "rate not loaded", amount: 1, key: "brl", err: entities.ErrRateUnavailable},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Convert(snapshot, c.amount, c.key, c.direction)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Fatalf("err = %v; want %v", err, c.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got.Result-c.want) > 1e-9 {
				t.Errorf("Result = %v; want %v", got.Result, c.want)
			}
		})
	}
}

func TestConvert_Text(t *testing.T) {
	got, err := Convert(testSnapshot(), 12500, "usd_blue", DirectionARSTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "12.500,00 ARS ≈ 10,00 dólar blue"; got.Text != want {
		t.Errorf("Text = %q; want %q", got.Text, want)
	}
}

func TestConvert_AliasReportsCanonicalKey(t *testing.T) {
	got, err := Convert(testSnapshot(), 1000, "eur_oficial", DirectionARSTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Currency != "eur" || got.Label != "euro" {
		t.Errorf("currency/label = %q/%q; want eur/euro", got.Currency, got.Label)
	}
}

func TestTotals(t *testing.T) {
	b := entities.Balance{ARS: 2500, USD: 10, USDT: 5, BTC: 0.5}

	got := Totals(b, testSnapshot())
	if got.TotalARS != 2500+15*1250+1000000 {
		t.Errorf("TotalARS = %v", got.TotalARS)
	}
	// USDT counts at par without a tether price.
	if got.TotalUSD != 2+10+5+500 {
		t.Errorf("TotalUSD = %v", got.TotalUSD)
	}
	if !strings.HasPrefix(got.ARSText, "$ ") || !strings.HasPrefix(got.USDText, "US$ ") {
		t.Errorf("texts = %q / %q", got.ARSText, got.USDText)
	}
}

func TestTotals_WithoutRates(t *testing.T) {
	b := entities.Balance{ARS: 2500, USD: 10, USDT: 5, BTC: 0.5}

	got := Totals(b, nil)
	if got.TotalARS != 2500 || got.TotalUSD != 15 {
		t.Errorf("totals = %v / %v; want 2500 / 15", got.TotalARS, got.TotalUSD)
	}
}

func TestBuildBrief(t *testing.T) {
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	cases := []struct {
		name    string
		blue    float64
		oficial float64
		level   string
		pct     string
	}{
		{name: "contained", blue: 1000, oficial: 940, level: "brecha contenida", pct: "(6.4%)"},
		{name: "moderate", blue: 1250, oficial: 940, level: "brecha moderada", pct: "(33.0%)"},
		{name: "high", blue: 1600, oficial: 940, level: "brecha alta", pct: "(70.2%)"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snapshot := testSnapshot()
			snapshot.Quotes[entities.UsdBlue] = entities.NewQuote(c.blue-50, c.blue)
			snapshot.Quotes[entities.UsdOficial] = entities.NewQuote(c.oficial-40, c.oficial)

			brief, ok := BuildBrief(snapshot, now)
			if !ok {
				t.Fatal("brief not ready")
			}
			if !strings.Contains(brief.Text, c.level) || !strings.Contains(brief.Text, c.pct) {
				t.Errorf("Text = %q; want %s %s", brief.Text, c.level, c.pct)
			}
			for _, part := range []string{"MEP: $", "Euro: $", "BTC: US$ "} {
				if !strings.Contains(brief.Text, part) {
					t.Errorf("Text = %q; missing %q", brief.Text, part)
				}
			}
			if brief.Meta != "Actualizado: 2/1/2025, 12:04:05" {
				t.Errorf("Meta = %q", brief.Meta)
			}
		})
	}
}

func TestBuildBrief_Waiting(t *testing.T) {
	snapshot := testSnapshot()
	delete(snapshot.Quotes, entities.UsdOficial)

	brief, ok := BuildBrief(snapshot, time.Now())
	if ok || brief.Text != briefWaiting || brief.Meta != "" {
		t.Errorf("brief = %+v, %v; want waiting message", brief, ok)
	}
}

func TestParseAggFunc(t *testing.T) {
	for option, want := range map[string]AggFunc{"": Last, "last": Last, "avg": Avg, "min": Min, "max": Max, "x": Last} {
		if got := ParseAggFunc(option); got != want {
			t.Errorf("ParseAggFunc(%q) = %v; want %v", option, got, want)
		}
	}
}
