package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/langowen/cotizaya/internal/delta"
	"github.com/langowen/cotizaya/internal/entities"
)

const (
	DirectionARSTo = "ars-to"
	DirectionToARS = "to-ars"
)

type converterRate struct {
	label string
	rate  func(s *entities.RateSnapshot) *float64
}

func sellOf(c entities.Currency) func(s *entities.RateSnapshot) *float64 {
	return func(s *entities.RateSnapshot) *float64 { return s.Sell(c) }
}

// converterRates maps converter keys to ARS per one unit (sell side).
var converterRates = map[string]converterRate{
	"usd_oficial": {label: "dólar oficial", rate: sellOf(entities.UsdOficial)},
	"usd_blue":    {label: "dólar blue", rate: sellOf(entities.UsdBlue)},
	"usd_mep":     {label: "dólar MEP", rate: sellOf(entities.UsdMep)},
	"eur":         {label: "euro", rate: sellOf(entities.Eur)},
	"brl":         {label: "real (BRL)", rate: sellOf(entities.Brl)},
	"uyu":         {label: "peso uruguayo (UYU)", rate: sellOf(entities.Uyu)},
	"mxn":         {label: "peso mexicano (MXN)", rate: sellOf(entities.MxnArs)},
	"btc": {label: "Bitcoin (BTC)", rate: func(s *entities.RateSnapshot) *float64 {
		coin, _ := s.Coin(entities.Bitcoin)
		return coin.ARS
	}},
}

// converterAliases maps alternate converter keys to their canonical key.
var converterAliases = map[string]string{
	"eur_oficial": "eur",
}

// Convert converts amount between ARS and the currency behind key. ars-to
// divides by the rate, to-ars multiplies. The result carries the canonical key.
func Convert(snapshot *entities.RateSnapshot, amount float64, key, direction string) (*entities.Conversion, error) {
	if canonical, ok := converterAliases[key]; ok {
		key = canonical
	}

	entry, ok := converterRates[key]
	if !ok {
		return nil, entities.ErrUnknownCurrency
	}
	if !(amount > 0) || !isFinite(amount) {
		return nil, entities.ErrInvalidAmount
	}

	rate := positive(entry.rate(snapshot))
	if rate == nil {
		return nil, entities.ErrRateUnavailable
	}

	conv := &entities.Conversion{
		Amount:    amount,
		Currency:  key,
		Direction: direction,
		Rate:      *rate,
		Label:     entry.label,
	}

	if direction == DirectionToARS {
		conv.Result = amount * *rate
		conv.Text = fmt.Sprintf("%s %s ≈ %s ARS", delta.Plain(amount), entry.label, delta.Plain(conv.Result))
	} else {
		conv.Direction = DirectionARSTo
		conv.Result = amount / *rate
		conv.Text = fmt.Sprintf("%s ARS ≈ %s %s", delta.Plain(amount), delta.Plain(conv.Result), entry.label)
	}

	return conv, nil
}

// Totals values a balance in ARS and USD. A missing blue rate or coin price
// drops its terms; USDT counts at par when its USD price is missing.
func Totals(b entities.Balance, snapshot *entities.RateSnapshot) entities.BalanceTotal {
	blue := positive(snapshot.Sell(entities.UsdBlue))
	btc, _ := snapshot.Coin(entities.Bitcoin)
	usdt, _ := snapshot.Coin(entities.Tether)

	totalARS := b.ARS
	if blue != nil {
		totalARS += (b.USD + b.USDT) * *blue
	}
	if p := positive(btc.ARS); p != nil {
		totalARS += b.BTC * *p
	}

	totalUSD := b.USD
	if blue != nil {
		totalUSD += b.ARS / *blue
	}
	usdtRate := 1.0
	if p := positive(usdt.USD); p != nil {
		usdtRate = *p
	}
	totalUSD += b.USDT * usdtRate
	if p := positive(btc.USD); p != nil {
		totalUSD += b.BTC * *p
	}

	return entities.BalanceTotal{
		Balance:  b,
		TotalARS: totalARS,
		TotalUSD: totalUSD,
		ARSText:  delta.ARS(totalARS),
		USDText:  delta.USD(totalUSD),
	}
}

const briefWaiting = "Resumen: esperando cotizaciones para armar el informe de hoy."

var argentina = time.FixedZone("ART", -3*60*60)

// BuildBrief summarizes the gap between blue and oficial plus a few reference
// prices. It reports false when either dollar is missing.
func BuildBrief(snapshot *entities.RateSnapshot, now time.Time) (entities.Brief, bool) {
	blue := positive(snapshot.Sell(entities.UsdBlue))
	oficial := positive(snapshot.Sell(entities.UsdOficial))
	if blue == nil || oficial == nil {
		return entities.Brief{Text: briefWaiting}, false
	}

	gap := (*blue - *oficial) / *oficial * 100

	level := "brecha contenida"
	switch {
	case gap > 60:
		level = "brecha alta"
	case gap > 30:
		level = "brecha moderada"
	}

	parts := []string{fmt.Sprintf("Blue: $%s | Oficial: $%s → %s (%.1f%%).",
		delta.Plain(*blue), delta.Plain(*oficial), level, gap)}

	if mep := positive(snapshot.Sell(entities.UsdMep)); mep != nil {
		parts = append(parts, fmt.Sprintf("MEP: $%s.", delta.Plain(*mep)))
	}
	if eur := positive(snapshot.Sell(entities.Eur)); eur != nil {
		parts = append(parts, fmt.Sprintf("Euro: $%s.", delta.Plain(*eur)))
	}
	if btc, _ := snapshot.Coin(entities.Bitcoin); positive(btc.USD) != nil {
		parts = append(parts, fmt.Sprintf("BTC: %s.", delta.USD(*btc.USD)))
	}

	return entities.Brief{
		Text: strings.Join(parts, " "),
		Meta: "Actualizado: " + now.In(argentina).Format("2/1/2006, 15:04:05"),
	}, true
}

func positive(v *float64) *float64 {
	if v == nil || !isFinite(*v) || *v <= 0 {
		return nil
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
