package fetcher

import "github.com/langowen/cotizaya/internal/entities"

// Defaults is the static table used when a currency could be neither fetched
// nor derived.
type Defaults struct {
	Quotes map[entities.Currency]entities.RateQuote
	Cross  map[entities.Currency]float64
}

// StaticDefaults has no entry for PYG: with no source its cross rate stays absent.
func StaticDefaults() Defaults {
	return Defaults{
		Quotes: map[entities.Currency]entities.RateQuote{
			entities.UsdOficial: entities.NewQuote(900, 940),
			entities.UsdBlue:    entities.NewQuote(1200, 1250),
			entities.UsdMep:     entities.NewQuote(1100, 1120),
			entities.Eur:        entities.NewQuote(950, 1000),
			entities.Brl:        entities.NewQuote(180, 190),
			entities.Uyu:        entities.NewQuote(25, 28),
		},
		Cross: map[entities.Currency]float64{
			entities.MxnArs: 55,
		},
	}
}
