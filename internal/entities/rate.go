package entities

import "time"

type Currency string

const (
	UsdOficial Currency = "usd_oficial"
	UsdBlue    Currency = "usd_blue"
	UsdMep     Currency = "usd_mep"
	Eur        Currency = "eur"
	Brl        Currency = "brl"
	Uyu        Currency = "uyu"

	// Cross-rate only: ARS per one unit, derived through USD.
	MxnArs Currency = "mxn_ars"
	PygArs Currency = "pyg_ars"
)

// DirectCurrencies are fetched as two-sided quotes, in display order.
var DirectCurrencies = []Currency{UsdOficial, UsdBlue, UsdMep, Eur, Brl, Uyu}

// CrossCurrencies are derived from two USD-denominated quotes.
var CrossCurrencies = []Currency{MxnArs, PygArs}

func (c Currency) Valid() bool {
	for _, d := range DirectCurrencies {
		if c == d {
			return true
		}
	}
	for _, x := range CrossCurrencies {
		if c == x {
			return true
		}
	}
	return false
}

func (c Currency) IsCross() bool {
	return c == MxnArs || c == PygArs
}

// RateQuote is one currency's two-sided quote. A nil side means the source did
// not provide a usable (finite, positive) value.
type RateQuote struct {
	Buy  *float64 `json:"buy"`
	Sell *float64 `json:"sell"`
}

func NewQuote(buy, sell float64) RateQuote {
	return RateQuote{Buy: &buy, Sell: &sell}
}

func (q RateQuote) Empty() bool {
	return q.Buy == nil && q.Sell == nil
}

// CryptoPrice is a coin quoted in ARS and USD.
type CryptoPrice struct {
	ARS *float64 `json:"ars"`
	USD *float64 `json:"usd"`
}

// RateSnapshot is the result of one refresh cycle. It is never mutated after
// the cycle that built it returns.
type RateSnapshot struct {
	Quotes    map[Currency]RateQuote `json:"quotes"`
	Cross     map[Currency]float64   `json:"cross"`
	Crypto    map[string]CryptoPrice `json:"crypto"`
	Fallback  []Currency             `json:"fallback,omitempty"`
	FetchedAt time.Time              `json:"fetched_at"`
}

func (s *RateSnapshot) Quote(c Currency) (RateQuote, bool) {
	if s == nil {
		return RateQuote{}, false
	}
	q, ok := s.Quotes[c]
	return q, ok
}

// CrossRate returns the derived value for c, nil when absent.
func (s *RateSnapshot) CrossRate(c Currency) *float64 {
	if s == nil {
		return nil
	}
	v, ok := s.Cross[c]
	if !ok {
		return nil
	}
	return &v
}

// Sell returns the sell side for a direct currency or the value of a cross rate.
func (s *RateSnapshot) Sell(c Currency) *float64 {
	if c.IsCross() {
		return s.CrossRate(c)
	}
	q, ok := s.Quote(c)
	if !ok {
		return nil
	}
	return q.Sell
}

func (s *RateSnapshot) Coin(id string) (CryptoPrice, bool) {
	if s == nil {
		return CryptoPrice{}, false
	}
	p, ok := s.Crypto[id]
	return p, ok
}

func (s *RateSnapshot) UsedFallback(c Currency) bool {
	if s == nil {
		return false
	}
	for _, f := range s.Fallback {
		if f == c {
			return true
		}
	}
	return false
}

// HistoryPoint is one stored quote for a currency.
type HistoryPoint struct {
	Currency  Currency  `json:"currency"`
	Buy       *float64  `json:"buy"`
	Sell      *float64  `json:"sell"`
	Timestamp time.Time `json:"timestamp"`
}

type Coin struct {
	ID     string
	Name   string
	Symbol string
}

const (
	Bitcoin  = "bitcoin"
	Ethereum = "ethereum"
	Tether   = "tether"
)

var Coins = []Coin{
	{ID: Bitcoin, Name: "Bitcoin", Symbol: "BTC"},
	{ID: Ethereum, Name: "Ethereum", Symbol: "ETH"},
	{ID: Tether, Name: "Tether", Symbol: "USDT"},
}

// SourceQuote is what a quote endpoint returned. Fix is the single fixed rate
// some endpoints publish instead of, or next to, buy/sell.
type SourceQuote struct {
	RateQuote
	Fix *float64
}

// FixOrSell prefers the fixed rate and falls back to the sell side.
func (q SourceQuote) FixOrSell() *float64 {
	if q.Fix != nil {
		return q.Fix
	}
	return q.Sell
}
