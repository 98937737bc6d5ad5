package entities

import "time"

type Trend string

const (
	TrendNone Trend = ""
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Display is a formatted value with its change against the previous cycle.
type Display struct {
	Text    string   `json:"text"`
	Trend   Trend    `json:"trend,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
}

type BoardRow struct {
	Currency Currency `json:"currency"`
	Buy      Display  `json:"buy"`
	Sell     Display  `json:"sell"`
	Fallback bool     `json:"fallback,omitempty"`
}

type CrossRow struct {
	Currency Currency `json:"currency"`
	Value    *float64 `json:"value"`
	Text     string   `json:"text"`
}

type CryptoRow struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	ARS    Display `json:"ars"`
	USD    Display `json:"usd"`
}

// Board is what the read side serves: the snapshot plus its formatted rows.
type Board struct {
	Rows      []BoardRow   `json:"rows"`
	Cross     []CrossRow   `json:"cross"`
	Crypto    []CryptoRow  `json:"crypto"`
	Snapshot  RateSnapshot `json:"snapshot"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RateView is one currency as served by the read side. Exactly one of Quote
// and Cross is set.
type RateView struct {
	Currency  Currency  `json:"currency"`
	Quote     *BoardRow `json:"quote,omitempty"`
	Cross     *CrossRow `json:"cross,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Board) Row(c Currency) (BoardRow, bool) {
	for _, r := range b.Rows {
		if r.Currency == c {
			return r, true
		}
	}
	return BoardRow{}, false
}

func (b *Board) CrossRow(c Currency) (CrossRow, bool) {
	for _, r := range b.Cross {
		if r.Currency == c {
			return r, true
		}
	}
	return CrossRow{}, false
}
