package delta

import (
	"strings"

	"github.com/langowen/cotizaya/internal/entities"
)

// BuildBoard formats current against previous. previous is nil on the first
// cycle, in which case every trend is none.
func BuildBoard(current, previous *entities.RateSnapshot) entities.Board {
	board := entities.Board{
		Rows:      make([]entities.BoardRow, 0, len(entities.DirectCurrencies)),
		Cross:     make([]entities.CrossRow, 0, len(entities.CrossCurrencies)),
		Crypto:    make([]entities.CryptoRow, 0, len(entities.Coins)),
		Snapshot:  *current,
		UpdatedAt: current.FetchedAt,
	}

	for _, c := range entities.DirectCurrencies {
		format := formatterFor(c)
		cur, _ := current.Quote(c)
		prev, _ := previous.Quote(c)

		board.Rows = append(board.Rows, entities.BoardRow{
			Currency: c,
			Buy:      Format(cur.Buy, prev.Buy, format),
			Sell:     Format(cur.Sell, prev.Sell, format),
			Fallback: current.UsedFallback(c),
		})
	}

	for _, c := range entities.CrossCurrencies {
		v := current.CrossRate(c)
		text := Placeholder
		if v != nil && *v > 0 {
			text = "1 " + crossSymbol(c) + " ≈ " + ARS(*v)
		}
		board.Cross = append(board.Cross, entities.CrossRow{Currency: c, Value: v, Text: text})
	}

	for _, coin := range entities.Coins {
		cur, ok := current.Coin(coin.ID)
		if !ok {
			continue
		}
		prev, _ := previous.Coin(coin.ID)

		board.Crypto = append(board.Crypto, entities.CryptoRow{
			ID:     coin.ID,
			Name:   coin.Name,
			Symbol: coin.Symbol,
			ARS:    Format(cur.ARS, prev.ARS, ARS),
			USD:    Format(cur.USD, prev.USD, USD),
		})
	}

	return board
}

func formatterFor(c entities.Currency) Formatter {
	switch c {
	case entities.Brl, entities.Uyu:
		return ARS
	default:
		return Plain
	}
}

func crossSymbol(c entities.Currency) string {
	code, _, _ := strings.Cut(string(c), "_")
	return strings.ToUpper(code)
}
