package entities

// Balance holds user-entered amounts. All fields are non-negative.
type Balance struct {
	ARS  float64 `json:"ars" validate:"gte=0"`
	USD  float64 `json:"usd" validate:"gte=0"`
	USDT float64 `json:"usdt" validate:"gte=0"`
	BTC  float64 `json:"btc" validate:"gte=0"`
}

type BalanceTotal struct {
	Balance  Balance `json:"balance"`
	TotalARS float64 `json:"total_ars"`
	TotalUSD float64 `json:"total_usd"`
	ARSText  string  `json:"total_ars_text"`
	USDText  string  `json:"total_usd_text"`
}

type Brief struct {
	Text string `json:"text"`
	Meta string `json:"meta"`
}

type Conversion struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Direction string  `json:"direction"`
	Rate      float64 `json:"rate"`
	Result    float64 `json:"result"`
	Label     string  `json:"label"`
	Text      string  `json:"text"`
}
