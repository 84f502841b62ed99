package marketdata

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLCV candle.
type Bar struct {
	Timestamp    string           `json:"timestamp"`
	Open         decimal.Decimal  `json:"open"`
	High         decimal.Decimal  `json:"high"`
	Low          decimal.Decimal  `json:"low"`
	Close        decimal.Decimal  `json:"close"`
	Volume       decimal.Decimal  `json:"volume"`
	OpenInterest *decimal.Decimal `json:"oi,omitempty"`
}

func encodeBars(symbol string, bars []Bar) (string, error) {
	if bars == nil {
		bars = []Bar{}
	}
	payload := struct {
		Symbol string `json:"symbol"`
		Bars   []Bar  `json:"bars"`
	}{Symbol: symbol, Bars: bars}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode bars: %w", err)
	}
	return string(data), nil
}
