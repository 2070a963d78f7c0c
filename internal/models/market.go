package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeFill is a single executed trade from an exchange trade history.
type TradeFill struct {
	ID       string          `json:"id"`
	Pair     string          `json:"symbol"` // full trading pair, e.g. "BTCUSDT"
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"qty"`
	QuoteQty decimal.Decimal `json:"quote_qty"`
	Time     time.Time       `json:"time"`
	IsBuyer  bool            `json:"is_buyer"`
}

// Unified converts an exchange fill to the canonical event shape. The user's
// side of the fill decides BUY vs SELL.
func (f *TradeFill) Unified() UnifiedTransaction {
	kind := TxSell
	if f.IsBuyer {
		kind = TxBuy
	}
	return UnifiedTransaction{
		Symbol:     BaseAsset(f.Pair),
		Kind:       kind,
		Amount:     f.Quantity,
		Price:      f.Price,
		Timestamp:  f.Time,
		Source:     SourceExchange,
		OriginalID: f.ID,
	}
}

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Coin is a market overview entry (CoinGecko markets endpoint).
type Coin struct {
	ID                 string    `json:"id"`
	Symbol             string    `json:"symbol"`
	Name               string    `json:"name"`
	CurrentPrice       float64   `json:"current_price"`
	MarketCap          int64     `json:"market_cap"`
	PriceChangePct24h  float64   `json:"price_change_percentage_24h"`
	Image              string    `json:"image"`
	Sparkline          []float64 `json:"sparkline"`
}

// ChartPoint is one (timestamp, value) sample of a market chart series.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// OHLCPoint is one (timestamp, O, H, L, C) sample of an OHLC series.
type OHLCPoint struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}
