package binance

import "encoding/json"

// tickerPriceResponse - GET /api/v3/ticker/price
type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// kline - GET /api/v3/klines
// Binance returns each candle as a positional JSON array:
// [ openTime, open, high, low, close, volume, closeTime, ... ]
type kline []json.RawMessage

const klineCloseIndex = 4

// accountResponse - GET /api/v3/account (signed)
type accountResponse struct {
	AccountType string           `json:"accountType"`
	Balances    []accountBalance `json:"balances"`
}

type accountBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// newOrderResponse - POST /api/v3/order (signed)
type newOrderResponse struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	TransactTime  int64  `json:"transactTime"`
	Status        string `json:"status"`
}

// apiError is Binance's error envelope for non-2xx responses.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// exchangeInfoResponse - GET /api/v3/exchangeInfo
type exchangeInfoResponse struct {
	Symbols []exchangeSymbol `json:"symbols"`
}

type exchangeSymbol struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	QuoteAsset string `json:"quoteAsset"`
}

// miniTickerEvent - websocket <symbol>@miniTicker stream payload
type miniTickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
}

// subscribeRequest - websocket live subscribe frame
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}
