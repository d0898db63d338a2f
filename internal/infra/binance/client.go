package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Binance spot REST weight limit is 6000/min; stay far below it.
const requestsPerSecond = 10

// Client is the Binance spot REST API client (boundary layer). It implements
// domain.MarketDataSource, domain.AccountSource and domain.OrderExecutor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var (
	_ domain.MarketDataSource = (*Client)(nil)
	_ domain.AccountSource    = (*Client)(nil)
	_ domain.OrderExecutor    = (*Client)(nil)
)

// NewClient creates a new Binance API client.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.API.Binance.RestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer:  NewSigner(cfg.API.Binance.APIKey, cfg.API.Binance.APISecret),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:  slog.Default().With("module", "binance_client"),
	}
}

// CurrentPrice returns the latest trade price for a symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp tickerPriceResponse
	if err := c.doPublic(ctx, "/api/v3/ticker/price", params, &resp); err != nil {
		return decimal.Zero, domain.NewExchangeError("ticker", symbol, err)
	}

	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return decimal.Zero, domain.NewFatalExchangeError("ticker", symbol,
			fmt.Errorf("unparsable price %q: %w", resp.Price, err))
	}
	return price, nil
}

// RecentCloses returns the closing prices of the last limit candles,
// ordered oldest first, most recent last.
func (c *Client) RecentCloses(ctx context.Context, symbol, interval string, limit int) ([]decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	var klines []kline
	if err := c.doPublic(ctx, "/api/v3/klines", params, &klines); err != nil {
		return nil, domain.NewExchangeError("klines", symbol, err)
	}

	closes := make([]decimal.Decimal, 0, len(klines))
	for _, k := range klines {
		if len(k) <= klineCloseIndex {
			return nil, domain.NewFatalExchangeError("klines", symbol,
				fmt.Errorf("short kline row: %d fields", len(k)))
		}
		var closeStr string
		if err := json.Unmarshal(k[klineCloseIndex], &closeStr); err != nil {
			return nil, domain.NewFatalExchangeError("klines", symbol, err)
		}
		price, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, domain.NewFatalExchangeError("klines", symbol,
				fmt.Errorf("unparsable close %q: %w", closeStr, err))
		}
		closes = append(closes, price)
	}
	return closes, nil
}

// Balances returns the current free/locked balances per asset.
func (c *Client) Balances(ctx context.Context) (domain.BalanceSet, error) {
	var resp accountResponse
	if err := c.doSigned(ctx, http.MethodGet, "/api/v3/account", url.Values{}, &resp); err != nil {
		return nil, domain.NewExchangeError("account", "", err)
	}

	set := make(domain.BalanceSet, len(resp.Balances))
	for _, b := range resp.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, domain.NewFatalExchangeError("account", "",
				fmt.Errorf("unparsable free balance for %s: %w", b.Asset, err))
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return nil, domain.NewFatalExchangeError("account", "",
				fmt.Errorf("unparsable locked balance for %s: %w", b.Asset, err))
		}
		set[b.Asset] = domain.Balance{Asset: b.Asset, Free: free, Locked: locked}
	}
	return set, nil
}

// SubmitMarketOrder places a market order sized either by quote amount
// (quoteOrderQty) or base quantity (quantity).
func (c *Client) SubmitMarketOrder(ctx context.Context, intent domain.OrderIntent) (domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", intent.Symbol)
	params.Set("side", intent.Side)
	params.Set("type", "MARKET")
	params.Set("newClientOrderId", uuid.NewString())

	switch intent.Mode {
	case domain.SizeByQuote:
		params.Set("quoteOrderQty", intent.Amount.String())
	case domain.SizeByBase:
		params.Set("quantity", intent.Amount.String())
	default:
		return domain.OrderResult{}, domain.NewFatalExchangeError("order", intent.Symbol,
			fmt.Errorf("unknown sizing mode %q", intent.Mode))
	}

	var resp newOrderResponse
	if err := c.doSigned(ctx, http.MethodPost, "/api/v3/order", params, &resp); err != nil {
		return domain.OrderResult{}, domain.NewExchangeError("order", intent.Symbol, err)
	}

	result := domain.OrderResult{
		OrderID:   strconv.FormatInt(resp.OrderID, 10),
		Symbol:    intent.Symbol,
		Side:      intent.Side,
		Amount:    intent.Amount,
		Timestamp: time.UnixMilli(resp.TransactTime),
	}
	c.logger.Info("Order executed",
		"symbol", intent.Symbol, "side", intent.Side,
		"amount", intent.Amount.String(), "order_id", result.OrderID)
	return result, nil
}

// TradableSymbols returns exchange symbols open for trading in the given
// quote asset, sorted by the exchange's own listing order.
func (c *Client) TradableSymbols(ctx context.Context, quoteAsset string) ([]string, error) {
	var resp exchangeInfoResponse
	if err := c.doPublic(ctx, "/api/v3/exchangeInfo", url.Values{}, &resp); err != nil {
		return nil, domain.NewExchangeError("exchangeInfo", "", err)
	}

	symbols := make([]string, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status == "TRADING" && s.QuoteAsset == quoteAsset {
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols, nil
}

func (c *Client) doPublic(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, false, out)
}

func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values, out any) error {
	return c.do(ctx, method, path, params, true, out)
}

// do runs one rate-limited request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if signed {
		reqURL += "?" + c.signer.Sign(params)
	} else if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return err
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.signer.APIKey())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: status=%d", domain.ErrRateLimited, resp.StatusCode)
		}
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			// -1121 is Binance's "Invalid symbol."
			if apiErr.Code == -1121 {
				return fmt.Errorf("%w: %s", domain.ErrInvalidSymbol, apiErr.Msg)
			}
			if method == http.MethodPost {
				return fmt.Errorf("%w: code=%d msg=%s", domain.ErrOrderRejected, apiErr.Code, apiErr.Msg)
			}
			return fmt.Errorf("binance business error: code=%d msg=%s", apiErr.Code, apiErr.Msg)
		}
		return fmt.Errorf("binance api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
