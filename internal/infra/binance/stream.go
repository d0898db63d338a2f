package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"trading_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 90 * time.Second // Binance pings every ~20s; allow slack
	maxRetries       = 10
)

// TickFunc receives live price updates from the stream.
type TickFunc func(symbol string, price decimal.Decimal, at time.Time)

// StreamWorker maintains a miniTicker websocket subscription for the
// monitored symbols and forwards closes to the tick callback. It reconnects
// with exponential backoff and never gives up while the context is alive.
type StreamWorker struct {
	wsURL     string
	symbols   []string
	onTick    TickFunc
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	reqID     atomic.Int64
}

// NewStreamWorker factory
func NewStreamWorker(cfg *infra.Config, symbols []string, onTick TickFunc) *StreamWorker {
	return &StreamWorker{
		wsURL:   cfg.API.Binance.WSURL,
		symbols: symbols,
		onTick:  onTick,
	}
}

// Connect starts the connection loop in the background.
func (w *StreamWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

// Disconnect stops the worker and waits for the loop to exit.
func (w *StreamWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}

// IsConnected reports whether the websocket is currently up.
func (w *StreamWorker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *StreamWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Binance stream connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0 // Infinite retry loop for monitoring
			}
			delay := infra.CalculateBackoff(retryCount)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
		}
	}
}

func (w *StreamWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return err
	}

	// The server pings; answering pongs is handled by the default handler.
	conn.SetPingHandler(func(appData string) error {
		return w.threadSafeWrite(websocket.PongMessage, []byte(appData))
	})

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	slog.Info("Binance stream connected", slog.Int("symbols", len(w.symbols)))
	return nil
}

func (w *StreamWorker) subscribe() error {
	w.mu.RLock()
	symbols := append([]string(nil), w.symbols...)
	w.mu.RUnlock()
	return w.sendSubscription("SUBSCRIBE", symbols)
}

// UpdateSymbols replaces the streamed symbol set. A live connection is
// resubscribed in place, so pair-set changes take effect without a restart;
// a reconnect subscribes the new set anyway.
func (w *StreamWorker) UpdateSymbols(symbols []string) {
	w.mu.Lock()
	previous := w.symbols
	w.symbols = append([]string(nil), symbols...)
	connected := w.connected
	w.mu.Unlock()

	if !connected {
		return
	}

	added, removed := diffSymbols(previous, symbols)
	if len(removed) > 0 {
		if err := w.sendSubscription("UNSUBSCRIBE", removed); err != nil {
			slog.Warn("Stream unsubscribe failed", slog.Any("error", err))
		}
	}
	if len(added) > 0 {
		if err := w.sendSubscription("SUBSCRIBE", added); err != nil {
			slog.Warn("Stream subscribe failed", slog.Any("error", err))
		}
	}
}

func (w *StreamWorker) sendSubscription(method string, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	params := make([]string, 0, len(symbols))
	for _, s := range symbols {
		params = append(params, strings.ToLower(s)+"@miniTicker")
	}
	req := subscribeRequest{Method: method, Params: params, ID: int(w.reqID.Add(1))}
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return w.threadSafeWrite(websocket.TextMessage, b)
}

// diffSymbols returns the symbols present only in next and only in previous.
func diffSymbols(previous, next []string) (added, removed []string) {
	old := make(map[string]struct{}, len(previous))
	for _, s := range previous {
		old[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(next))
	for _, s := range next {
		seen[s] = struct{}{}
		if _, ok := old[s]; !ok {
			added = append(added, s)
		}
	}
	for _, s := range previous {
		if _, ok := seen[s]; !ok {
			removed = append(removed, s)
		}
	}
	return added, removed
}

func (w *StreamWorker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *StreamWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *StreamWorker) handleMessage(msg []byte) {
	var ev miniTickerEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}
	if ev.EventType != "24hrMiniTicker" || ev.Symbol == "" {
		return // subscribe ack or unrelated frame
	}

	price, err := decimal.NewFromString(ev.Close)
	if err != nil {
		slog.Warn("Unparsable stream price", slog.String("symbol", ev.Symbol), slog.String("close", ev.Close))
		return
	}

	if w.onTick != nil {
		w.onTick(ev.Symbol, price, time.UnixMilli(ev.EventTime))
	}
}

func (w *StreamWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}
