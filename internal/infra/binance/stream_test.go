package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"trading_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// newWSServer starts a websocket echo endpoint that forwards every received
// text frame into the returned channel.
func newWSServer(t *testing.T) (wsURL string, frames chan subscribeRequest) {
	t.Helper()
	frames = make(chan subscribeRequest, 10)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req subscribeRequest
			if json.Unmarshal(msg, &req) == nil {
				frames <- req
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), frames
}

func recvFrame(t *testing.T, frames chan subscribeRequest) subscribeRequest {
	t.Helper()
	select {
	case f := <-frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return subscribeRequest{}
	}
}

func streamConfig(wsURL string) *infra.Config {
	cfg := &infra.Config{}
	cfg.API.Binance.WSURL = wsURL
	return cfg
}

func TestStreamWorker_SubscribesOnConnect(t *testing.T) {
	wsURL, frames := newWSServer(t)
	w := NewStreamWorker(streamConfig(wsURL), []string{"BTCUSDT", "ETHUSDT"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Connect(ctx)
	defer w.Disconnect()

	frame := recvFrame(t, frames)
	if frame.Method != "SUBSCRIBE" {
		t.Errorf("Method = %s, want SUBSCRIBE", frame.Method)
	}
	want := []string{"btcusdt@miniTicker", "ethusdt@miniTicker"}
	if !reflect.DeepEqual(frame.Params, want) {
		t.Errorf("Params = %v, want %v", frame.Params, want)
	}
}

func TestStreamWorker_UpdateSymbolsResubscribes(t *testing.T) {
	wsURL, frames := newWSServer(t)
	w := NewStreamWorker(streamConfig(wsURL), []string{"BTCUSDT"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Connect(ctx)
	defer w.Disconnect()

	// Wait for the initial subscription so the connection is fully up.
	recvFrame(t, frames)

	w.UpdateSymbols([]string{"ETHUSDT"})

	unsub := recvFrame(t, frames)
	if unsub.Method != "UNSUBSCRIBE" || !reflect.DeepEqual(unsub.Params, []string{"btcusdt@miniTicker"}) {
		t.Errorf("first frame = %+v, want UNSUBSCRIBE btcusdt", unsub)
	}
	sub := recvFrame(t, frames)
	if sub.Method != "SUBSCRIBE" || !reflect.DeepEqual(sub.Params, []string{"ethusdt@miniTicker"}) {
		t.Errorf("second frame = %+v, want SUBSCRIBE ethusdt", sub)
	}
	if unsub.ID == sub.ID {
		t.Error("resubscription frames must carry distinct request IDs")
	}
}

func TestStreamWorker_UpdateSymbolsWhileDisconnected(t *testing.T) {
	wsURL, frames := newWSServer(t)
	w := NewStreamWorker(streamConfig(wsURL), []string{"BTCUSDT"}, nil)

	// No connection yet: the update only stores the new set.
	w.UpdateSymbols([]string{"SOLUSDT"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Connect(ctx)
	defer w.Disconnect()

	frame := recvFrame(t, frames)
	if !reflect.DeepEqual(frame.Params, []string{"solusdt@miniTicker"}) {
		t.Errorf("Params = %v, want the updated set: %v", frame.Params, []string{"solusdt@miniTicker"})
	}
}

func TestDiffSymbols(t *testing.T) {
	tests := []struct {
		name        string
		previous    []string
		next        []string
		wantAdded   []string
		wantRemoved []string
	}{
		{"disjoint", []string{"A"}, []string{"B"}, []string{"B"}, []string{"A"}},
		{"overlap", []string{"A", "B"}, []string{"B", "C"}, []string{"C"}, []string{"A"}},
		{"identical", []string{"A", "B"}, []string{"A", "B"}, nil, nil},
		{"emptied", []string{"A"}, nil, nil, []string{"A"}},
		{"from empty", nil, []string{"A"}, []string{"A"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := diffSymbols(tt.previous, tt.next)
			if !reflect.DeepEqual(added, tt.wantAdded) {
				t.Errorf("added = %v, want %v", added, tt.wantAdded)
			}
			if !reflect.DeepEqual(removed, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", removed, tt.wantRemoved)
			}
		})
	}
}

func TestStreamWorker_ForwardsTicks(t *testing.T) {
	type tick struct {
		symbol string
		price  string
	}
	got := make(chan tick, 1)

	w := NewStreamWorker(streamConfig("ws://unused"), []string{"BTCUSDT"},
		func(symbol string, price decimal.Decimal, at time.Time) {
			got <- tick{symbol: symbol, price: price.String()}
		})

	w.handleMessage([]byte(`{"e":"24hrMiniTicker","E":1700000000000,"s":"BTCUSDT","c":"50000.10"}`))

	select {
	case tk := <-got:
		if tk.symbol != "BTCUSDT" || tk.price != "50000.10" {
			t.Errorf("tick = %+v, want BTCUSDT @ 50000.10", tk)
		}
	default:
		t.Fatal("tick was not forwarded")
	}

	// Subscribe acks and malformed frames are ignored.
	w.handleMessage([]byte(`{"result":null,"id":1}`))
	w.handleMessage([]byte(`not json`))
	select {
	case <-got:
		t.Error("non-ticker frame must not produce a tick")
	default:
	}
}
