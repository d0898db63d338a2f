package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"trading_go/internal/domain"

	"github.com/gin-gonic/gin"
)

type controlRequest struct {
	Action string `json:"action" binding:"required,oneof=start stop"`
}

type tradingPairsRequest struct {
	Pairs []string `json:"pairs" binding:"required,min=1"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// limitQuery reads a ?limit= parameter clamped to [1, max].
func limitQuery(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func (s *Server) getStatus(c *gin.Context) {
	resp := gin.H{"state": s.Controller.State().String()}

	if status, err := s.Store.GetStatus(); err == nil && status != nil {
		resp["last_heartbeat"] = status.LastHeartbeat
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) controlBot(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "action must be one of: start, stop")
		return
	}

	var changed bool
	switch req.Action {
	case "start":
		changed = s.Controller.Start(context.Background())
	case "stop":
		changed = s.Controller.Stop()
	}

	c.JSON(http.StatusOK, gin.H{
		"state":   s.Controller.State().String(),
		"changed": changed,
	})
}

func (s *Server) getTrades(c *gin.Context) {
	trades, err := s.Store.RecentTrades(limitQuery(c, 50, 500))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "trade history unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (s *Server) getErrors(c *gin.Context) {
	records, err := s.Store.RecentErrors(limitQuery(c, 50, 500))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "error history unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"errors": records})
}

func (s *Server) getPortfolio(c *gin.Context) {
	snapshot, err := s.Store.LatestPortfolio()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "portfolio unavailable")
		return
	}
	if snapshot == nil {
		respondError(c, http.StatusNotFound, "no portfolio snapshot yet")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) getTradingPairs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pairs": s.Controller.TradingPairs()})
}

func (s *Server) putTradingPairs(c *gin.Context) {
	var req tradingPairsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "pairs must be a non-empty list of symbols")
		return
	}

	pairs, err := s.normalizePairs(c.Request.Context(), req.Pairs)
	if err != nil {
		if domain.IsRetriable(err) {
			respondError(c, http.StatusBadGateway, "symbol listing unavailable, try again")
		} else {
			respondError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	if err := s.Store.ReplaceTradingPairs(pairs); err != nil {
		respondError(c, http.StatusInternalServerError, "trading pairs not persisted")
		return
	}
	s.Controller.UpdateTradingPairs(pairs)

	c.JSON(http.StatusOK, gin.H{"pairs": pairs})
}

func (s *Server) getSymbols(c *gin.Context) {
	symbols, err := s.Exchange.TradableSymbols(c.Request.Context(), s.QuoteAsset)
	if err != nil {
		respondError(c, http.StatusBadGateway, "symbol listing unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols, "quote_asset": s.QuoteAsset})
}

// normalizePairs uppercases, dedupes, and validates the requested pair set
// against the exchange listing.
func (s *Server) normalizePairs(ctx context.Context, raw []string) ([]string, error) {
	pairs := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, p := range raw {
		symbol := strings.ToUpper(strings.TrimSpace(p))
		if symbol == "" {
			continue
		}
		if !strings.HasSuffix(symbol, s.QuoteAsset) {
			return nil, domain.NewFatalExchangeError("pairs", symbol, domain.ErrInvalidSymbol)
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		pairs = append(pairs, symbol)
	}
	if len(pairs) == 0 {
		return nil, domain.NewFatalExchangeError("pairs", "", domain.ErrInvalidSymbol)
	}

	listed, err := s.Exchange.TradableSymbols(ctx, s.QuoteAsset)
	if err != nil {
		return nil, err
	}
	tradable := make(map[string]struct{}, len(listed))
	for _, sym := range listed {
		tradable[sym] = struct{}{}
	}
	for _, symbol := range pairs {
		if _, ok := tradable[symbol]; !ok {
			return nil, domain.NewFatalExchangeError("pairs", symbol, domain.ErrInvalidSymbol)
		}
	}
	return pairs, nil
}
