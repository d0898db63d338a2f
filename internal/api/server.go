package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"

	"github.com/gin-gonic/gin"
)

// BotController is the slice of the trading controller the HTTP layer needs.
type BotController interface {
	Start(ctx context.Context) bool
	Stop() bool
	State() domain.BotState
	TradingPairs() []string
	UpdateTradingPairs(pairs []string)
}

// Store is the read/write surface the HTTP layer needs from persistence.
type Store interface {
	RecentTrades(limit int) ([]domain.TradeRecord, error)
	RecentErrors(limit int) ([]domain.ErrorRecord, error)
	GetStatus() (*domain.BotStatus, error)
	LatestPortfolio() (*domain.PortfolioSnapshot, error)
	ReplaceTradingPairs(pairs []string) error
}

// SymbolLister lists symbols tradable against the configured quote asset.
type SymbolLister interface {
	TradableSymbols(ctx context.Context, quoteAsset string) ([]string, error)
}

// Server wires the control-plane HTTP endpoints around the controller and
// the ledger.
type Server struct {
	Router     *gin.Engine
	Controller BotController
	Store      Store
	Exchange   SymbolLister
	QuoteAsset string
	AuthToken  string
	logger     *slog.Logger
}

func NewServer(ctrl BotController, store Store, exchange SymbolLister, quoteAsset, authToken string) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	s := &Server{
		Router:     r,
		Controller: ctrl,
		Store:      store,
		Exchange:   exchange,
		QuoteAsset: quoteAsset,
		AuthToken:  authToken,
		logger:     slog.Default().With("module", "api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)

	api := s.Router.Group("/api")
	{
		api.GET("/bot/status", s.getStatus)
		api.GET("/trades", s.getTrades)
		api.GET("/errors", s.getErrors)
		api.GET("/portfolio", s.getPortfolio)
		api.GET("/metrics", s.getMetrics)
		api.GET("/trading-pairs", s.getTradingPairs)
		api.GET("/symbols", s.getSymbols)

		protected := api.Group("")
		protected.Use(AuthMiddleware(s.AuthToken))
		{
			protected.POST("/bot/control", s.controlBot)
			protected.PUT("/trading-pairs", s.putTradingPairs)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, infra.GlobalMetrics.Snapshot())
}

// Run serves until the listener fails. Shutdown is handled by the process
// signal handler tearing down the whole binary.
func (s *Server) Run(addr string) error {
	return s.Router.Run(addr)
}
