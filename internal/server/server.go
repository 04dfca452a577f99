package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parthkaria14/GenAdvisor/internal/advisor"
	"github.com/parthkaria14/GenAdvisor/internal/config"
	"github.com/parthkaria14/GenAdvisor/internal/fuse"
	"github.com/parthkaria14/GenAdvisor/internal/graph"
	"github.com/parthkaria14/GenAdvisor/internal/market"
	"github.com/parthkaria14/GenAdvisor/internal/observability"
)

// Deps bundles everything the HTTP API serves.
type Deps struct {
	Pipeline *fuse.Pipeline
	Advisor  *advisor.Advisor
	Store    *market.Store
	Holder   *graph.Holder
	Builder  *graph.Builder
	Search   *market.SymbolSearch
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Server is the HTTP API front end.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	router *gin.Engine
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, deps Deps) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, deps: deps}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(deps.Logger))

	router.GET("/healthz", s.handleHealth)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/query", s.handleQuery)
		api.POST("/query/stream", s.handleQueryStream)
		api.GET("/stocks/search", s.handleStockSearch)
		api.GET("/stocks/:symbol/analyze", s.handleAnalyze)
		api.POST("/stocks/batch-analyze", s.handleBatchAnalyze)
		api.POST("/portfolio/optimize", s.handlePortfolioOptimize)
		api.POST("/portfolio/risk", s.handlePortfolioRisk)
		api.GET("/market/overview", s.handleMarketOverview)
		api.POST("/screener", s.handleScreener)
		api.POST("/graph/refresh", s.handleGraphRefresh)
		api.GET("/graph/stats", s.handleGraphStats)
	}

	s.router = router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.deps.Logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
