package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parthkaria14/GenAdvisor/internal/advisor"
	"github.com/parthkaria14/GenAdvisor/internal/market"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// errorEnvelope is the JSON error body.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps the error taxonomy to HTTP status codes: InvalidInput
// is the caller's fault (400), missing data is 404, everything else is a
// 500 with the detail logged rather than leaked.
func (s *Server) respondError(c *gin.Context, err error) {
	code := types.CodeOf(err)
	status := http.StatusInternalServerError
	switch {
	case types.IsInvalidInput(err):
		status = http.StatusBadRequest
	case code == types.DATA_MISSING:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.deps.Logger.Error("request failed",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
			"error", err)
		c.JSON(status, errorEnvelope{Error: "internal error", Code: string(code)})
		return
	}
	c.JSON(status, errorEnvelope{Error: err.Error(), Code: string(code)})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, types.WrapError(types.INVALID_INPUT, "invalid request body", err))
		return
	}

	answer, err := s.deps.Pipeline.ProcessQuery(c.Request.Context(), req.Query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// handleQueryStream streams the generated response as server-sent events:
// one "chunk" event per fragment, then a "done" event carrying the answer
// metadata.
func (s *Server) handleQueryStream(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, types.WrapError(types.INVALID_INPUT, "invalid request body", err))
		return
	}

	answer, chunks, err := s.deps.Pipeline.ProcessQueryStream(c.Request.Context(), req.Query)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-chunks
		if !ok {
			c.SSEvent("done", answer)
			return false
		}
		c.SSEvent("chunk", chunk)
		return true
	})
}

func (s *Server) handleStockSearch(c *gin.Context) {
	q := c.Query("q")
	hits, err := s.deps.Search.Search(q, 10)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "results": hits})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	rec := s.deps.Advisor.AnalyzeStock(c.Request.Context(), c.Param("symbol"))
	if !rec.Success {
		c.JSON(http.StatusNotFound, rec)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type batchAnalyzeRequest struct {
	Symbols []string `json:"symbols"`
}

func (s *Server) handleBatchAnalyze(c *gin.Context) {
	var req batchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, types.WrapError(types.INVALID_INPUT, "invalid request body", err))
		return
	}

	results, err := s.deps.Advisor.AnalyzeBatch(c.Request.Context(), req.Symbols)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type optimizeRequest struct {
	Budget   float64  `json:"budget"`
	Strategy string   `json:"strategy"`
	Symbols  []string `json:"symbols"`
}

func (s *Server) handlePortfolioOptimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, types.WrapError(types.INVALID_INPUT, "invalid request body", err))
		return
	}

	strategy, err := advisor.ParseStrategy(req.Strategy)
	if err != nil {
		s.respondError(c, err)
		return
	}

	allocation, err := s.deps.Advisor.OptimizePortfolio(c.Request.Context(), req.Budget, strategy, req.Symbols)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocation)
}

type riskRequest struct {
	Holdings map[string]float64 `json:"holdings"`
}

func (s *Server) handlePortfolioRisk(c *gin.Context) {
	var req riskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, types.WrapError(types.INVALID_INPUT, "invalid request body", err))
		return
	}

	report, err := s.deps.Advisor.AnalyzeRisk(c.Request.Context(), req.Holdings)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleMarketOverview(c *gin.Context) {
	overview, err := s.deps.Advisor.MarketOverview(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) handleScreener(c *gin.Context) {
	var criteria market.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		s.respondError(c, types.WrapError(types.INVALID_INPUT, "invalid request body", err))
		return
	}

	matches, err := market.Screen(s.deps.Store.Snapshot(), criteria)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(matches), "results": matches})
}

func (s *Server) handleGraphRefresh(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.deps.Store.Refresh(ctx); err != nil {
		s.respondError(c, err)
		return
	}
	g := s.deps.Builder.Build(ctx, s.deps.Store.Snapshot())
	s.deps.Holder.Publish(g)

	c.JSON(http.StatusOK, g.Stats())
}

func (s *Server) handleGraphStats(c *gin.Context) {
	g := s.deps.Holder.Current()
	if g == nil {
		s.respondError(c, types.NewError(types.DATA_MISSING, "graph not built yet"))
		return
	}
	c.JSON(http.StatusOK, g.Stats())
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	components := gin.H{}
	overall := types.HealthStateHealthy

	storeHealth := s.deps.Store.Health(ctx)
	components["market"] = storeHealth
	if storeHealth.State == types.HealthStateUnhealthy {
		overall = types.HealthStateUnhealthy
	} else if storeHealth.State == types.HealthStateDegraded {
		overall = types.HealthStateDegraded
	}

	if s.deps.Holder.Current() == nil {
		components["graph"] = types.Degraded("graph not built yet")
		if overall == types.HealthStateHealthy {
			overall = types.HealthStateDegraded
		}
	} else {
		components["graph"] = types.Healthy("graph published")
	}

	status := http.StatusOK
	if overall == types.HealthStateUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"state": overall, "components": components})
}
