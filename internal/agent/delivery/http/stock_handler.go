package http

import (
	"net/http"
	"strconv"

	"golang-quote-agent/internal/agent/service"
	"golang-quote-agent/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for quote scraping and analysis.
type StockHandler struct {
	agentService service.AgentService
	logger       *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(agentService service.AgentService, logger *logger.Logger) *StockHandler {
	return &StockHandler{agentService: agentService, logger: logger}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:symbol", h.GetQuote)
	g.GET("/:symbol/history", h.GetHistory)
	g.GET("/:symbol/analysis", h.GetAnalysis)
	g.GET("/:symbol/news", h.GetNews)
}

// GetQuote godoc
// @Summary Scrape a stock quote
// @Description Scrape the current quote for a symbol
// @Tags stocks
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Success 200 {object} entity.ScrapingResult
// @Failure 502 {object} echo.Map
// @Router /stocks/{symbol} [get]
func (h *StockHandler) GetQuote(c echo.Context) error {
	result := h.agentService.Scrape(c.Request().Context(), c.Param("symbol"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": result.ErrorMessage})
	}
	return c.JSON(http.StatusOK, result)
}

// GetHistory godoc
// @Summary Get historical prices
// @Description Get the OHLCV series for a symbol
// @Tags stocks
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Param period query string false "Period, e.g. 1y"
// @Param interval query string false "Interval, e.g. 1d"
// @Success 200 {object} entity.HistoricalData
// @Failure 502 {object} echo.Map
// @Router /stocks/{symbol}/history [get]
func (h *StockHandler) GetHistory(c echo.Context) error {
	data, err := h.agentService.GetHistoricalData(
		c.Request().Context(),
		c.Param("symbol"),
		c.QueryParam("period"),
		c.QueryParam("interval"),
	)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, data)
}

// GetAnalysis godoc
// @Summary Run the full analysis pipeline
// @Description Scrape, compute indicators and patterns, fetch headlines and run AI analysis
// @Tags stocks
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Param period query string false "History period, e.g. 1y"
// @Success 200 {object} dto.AnalysisReport
// @Failure 502 {object} echo.Map
// @Router /stocks/{symbol}/analysis [get]
func (h *StockHandler) GetAnalysis(c echo.Context) error {
	report, err := h.agentService.Analyze(c.Request().Context(), c.Param("symbol"), c.QueryParam("period"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

// GetNews godoc
// @Summary Get recent headlines
// @Description Get recent headlines for a symbol
// @Tags stocks
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Success 200 {array} entity.NewsItem
// @Failure 502 {object} echo.Map
// @Router /stocks/{symbol}/news [get]
func (h *StockHandler) GetNews(c echo.Context) error {
	items, err := h.agentService.Headlines(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, items)
}

// HealthHandler handles HTTP requests for the health aggregate.
type HealthHandler struct {
	agentService service.AgentService
	logger       *logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(agentService service.AgentService, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{agentService: agentService, logger: logger}
}

// RegisterRoutes registers the health routes to the Echo group.
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetStatus)
	g.GET("/errors", h.GetErrorSummary)
	g.GET("/errors/recent", h.GetRecentErrors)
}

// GetStatus godoc
// @Summary Get health status
// @Description Get the derived health status and request metrics
// @Tags health
// @Produce json
// @Success 200 {object} health.Status
// @Router /health [get]
func (h *HealthHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.agentService.HealthStatus())
}

// GetErrorSummary godoc
// @Summary Get the error summary
// @Description Aggregate recorded errors by category and severity
// @Tags health
// @Produce json
// @Param hours query int false "Lookback window in hours, default 24"
// @Param top query int false "Number of most common errors, default 5"
// @Success 200 {object} health.ErrorSummary
// @Router /health/errors [get]
func (h *HealthHandler) GetErrorSummary(c echo.Context) error {
	hours := intQueryParam(c, "hours", 24)
	top := intQueryParam(c, "top", 5)
	return c.JSON(http.StatusOK, h.agentService.ErrorSummary(hours, top))
}

// GetRecentErrors godoc
// @Summary Get recent errors
// @Description Get the most recent recorded error entries
// @Tags health
// @Produce json
// @Param limit query int false "Number of entries, default 20"
// @Success 200 {array} entity.ErrorInfo
// @Router /health/errors/recent [get]
func (h *HealthHandler) GetRecentErrors(c echo.Context) error {
	limit := intQueryParam(c, "limit", 20)
	return c.JSON(http.StatusOK, h.agentService.RecentErrors(limit))
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
