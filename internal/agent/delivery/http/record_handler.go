package http

import (
	"net/http"
	"strings"
	"time"

	"golang-quote-agent/internal/agent/repository"
	"golang-quote-agent/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RecordHandler handles HTTP requests for the persisted scrape history.
type RecordHandler struct {
	recordRepo repository.ScrapeRecordRepository
	logger     *logger.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordRepo repository.ScrapeRecordRepository, logger *logger.Logger) *RecordHandler {
	return &RecordHandler{recordRepo: recordRepo, logger: logger}
}

// RegisterRoutes registers the scrape record routes to the Echo group.
func (h *RecordHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetRecent)
	g.GET("/:symbol", h.GetBySymbol)
	g.GET("/:symbol/success-rate", h.GetSuccessRate)
}

// GetRecent godoc
// @Summary Get recent scrape records
// @Description Get the most recent persisted scrape outcomes
// @Tags scrapes
// @Produce json
// @Param limit query int false "Number of records, default 50"
// @Success 200 {array} entity.ScrapeRecord
// @Failure 500 {object} echo.Map
// @Router /scrapes [get]
func (h *RecordHandler) GetRecent(c echo.Context) error {
	limit := intQueryParam(c, "limit", 50)
	records, err := h.recordRepo.FindRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to fetch scrape records", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}

// GetBySymbol godoc
// @Summary Get scrape records for a symbol
// @Description Get the most recent persisted scrape outcomes for one symbol
// @Tags scrapes
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Param limit query int false "Number of records, default 50"
// @Success 200 {array} entity.ScrapeRecord
// @Failure 500 {object} echo.Map
// @Router /scrapes/{symbol} [get]
func (h *RecordHandler) GetBySymbol(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	limit := intQueryParam(c, "limit", 50)
	records, err := h.recordRepo.FindBySymbol(c.Request().Context(), symbol, limit)
	if err != nil {
		h.logger.Error("Failed to fetch scrape records", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}

// GetSuccessRate godoc
// @Summary Get the scrape success rate for a symbol
// @Description Compute the persisted success rate over a lookback window
// @Tags scrapes
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Param hours query int false "Lookback window in hours, default 24"
// @Success 200 {object} echo.Map
// @Failure 500 {object} echo.Map
// @Router /scrapes/{symbol}/success-rate [get]
func (h *RecordHandler) GetSuccessRate(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	hours := intQueryParam(c, "hours", 24)
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	total, successful, err := h.recordRepo.SuccessRateSince(c.Request().Context(), symbol, since)
	if err != nil {
		h.logger.Error("Failed to compute success rate", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	rate := 0.0
	if total > 0 {
		rate = float64(successful) / float64(total)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"symbol":       symbol,
		"hours":        hours,
		"total":        total,
		"successful":   successful,
		"success_rate": rate,
	})
}
