package http

import (
	"net/http"
	"strconv"

	"golang-portfolio-analytics/internal/analytics/service"
	"golang-portfolio-analytics/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RiskHandler handles HTTP requests for risk summaries.
type RiskHandler struct {
	riskSummaryService service.RiskSummaryService
	logger             *logger.Logger
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(riskSummaryService service.RiskSummaryService, logger *logger.Logger) *RiskHandler {
	return &RiskHandler{riskSummaryService: riskSummaryService, logger: logger}
}

// RegisterRoutes registers the risk routes to the Echo group.
func (h *RiskHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/:userId/risk-summary", h.GetRiskSummary)
	g.POST("/users/:userId/risk-summary/refresh", h.RefreshRiskSummary)
	g.GET("/portfolios/:id/risk", h.GetPortfolioRisk)
}

// GetRiskSummary godoc
// @Summary Get a user's overall risk summary
// @Description Evaluates every portfolio the user owns and returns the value-weighted rollup
// @Tags risk
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} dto.OverallRiskSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{userId}/risk-summary [get]
func (h *RiskHandler) GetRiskSummary(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	summary, err := h.riskSummaryService.Summarize(c.Request().Context(), uint(userID))
	if err != nil {
		h.logger.Error("Failed to summarize risk", logger.ErrorField(err), logger.Field("user_id", userID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute risk summary"})
	}

	return c.JSON(http.StatusOK, summary)
}

// RefreshRiskSummary godoc
// @Summary Re-run the full risk pipeline for a user
// @Description Re-evaluates all portfolios, records the run and notifies about urgent alerts
// @Tags risk
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} dto.OverallRiskSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{userId}/risk-summary/refresh [post]
func (h *RiskHandler) RefreshRiskSummary(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	summary, err := h.riskSummaryService.Refresh(c.Request().Context(), uint(userID), "api")
	if err != nil {
		h.logger.Error("Failed to refresh risk summary", logger.ErrorField(err), logger.Field("user_id", userID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to refresh risk summary"})
	}

	return c.JSON(http.StatusOK, summary)
}

// GetPortfolioRisk godoc
// @Summary Get the risk detail for one portfolio
// @Description Runs the analytics pipeline for a single portfolio on demand
// @Tags risk
// @Produce json
// @Param id path int true "Portfolio ID"
// @Success 200 {object} dto.PortfolioRiskSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /portfolios/{id}/risk [get]
func (h *RiskHandler) GetPortfolioRisk(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid portfolio ID"})
	}

	summary, err := h.riskSummaryService.Detail(c.Request().Context(), uint(id))
	if err != nil {
		h.logger.Error("Failed to get portfolio risk detail", logger.ErrorField(err), logger.Field("portfolio_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute portfolio risk"})
	}

	return c.JSON(http.StatusOK, summary)
}
