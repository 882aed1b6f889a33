package http

import (
	"net/http"
	"strconv"

	"golang-portfolio-analytics/internal/analytics/repository"
	"golang-portfolio-analytics/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EvaluationHistoryHandler exposes past risk evaluation runs.
type EvaluationHistoryHandler struct {
	historyRepo repository.EvaluationHistoryRepository
	logger      *logger.Logger
}

// NewEvaluationHistoryHandler creates a new EvaluationHistoryHandler.
func NewEvaluationHistoryHandler(historyRepo repository.EvaluationHistoryRepository, logger *logger.Logger) *EvaluationHistoryHandler {
	return &EvaluationHistoryHandler{historyRepo: historyRepo, logger: logger}
}

// RegisterRoutes registers the evaluation history routes to the Echo group.
func (h *EvaluationHistoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/:userId/evaluations", h.GetEvaluations)
}

// GetEvaluations godoc
// @Summary List recent risk evaluation runs for a user
// @Tags risk
// @Produce json
// @Param userId path int true "User ID"
// @Param limit query int false "Max rows to return"
// @Success 200 {array} entity.EvaluationHistory
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/{userId}/evaluations [get]
func (h *EvaluationHistoryHandler) GetEvaluations(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	histories, err := h.historyRepo.FindByUserID(c.Request().Context(), uint(userID), limit)
	if err != nil {
		h.logger.Error("Failed to list evaluations", logger.ErrorField(err), logger.Field("user_id", userID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list evaluations"})
	}

	return c.JSON(http.StatusOK, histories)
}
