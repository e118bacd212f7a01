package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/internal/utils"
)

// InternalGradingHandler receives the grading service's completion callback.
type InternalGradingHandler struct {
	service service.GradingCommitService
	logger  zerolog.Logger
}

// NewInternalGradingHandler builds the callback receiver.
func NewInternalGradingHandler(service service.GradingCommitService, logger zerolog.Logger) *InternalGradingHandler {
	return &InternalGradingHandler{
		service: service,
		logger:  logger.With().Str("component", "internal_grading_handler").Logger(),
	}
}

// Register attaches the callback route to the provided router group. The
// group is expected to be guarded by the internal shared-secret middleware.
func (h *InternalGradingHandler) Register(router fiber.Router) {
	router.Post("/ai-grading/complete/:attemptId/:score", h.complete)
}

func (h *InternalGradingHandler) complete(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "attemptId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(c.Params("score")), 64)
	if err != nil || score < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid score")
	}

	attempt, err := h.service.Commit(c.Context(), attemptID, score)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Uint("attempt_id", attemptID).Msg("grading callback failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "grading result committed", attempt)
}
