package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/internal/utils"
)

// AttemptHandler manages the attempt lifecycle endpoints.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler builds an attempt handler instance.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/complete", h.complete)
}

func (h *AttemptHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

// complete marks the attempt finished and responds immediately; any AI
// grading happens asynchronously after this handler has returned.
func (h *AttemptHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.service.Complete(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt completed", attempt)
}

func (h *AttemptHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrAttemptNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}

	h.logger.Error().Err(err).Msg("attempt request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
