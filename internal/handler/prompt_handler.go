package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/repository"
	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/internal/utils"
)

// PromptHandler manages the grading prompt template endpoints.
type PromptHandler struct {
	service service.PromptService
	logger  zerolog.Logger
}

// NewPromptHandler builds a prompt handler instance.
func NewPromptHandler(service service.PromptService, logger zerolog.Logger) *PromptHandler {
	return &PromptHandler{
		service: service,
		logger:  logger.With().Str("component", "prompt_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PromptHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Delete("/:id", h.delete)
}

func (h *PromptHandler) create(c *fiber.Ctx) error {
	var payload dto.PromptCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	prompt, err := h.service.Create(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "prompt created", prompt)
}

func (h *PromptHandler) list(c *fiber.Ctx) error {
	prompts, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prompts retrieved", prompts)
}

func (h *PromptHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prompt deleted", nil)
}

func (h *PromptHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, repository.ErrDefaultPromptProtected):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPromptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "placeholder"):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("prompt request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
