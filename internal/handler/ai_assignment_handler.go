package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/internal/utils"
)

// AIAssignmentHandler manages the per-(test, group) AI grading configuration endpoints.
type AIAssignmentHandler struct {
	service service.AIAssignmentService
	logger  zerolog.Logger
}

// NewAIAssignmentHandler builds an assignment configuration handler instance.
func NewAIAssignmentHandler(service service.AIAssignmentService, logger zerolog.Logger) *AIAssignmentHandler {
	return &AIAssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AIAssignmentHandler) Register(router fiber.Router) {
	router.Put("", h.upsert)
	router.Get("/:testId/:groupId", h.get)
}

func (h *AIAssignmentHandler) upsert(c *fiber.Ctx) error {
	var payload dto.AIAssignmentUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Upsert(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "AI grading configuration saved", assignment)
}

func (h *AIAssignmentHandler) get(c *fiber.Ctx) error {
	testID, err := parseUintParam(c, "testId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	groupID, err := parseUintParam(c, "groupId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), testID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "configuration not found")
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "configuration retrieved", assignment)
}

func (h *AIAssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCredentialRequired),
		errors.Is(err, service.ErrCredentialInactive):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrCredentialNotFound),
		errors.Is(err, service.ErrPromptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("assignment configuration request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
