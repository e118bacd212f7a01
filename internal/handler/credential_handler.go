package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/service"
	"github.com/examforge/examforge-api/internal/utils"
)

// CredentialHandler manages the vendor API key endpoints.
type CredentialHandler struct {
	service service.CredentialService
	logger  zerolog.Logger
}

// NewCredentialHandler builds a credential handler instance.
func NewCredentialHandler(service service.CredentialService, logger zerolog.Logger) *CredentialHandler {
	return &CredentialHandler{
		service: service,
		logger:  logger.With().Str("component", "credential_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CredentialHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Delete("/:id", h.deactivate)
}

func (h *CredentialHandler) create(c *fiber.Ctx) error {
	var payload dto.CredentialCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	credential, err := h.service.Create(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "credential stored", credential)
}

func (h *CredentialHandler) list(c *fiber.Ctx) error {
	credentials, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "credentials retrieved", credentials)
}

func (h *CredentialHandler) deactivate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Deactivate(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "credential deactivated", nil)
}

func (h *CredentialHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCredentialNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("credential request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
