package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examforge/examforge-api/internal/dto"
	"github.com/examforge/examforge-api/internal/service"
)

// GradeHandler is the grading service's ingestion endpoint for dispatched jobs.
type GradeHandler struct {
	service   service.GradingRunService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradeHandler builds the grading ingestion handler.
func NewGradeHandler(service service.GradingRunService, validate *validator.Validate, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("/grade", h.grade)
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	var request dto.GradeRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.GradeResponse{
			Success: false,
			Message: "invalid request body",
		})
	}

	if err := h.validator.Struct(request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.GradeResponse{
			AttemptID: request.AttemptID,
			Success:   false,
			Message:   err.Error(),
		})
	}

	response := h.service.Run(c.Context(), request)
	status := fiber.StatusOK
	if !response.Success {
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(response)
}
