package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/middleware"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/internal/utils"
)

// GenerationHandler wires the AI drafting routes. The generated content is
// returned for review; nothing is persisted here.
type GenerationHandler struct {
	service service.GenerationService
	logger  zerolog.Logger
}

// NewGenerationHandler constructs the handler.
func NewGenerationHandler(service service.GenerationService, logger zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: service,
		logger:  logger.With().Str("component", "generation_handler").Logger(),
	}
}

// Register attaches generation endpoints to the router group.
func (h *GenerationHandler) Register(router fiber.Router) {
	router.Post("", h.generateAssignment)
	router.Post("/feedback", h.generateFeedback)
}

func (h *GenerationHandler) generateAssignment(c *fiber.Ctx) error {
	payload := dto.GenerateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content, err := h.service.GenerateAssignment(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content generated", content)
}

func (h *GenerationHandler) generateFeedback(c *fiber.Ctx) error {
	payload := dto.GenerateFeedbackRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	principal, _ := middleware.PrincipalFromContext(c)
	feedback, err := h.service.GenerateFeedback(c.Context(), principal.ID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback generated", feedback)
}

func (h *GenerationHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGenerationFailed):
		requestLogger(h.logger, c).Error().Err(err).Msg("generation failed")
		return utils.SendError(c, fiber.StatusBadGateway, "content generation failed")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case isValidationError(err):
		return sendValidationError(c, err)
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("generation operation failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
