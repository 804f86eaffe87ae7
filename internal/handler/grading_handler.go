package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/middleware"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/internal/utils"
)

// GradingHandler wires the instructor's submission and grading routes.
type GradingHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.SubmissionService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/grade", h.grade)
}

func (h *GradingHandler) list(c *fiber.Ctx) error {
	filter := repository.SubmissionFilter{}

	assignmentID, err := parseQueryUint(c, "assignment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.AssignmentID = assignmentID

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.StudentID = studentID

	graded, err := parseQueryBool(c, "graded")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.Graded = graded

	principal, _ := middleware.PrincipalFromContext(c)
	submissions, err := h.service.ListForInstructor(c.Context(), principal.ID, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

// grade accepts form-encoded bodies: score and feedback are both optional
// fields, and an absent field leaves the stored value untouched.
func (h *GradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.GradeRequest{}
	if raw := strings.TrimSpace(c.FormValue("score")); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "score must be a number")
		}
		payload.Score = &score
	}
	if raw := c.FormValue("feedback"); raw != "" || formHasField(c, "feedback") {
		payload.Feedback = &raw
	}

	principal, _ := middleware.PrincipalFromContext(c)
	submission, err := h.service.Grade(c.Context(), principal.ID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrScoreOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, "score must be between 0 and 10")
	case isValidationError(err):
		return sendValidationError(c, err)
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("grading operation failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

// formHasField reports whether the form carries the key at all, so an
// explicit empty feedback value can clear stored feedback.
func formHasField(c *fiber.Ctx, key string) bool {
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		if _, ok := form.Value[key]; ok {
			return true
		}
	}

	return c.Request().PostArgs().Has(key)
}
