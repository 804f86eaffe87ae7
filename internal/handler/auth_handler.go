package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/middleware"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/internal/session"
	"github.com/noah-isme/classroom-api/internal/utils"
)

// AuthHandler wires the login and logout routes.
type AuthHandler struct {
	service  service.AuthService
	sessions *session.Manager
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewAuthHandler constructs the handler. ttl controls the session cookie
// lifetime and should match the session manager's TTL.
func NewAuthHandler(service service.AuthService, sessions *session.Manager, ttl time.Duration, logger zerolog.Logger) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &AuthHandler{
		service:  service,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/instructor/login", h.loginInstructor)
	router.Post("/student/login", h.loginStudent)
	router.Post("/logout", h.logout)
	router.Get("/session", h.currentSession)
}

func (h *AuthHandler) loginInstructor(c *fiber.Ctx) error {
	payload := dto.InstructorLoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	principal, err := h.service.LoginInstructor(c.Context(), payload)
	if err != nil {
		return h.loginError(c, err)
	}

	return h.establishSession(c, principal)
}

func (h *AuthHandler) loginStudent(c *fiber.Ctx) error {
	payload := dto.StudentLoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	principal, err := h.service.LoginStudent(c.Context(), payload)
	if err != nil {
		return h.loginError(c, err)
	}

	return h.establishSession(c, principal)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(middleware.SessionCookieName); sessionID != "" {
		if err := h.sessions.Destroy(c.Context(), sessionID); err != nil {
			requestLogger(h.logger, c).Warn().Err(err).Msg("failed to destroy session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) currentSession(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	return utils.SendSuccess(c, "session retrieved", dto.SessionResponse{
		Role: principal.Role,
		ID:   principal.ID,
		Name: principal.Name,
	})
}

func (h *AuthHandler) establishSession(c *fiber.Ctx, principal session.Principal) error {
	sessionID, err := h.sessions.Create(c.Context(), principal)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create session")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Expires:  time.Now().Add(h.ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return utils.SendSuccess(c, "login successful", dto.SessionResponse{
		Role: principal.Role,
		ID:   principal.ID,
		Name: principal.Name,
	})
}

func (h *AuthHandler) loginError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrInvalidCredentials) {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if isValidationError(err) {
		return utils.SendError(c, fiber.StatusBadRequest, "missing credentials")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
