package server

import (
	"bookmarket/internal/models"
	"bookmarket/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type authenticateRequest struct {
	FirebaseTokenID string `json:"firebaseTokenId"`
}

// Authenticate handles POST /auth
// @Summary Exchange a Firebase ID token
// @Description Reports whether the Firebase user is registered and returns an access token if so
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{firebaseTokenId=string} true "Firebase ID token"
// @Success 200 {object} models.Envelope{data=service.AuthResult}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /auth [post]
func (s *Server) Authenticate(c *fiber.Ctx) error {
	var req authenticateRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Authenticate(c.UserContext(), req.FirebaseTokenID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	message := "User is not registered"
	if result.IsRegistered {
		message = "User authenticated"
	}
	return models.Respond(c, fiber.StatusOK, message, result)
}

// Register handles POST /auth/register
// @Summary Register a Firebase user
// @Description Creates the user, account and profile and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.RegisterInput true "Registration request"
// @Success 201 {object} models.Envelope{data=service.RegisterResult}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req validation.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "User registered", result)
}

// Logout handles POST /auth/logout
// @Summary Log out
// @Description Revokes the access token used for this request
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return models.RespondWithAppError(c, models.NewInternalError(errMissingClaims))
	}
	if err := s.authService.Logout(c.UserContext(), claims); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Logged out", nil)
}
