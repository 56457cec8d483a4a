package server

import (
	"bookmarket/internal/models"
	"bookmarket/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 401 {object} models.Envelope
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.profileService.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile retrieved", user)
}

// UpdateProfile handles PUT /profile
// @Summary Update own profile
// @Description Empty fields keep their current value
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validation.ProfileUpdate true "Profile fields"
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req validation.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.profileService.Update(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile updated", user)
}

// UploadAvatar handles PUT /profile/upload
// @Summary Replace avatar
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG or PNG image"
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 400 {object} models.Envelope
// @Failure 415 {object} models.Envelope
// @Router /profile/upload [put]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	img, err := readImage(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	user, err := s.profileService.UploadAvatar(c.UserContext(), currentUserID(c), img)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Avatar updated", user)
}
