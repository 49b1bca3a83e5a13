package server

import (
	"ladle/internal/models"
	"ladle/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// GetMyProfile returns the authenticated user's profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile fully replaces the mutable profile fields (name, password).
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	return s.updateProfile(c, false)
}

// PatchMyProfile updates only the profile fields present in the payload.
func (s *Server) PatchMyProfile(c *fiber.Ctx) error {
	return s.updateProfile(c, true)
}

func (s *Server) updateProfile(c *fiber.Ctx, partial bool) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Name:     req.Name,
		Password: req.Password,
		Partial:  partial,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
