package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// publicProfile is the sanitized view of a user returned to other callers.
type publicProfile struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	About       string `json:"about"`
	AvatarURL   string `json:"avatar_url"`
}

func toPublicProfile(u *models.User) publicProfile {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return publicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: name,
		Bio:         u.Bio,
		About:       u.About,
		AvatarURL:   u.AvatarURL,
	}
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /api/users/me. Absent fields are untouched.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		DisplayName *string `json:"displayName"`
		Bio         *string `json:"bio"`
		About       *string `json:"about"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		About:       req.About,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userService.GetUserByUsername(c.Context(), username)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(toPublicProfile(user))
}

// UploadAvatar handles POST /api/users/me/avatar. The new avatar is stored
// first; the previous one is removed only after the profile points at the
// replacement, so a failed upload never orphans the profile.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	content, filename, err := uploadedFileBytes(c, "file")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.fileService.ValidateImage(content); err != nil {
		return respondServiceError(c, err)
	}

	current, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	oldHandle := s.fileService.HandleFromURLPath(service.CategoryAvatar, current.AvatarURL)

	handle, err := s.fileService.Store(service.CategoryAvatar, content, filename)
	if err != nil {
		return respondServiceError(c, err)
	}

	avatarURL := s.fileService.URLPath(service.CategoryAvatar, handle)
	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    userID,
		AvatarURL: &avatarURL,
	})
	if err != nil {
		// Roll back the stored file; the profile still points at the old one.
		_ = s.fileService.Delete(service.CategoryAvatar, handle)
		return respondServiceError(c, err)
	}

	if oldHandle != "" && oldHandle != handle {
		// Deletion failure leaves an orphaned file, never a broken profile.
		if delErr := s.fileService.Delete(service.CategoryAvatar, oldHandle); delErr != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to remove previous avatar",
				"handle", oldHandle, "error", delErr)
		}
	}

	return c.JSON(fiber.Map{
		"fileName":  handle,
		"avatarUrl": s.config.BaseURL + avatarURL,
		"user":      user,
	})
}
