package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	maxDisplayNameLen = 100
	maxBioLen         = 500
	maxAboutLen       = 5000
)

// UserService implements profile reads and the profile-update contract.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile update: only non-nil fields
// are applied.
type UpdateProfileInput struct {
	UserID      uint
	DisplayName *string
	Bio         *string
	About       *string
	AvatarURL   *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		if *in.DisplayName == "" {
			return nil, models.NewValidationError("Display name cannot be empty")
		}
		if len(*in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 100 characters)")
		}
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.About != nil {
		if len(*in.About) > maxAboutLen {
			return nil, models.NewValidationError("About too long (max 5000 characters)")
		}
		user.About = *in.About
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
