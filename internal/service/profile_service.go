package service

import (
	"context"

	"bookmarket/internal/cache"
	"bookmarket/internal/models"
	"bookmarket/internal/repository"
	"bookmarket/internal/validation"
)

// ProfileService reads and edits the caller's own profile.
type ProfileService struct {
	users  repository.UserRepository
	images *ImageService
}

func NewProfileService(users repository.UserRepository, images *ImageService) *ProfileService {
	return &ProfileService{users: users, images: images}
}

// Get returns the caller with account and profile, served from cache when possible.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.ProfileKey(userID), &user, cache.ProfileTTL, func() error {
		u, err := requireUser(ctx, s.users, userID)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update writes the non-empty fields of in.
func (s *ProfileService) Update(ctx context.Context, userID string, in validation.ProfileUpdate) (*models.User, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	cols, err := in.Columns()
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, userID, cols); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, userID)
	return s.users.GetByID(ctx, userID)
}

// UploadAvatar replaces the caller's avatar image.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, in ImageInput) (*models.User, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	img, err := s.images.Prepare(in)
	if err != nil {
		return nil, err
	}
	url, err := s.images.UploadAvatar(ctx, userID, img)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatarURL(ctx, userID, url); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, userID)
	return s.users.GetByID(ctx, userID)
}
