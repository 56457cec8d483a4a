package repository

import (
	"context"

	"bookmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const userNotFound = "User not found"

// UserRepository defines persistence operations for users, their accounts and profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	ExistsByEmailOrGoogleID(ctx context.Context, email, googleID string) (bool, error)
	CreateWithProfile(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) error
	UpdateAvatarURL(ctx context.Context, userID, url string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Account").Preload("Profile")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.withDetails(ctx).Where("users.id = ?", id).First(&user).Error; err != nil {
		return nil, dbError(err, userNotFound)
	}
	return &user, nil
}

func (r *userRepository) getByAccount(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	err := r.withDetails(ctx).
		Joins("JOIN accounts ON accounts.user_id = users.id").
		Where("accounts."+column+" = ?", value).
		First(&user).Error
	if err != nil {
		return nil, dbError(err, userNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByAccount(ctx, "email", email)
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getByAccount(ctx, "google_id", googleID)
}

func (r *userRepository) ExistsByEmailOrGoogleID(ctx context.Context, email, googleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ? OR google_id = ?", email, googleID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CreateWithProfile inserts the user, its account and its profile in one transaction.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		if user.Account != nil {
			user.Account.UserID = user.ID
			if err := tx.Create(user.Account).Error; err != nil {
				return err
			}
		}
		if user.Profile == nil {
			user.Profile = &models.Profile{}
		}
		user.Profile.UserID = user.ID
		return tx.Create(user.Profile).Error
	})
	return dbError(err, userNotFound)
}

// UpdateProfile applies the given column values to the user's profile.
func (r *userRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile not found")
	}
	return nil
}

func (r *userRepository) UpdateAvatarURL(ctx context.Context, userID, url string) error {
	return r.UpdateProfile(ctx, userID, map[string]any{"avatar_url": url})
}
