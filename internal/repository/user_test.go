package repository

import (
	"context"
	"testing"

	"bookmarket/internal/models"
	"bookmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "reader")
	require.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, user.Profile.UserID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", byID.Account.Email)
	assert.Equal(t, "reader", byID.Profile.Name)

	byEmail, err := repo.GetByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUID, err := repo.GetByGoogleID(ctx, "uid-reader")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUID.ID)

	exists, err := repo.ExistsByEmailOrGoogleID(ctx, "nobody@example.com", "uid-reader")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmailOrGoogleID(ctx, "nobody@example.com", "uid-nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := NewUserRepository(testutil.NewSQLiteDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestUserRepository_CreateWithProfile_DuplicateEmailRollsBack(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	createTestUser(t, repo, "dup")

	err := repo.CreateWithProfile(context.Background(), &models.User{
		Account: &models.Account{Email: "dup@example.com", GoogleID: "uid-other"},
	})
	require.Error(t, err)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := createTestUser(t, repo, "editor")

	require.NoError(t, repo.UpdateProfile(ctx, user.ID, map[string]any{
		"phone_number":  "+6281234567890",
		"city_locality": "Bandung",
	}))
	require.NoError(t, repo.UpdateAvatarURL(ctx, user.ID, "https://storage.test/a.png"))
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, nil))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "editor", got.Profile.Name)
	assert.Equal(t, "+6281234567890", got.Profile.PhoneNumber)
	assert.Equal(t, "Bandung", got.Profile.CityLocality)
	assert.Equal(t, "https://storage.test/a.png", got.Profile.AvatarURL)

	err = repo.UpdateProfile(ctx, "missing", map[string]any{"name": "x"})
	assert.Equal(t, models.CodeNotFound, models.AsAppError(err).Code)
}
