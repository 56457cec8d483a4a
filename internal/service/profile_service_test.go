package service

import (
	"context"
	"testing"

	"bookmarket/internal/cache"
	"bookmarket/internal/models"
	"bookmarket/internal/repository"
	"bookmarket/internal/testutil"
	"bookmarket/internal/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture(t *testing.T) (*ProfileService, *testutil.MemoryObjectStore, string) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	user := &models.User{
		Account: &models.Account{Email: "editor@example.com", GoogleID: "uid-editor"},
		Profile: &models.Profile{Name: "Editor", CityLocality: "Malang"},
	}
	require.NoError(t, users.CreateWithProfile(context.Background(), user))
	store := testutil.NewMemoryObjectStore()
	return NewProfileService(users, NewImageService(store, nil)), store, user.ID
}

func TestProfileService_UpdateKeepsEmptyFields(t *testing.T) {
	svc, _, userID := newProfileFixture(t)

	got, err := svc.Update(context.Background(), userID, validation.ProfileUpdate{
		PhoneNumber: "6281298765432",
		Address:     "Jl. Ijen 12",
	})
	require.NoError(t, err)
	assert.Equal(t, "Editor", got.Profile.Name)
	assert.Equal(t, "Malang", got.Profile.CityLocality)
	assert.Equal(t, "+6281298765432", got.Profile.PhoneNumber)
	assert.Equal(t, "Jl. Ijen 12", got.Profile.Address)

	_, err = svc.Update(context.Background(), userID, validation.ProfileUpdate{PhoneNumber: "abc"})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestProfileService_UnknownUser(t *testing.T) {
	svc, _, _ := newProfileFixture(t)

	_, err := svc.Get(context.Background(), "ghost")
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func TestProfileService_GetIsCachedUntilUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	svc, _, userID := newProfileFixture(t)
	ctx := context.Background()

	got, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Editor", got.Profile.Name)
	assert.True(t, mr.Exists(cache.ProfileKey(userID)))

	_, err = svc.Update(ctx, userID, validation.ProfileUpdate{Name: "Renamed"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ProfileKey(userID)))

	got, err = svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Profile.Name)
}

func TestProfileService_UploadAvatar(t *testing.T) {
	svc, store, userID := newProfileFixture(t)
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, userID, ImageInput{Content: testutil.PNGBytes(20, 20)})
	require.NoError(t, err)
	got, err := svc.UploadAvatar(ctx, userID, ImageInput{Content: testutil.JPEGBytes(20, 20)})
	require.NoError(t, err)

	key := "images/user/" + userID + "/" + userID + ".jpg"
	assert.Equal(t, []string{key}, store.Keys())
	assert.Equal(t, store.PublicURL(key), got.Profile.AvatarURL)

	_, err = svc.UploadAvatar(ctx, userID, ImageInput{Content: []byte("%PDF-1.4")})
	assertAppErrorCode(t, err, models.CodeUnsupportedMediaType)
}
