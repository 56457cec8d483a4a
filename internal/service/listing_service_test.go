package service

import (
	"context"
	"errors"
	"testing"

	"bookmarket/internal/models"
	"bookmarket/internal/prediction"
	"bookmarket/internal/repository"
	"bookmarket/internal/testutil"
	"bookmarket/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingRepoStub is a stub for repository.ListingRepository.
type listingRepoStub struct {
	findByIDFn           func(context.Context, string) (*models.TransactionPost, error)
	findByAuthorFn       func(context.Context, string, string) (*models.TransactionPost, error)
	listOpenFn           func(context.Context, repository.PageQuery) (*repository.Page, error)
	searchFn             func(context.Context, string, repository.PageQuery) (*repository.Page, error)
	listByAuthorFn       func(context.Context, string, repository.PageQuery) (*repository.Page, error)
	createFn             func(context.Context, *models.TransactionPost) error
	updateFn             func(context.Context, *models.TransactionPost) error
	updateImageURLFn     func(context.Context, string, string) error
	incrementSeenCountFn func(context.Context, string) error
	markSoldFn           func(context.Context, string, string) error
	deleteFn             func(context.Context, *models.TransactionPost) error
}

func (s *listingRepoStub) FindByID(ctx context.Context, id string) (*models.TransactionPost, error) {
	return s.findByIDFn(ctx, id)
}
func (s *listingRepoStub) FindByAuthor(ctx context.Context, userID, id string) (*models.TransactionPost, error) {
	return s.findByAuthorFn(ctx, userID, id)
}
func (s *listingRepoStub) ListOpen(ctx context.Context, q repository.PageQuery) (*repository.Page, error) {
	return s.listOpenFn(ctx, q)
}
func (s *listingRepoStub) SearchOpenByTitle(ctx context.Context, title string, q repository.PageQuery) (*repository.Page, error) {
	return s.searchFn(ctx, title, q)
}
func (s *listingRepoStub) ListByAuthor(ctx context.Context, userID string, q repository.PageQuery) (*repository.Page, error) {
	return s.listByAuthorFn(ctx, userID, q)
}
func (s *listingRepoStub) CreateAggregate(ctx context.Context, post *models.TransactionPost) error {
	return s.createFn(ctx, post)
}
func (s *listingRepoStub) UpdateAggregate(ctx context.Context, post *models.TransactionPost) error {
	return s.updateFn(ctx, post)
}
func (s *listingRepoStub) UpdateImageURL(ctx context.Context, bookID, url string) error {
	return s.updateImageURLFn(ctx, bookID, url)
}
func (s *listingRepoStub) IncrementSeenCount(ctx context.Context, id string) error {
	return s.incrementSeenCountFn(ctx, id)
}
func (s *listingRepoStub) MarkSold(ctx context.Context, userID, id string) error {
	return s.markSoldFn(ctx, userID, id)
}
func (s *listingRepoStub) DeleteAggregate(ctx context.Context, post *models.TransactionPost) error {
	return s.deleteFn(ctx, post)
}

func noopListingRepo() *listingRepoStub {
	found := func(_ context.Context, id string) (*models.TransactionPost, error) {
		return &models.TransactionPost{ID: id, UserID: "user-1", BookID: "book-1"}, nil
	}
	emptyPage := func() (*repository.Page, error) { return &repository.Page{Items: []models.TransactionPost{}}, nil }
	return &listingRepoStub{
		findByIDFn: found,
		findByAuthorFn: func(ctx context.Context, _ string, id string) (*models.TransactionPost, error) {
			return found(ctx, id)
		},
		listOpenFn:     func(context.Context, repository.PageQuery) (*repository.Page, error) { return emptyPage() },
		searchFn:       func(context.Context, string, repository.PageQuery) (*repository.Page, error) { return emptyPage() },
		listByAuthorFn: func(context.Context, string, repository.PageQuery) (*repository.Page, error) { return emptyPage() },
		createFn: func(_ context.Context, p *models.TransactionPost) error {
			p.ID, p.BookID = "post-1", "book-1"
			return nil
		},
		updateFn:             func(context.Context, *models.TransactionPost) error { return nil },
		updateImageURLFn:     func(context.Context, string, string) error { return nil },
		incrementSeenCountFn: func(context.Context, string) error { return nil },
		markSoldFn:           func(context.Context, string, string) error { return nil },
		deleteFn:             func(context.Context, *models.TransactionPost) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn         func(context.Context, string) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	existsFn          func(context.Context, string, string) (bool, error)
	createFn          func(context.Context, *models.User) error
	updateProfileFn   func(context.Context, string, map[string]any) error
	updateAvatarURLFn func(context.Context, string, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByGoogleID(ctx context.Context, _ string) (*models.User, error) {
	return nil, models.NewNotFoundError("User not found")
}
func (s *userRepoStub) ExistsByEmailOrGoogleID(ctx context.Context, email, googleID string) (bool, error) {
	return s.existsFn(ctx, email, googleID)
}
func (s *userRepoStub) CreateWithProfile(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, userID string, fields map[string]any) error {
	return s.updateProfileFn(ctx, userID, fields)
}
func (s *userRepoStub) UpdateAvatarURL(ctx context.Context, userID, url string) error {
	return s.updateAvatarURLFn(ctx, userID, url)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(context.Context, string) (*models.User, error) {
			return nil, models.NewNotFoundError("User not found")
		},
		existsFn:          func(context.Context, string, string) (bool, error) { return false, nil },
		createFn:          func(context.Context, *models.User) error { return nil },
		updateProfileFn:   func(context.Context, string, map[string]any) error { return nil },
		updateAvatarURLFn: func(context.Context, string, string) error { return nil },
	}
}

func missingUserRepo() *userRepoStub {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, string) (*models.User, error) {
		return nil, models.NewNotFoundError("User not found")
	}
	return users
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.AsAppError(err).Code)
}

func validListing() validation.ListingInput {
	return validation.ListingInput{
		Title:       "Laskar Pelangi",
		Author:      "Andrea Hirata",
		Publisher:   "Bentang Pustaka",
		PublishYear: 2005,
		BuyPrice:    100000,
		FinalPrice:  75000,
		ISBN:        "979-3062-79-7",
		Language:    "Indonesian",
		Description: "Cover slightly worn",
	}
}

func newListingService(listings repository.ListingRepository, users repository.UserRepository, predictor prediction.Predictor, store *testutil.MemoryObjectStore) *ListingService {
	return NewListingService(listings, users, predictor, NewImageService(store, nil))
}

func TestListingService_Predict_GradesWithoutPersisting(t *testing.T) {
	predictor := &testutil.StubPredictor{Result: prediction.Result{OverallRatio: 90, RecommendedPrice: 80000, WornOutRatio: 6, RippedRatio: 4}}
	listings := noopListingRepo()
	listings.createFn = func(context.Context, *models.TransactionPost) error {
		t.Fatal("preview must not persist")
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), predictor, testutil.NewMemoryObjectStore())

	got, err := svc.Predict(context.Background(), PredictInput{
		Image:    ImageInput{Content: testutil.PNGBytes(10, 10)},
		BuyPrice: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConditionGood, got.BookCondition)
	assert.Equal(t, 90, got.Percentage)
	assert.Equal(t, 80000.0, got.OutputPrice)
	assert.Equal(t, 100000.0, got.BuyPrice)
	assert.Empty(t, got.ID)

	require.Equal(t, 1, predictor.CallCount())
	assert.Equal(t, 100000.0, predictor.Calls[0].BuyPrice)
}

func TestListingService_CreateListing_Scenario(t *testing.T) {
	predictor := &testutil.StubPredictor{Result: prediction.Result{OverallRatio: 90, RecommendedPrice: 80000}}
	store := testutil.NewMemoryObjectStore()

	var created *models.TransactionPost
	var patchedURL string
	listings := noopListingRepo()
	listings.createFn = func(_ context.Context, p *models.TransactionPost) error {
		p.ID, p.BookID = "post-1", "book-1"
		created = p
		return nil
	}
	listings.updateImageURLFn = func(_ context.Context, bookID, url string) error {
		assert.Equal(t, "book-1", bookID)
		patchedURL = url
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), predictor, store)

	_, err := svc.CreateListing(context.Background(), CreateListingInput{
		UserID:  "user-1",
		Listing: validListing(),
		Image:   ImageInput{Content: testutil.PNGBytes(10, 10)},
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "user-1", created.UserID)
	assert.Equal(t, models.StatusOpen, created.Status)
	assert.Equal(t, 80000.0, created.RecommendedPrice)
	assert.Equal(t, 80000.0, created.FinalPrice)
	assert.Empty(t, created.Book.ImageURL)
	assert.Equal(t, models.ConditionGood, created.Book.PredictionResult.BookCondition)
	assert.Equal(t, 90, created.Book.PredictionResult.Percentage)
	assert.Equal(t, store.PublicURL("images/post/post-1.png"), patchedURL)
}

func TestListingService_CreateListing_PredictionFailureStoresNothing(t *testing.T) {
	predictor := &testutil.StubPredictor{Err: errors.New("model server unreachable")}
	store := testutil.NewMemoryObjectStore()
	listings := noopListingRepo()
	listings.createFn = func(context.Context, *models.TransactionPost) error {
		t.Fatal("aggregate must not be created when prediction fails")
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), predictor, store)

	_, err := svc.CreateListing(context.Background(), CreateListingInput{
		UserID:  "user-1",
		Listing: validListing(),
		Image:   ImageInput{Content: testutil.PNGBytes(10, 10)},
	})
	assertAppErrorCode(t, err, models.CodeInternal)
	assert.Empty(t, store.Keys())
}

func TestListingService_CreateListing_UploadFailureIsNotCompensated(t *testing.T) {
	predictor := &testutil.StubPredictor{Result: prediction.Result{OverallRatio: 75, RecommendedPrice: 50000}}
	store := testutil.NewMemoryObjectStore()
	store.PutErr = errors.New("bucket unavailable")

	listings := noopListingRepo()
	listings.updateImageURLFn = func(context.Context, string, string) error {
		t.Fatal("image url must not be patched after a failed upload")
		return nil
	}
	listings.deleteFn = func(context.Context, *models.TransactionPost) error {
		t.Fatal("failed upload must not roll back the listing")
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), predictor, store)

	_, err := svc.CreateListing(context.Background(), CreateListingInput{
		UserID:  "user-1",
		Listing: validListing(),
		Image:   ImageInput{Content: testutil.PNGBytes(10, 10)},
	})
	assertAppErrorCode(t, err, models.CodeInternal)
}

func TestListingService_UnknownCallerIsUnauthorized(t *testing.T) {
	predictor := &testutil.StubPredictor{}
	svc := newListingService(noopListingRepo(), missingUserRepo(), predictor, testutil.NewMemoryObjectStore())
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, CreateListingInput{UserID: "ghost", Listing: validListing(), Image: ImageInput{Content: testutil.PNGBytes(4, 4)}})
	assertAppErrorCode(t, err, models.CodeUnauthorized)
	assert.Equal(t, "User not found", models.AsAppError(err).Message)

	_, err = svc.GetByID(ctx, "ghost", "post-1")
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.ListMine(ctx, "ghost", repository.PageQuery{})
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	assertAppErrorCode(t, svc.DeleteListing(ctx, "ghost", "post-1"), models.CodeUnauthorized)
	assert.Zero(t, predictor.CallCount())
}

func TestListingService_UpdateListing(t *testing.T) {
	predictor := &testutil.StubPredictor{Result: prediction.Result{OverallRatio: 98, RecommendedPrice: 95000}}
	listings := noopListingRepo()

	var updated *models.TransactionPost
	listings.updateFn = func(_ context.Context, p *models.TransactionPost) error {
		updated = p
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), predictor, testutil.NewMemoryObjectStore())

	_, err := svc.UpdateListing(context.Background(), UpdateListingInput{
		UserID:  "user-1",
		PostID:  "post-1",
		Listing: validListing(),
		Image:   ImageInput{Content: testutil.JPEGBytes(10, 10)},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "post-1", updated.ID)
	assert.Equal(t, "book-1", updated.BookID)
	assert.Equal(t, "book-1", updated.Book.ID)
	assert.Equal(t, 75000.0, updated.FinalPrice)
	assert.Equal(t, 95000.0, updated.RecommendedPrice)
	assert.Equal(t, models.ConditionLikeNew, updated.Book.PredictionResult.BookCondition)
}

func TestListingService_UpdateListing_NotFoundSkipsPrediction(t *testing.T) {
	predictor := &testutil.StubPredictor{}
	listings := noopListingRepo()
	listings.findByAuthorFn = func(context.Context, string, string) (*models.TransactionPost, error) {
		return nil, models.NewNotFoundError("Product not found")
	}
	svc := newListingService(listings, noopUserRepo(), predictor, testutil.NewMemoryObjectStore())

	_, err := svc.UpdateListing(context.Background(), UpdateListingInput{
		UserID: "user-1", PostID: "post-x", Listing: validListing(),
		Image: ImageInput{Content: testutil.PNGBytes(4, 4)},
	})
	assertAppErrorCode(t, err, models.CodeNotFound)
	assert.Zero(t, predictor.CallCount())
}

func TestListingService_DeleteListing_CleanupFailureIsIgnored(t *testing.T) {
	store := testutil.NewMemoryObjectStore()
	store.DeleteErr = errors.New("bucket unavailable")

	var deleted *models.TransactionPost
	listings := noopListingRepo()
	listings.deleteFn = func(_ context.Context, p *models.TransactionPost) error {
		deleted = p
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), &testutil.StubPredictor{}, store)

	require.NoError(t, svc.DeleteListing(context.Background(), "user-1", "post-1"))
	require.NotNil(t, deleted)
	assert.Equal(t, "book-1", deleted.BookID)
}

func TestListingService_GetByID_CountsView(t *testing.T) {
	listings := noopListingRepo()
	var increments int
	listings.incrementSeenCountFn = func(_ context.Context, id string) error {
		assert.Equal(t, "post-1", id)
		increments++
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), &testutil.StubPredictor{}, testutil.NewMemoryObjectStore())

	_, err := svc.GetByID(context.Background(), "user-1", "post-1")
	require.NoError(t, err)
	_, err = svc.GetMine(context.Background(), "user-1", "post-1")
	require.NoError(t, err)
	assert.Equal(t, 1, increments)
}

func TestListingService_GetByID_MissingListing(t *testing.T) {
	listings := noopListingRepo()
	listings.findByIDFn = func(context.Context, string) (*models.TransactionPost, error) {
		return nil, models.NewNotFoundError("Product not found")
	}
	listings.incrementSeenCountFn = func(context.Context, string) error {
		t.Fatal("missing listing must not be counted")
		return nil
	}
	svc := newListingService(listings, noopUserRepo(), &testutil.StubPredictor{}, testutil.NewMemoryObjectStore())

	_, err := svc.GetByID(context.Background(), "user-1", "missing")
	assertAppErrorCode(t, err, models.CodeNotFound)
}
