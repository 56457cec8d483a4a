package service

import (
	"context"
	"log/slog"

	"bookmarket/internal/cache"
	"bookmarket/internal/grading"
	"bookmarket/internal/models"
	"bookmarket/internal/observability"
	"bookmarket/internal/prediction"
	"bookmarket/internal/repository"
	"bookmarket/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ListingService runs the listing workflows over the listing aggregate.
type ListingService struct {
	listings  repository.ListingRepository
	users     repository.UserRepository
	predictor prediction.Predictor
	images    *ImageService
}

type PredictInput struct {
	Image    ImageInput
	BuyPrice float64
}

type CreateListingInput struct {
	UserID  string
	Listing validation.ListingInput
	Image   ImageInput
}

type UpdateListingInput struct {
	UserID  string
	PostID  string
	Listing validation.ListingInput
	Image   ImageInput
}

func NewListingService(
	listings repository.ListingRepository,
	users repository.UserRepository,
	predictor prediction.Predictor,
	images *ImageService,
) *ListingService {
	return &ListingService{
		listings:  listings,
		users:     users,
		predictor: predictor,
		images:    images,
	}
}

// requireUser resolves the caller. A caller whose user row is gone is unauthorized, not missing.
func (s *ListingService) requireUser(ctx context.Context, userID string) (*models.User, error) {
	return requireUser(ctx, s.users, userID)
}

func requireUser(ctx context.Context, users repository.UserRepository, userID string) (*models.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if appErr := models.AsAppError(err); appErr.Code == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// grade sends the image to the model server and classifies the result.
func (s *ListingService) grade(ctx context.Context, img *PreparedImage, buyPrice float64) (*models.PredictionResult, error) {
	ctx, span := observability.StartSpan(ctx, "listing.predict", attribute.Float64("buy_price", buyPrice))
	result, err := s.predictor.Predict(ctx, prediction.Input{
		Image:    img.Content,
		Filename: img.Filename,
		BuyPrice: buyPrice,
	})
	span.End(err)
	if err != nil {
		slog.ErrorContext(ctx, "prediction failed", "err", err)
		return nil, models.NewInternalError(err)
	}

	g := grading.Evaluate(result.OverallRatio)
	return &models.PredictionResult{
		BookCondition: g.Condition,
		BuyPrice:      buyPrice,
		OutputPrice:   result.RecommendedPrice,
		Percentage:    g.Percentage,
		WornOutRatio:  result.WornOutRatio,
		RippedRatio:   result.RippedRatio,
		OverallRatio:  result.OverallRatio,
	}, nil
}

// Predict grades an image without persisting anything.
func (s *ListingService) Predict(ctx context.Context, in PredictInput) (*models.PredictionResult, error) {
	img, err := s.images.Prepare(in.Image)
	if err != nil {
		return nil, err
	}
	return s.grade(ctx, img, in.BuyPrice)
}

// ListOpen returns one page of OPEN listings, cached per page.
func (s *ListingService) ListOpen(ctx context.Context, userID string, q repository.PageQuery) (*repository.Page, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	q = q.Normalize()

	var page repository.Page
	err := cache.Aside(ctx, cache.OpenListingsKey(ctx, q.Page, q.Limit), &page, cache.OpenListingsTTL, func() error {
		p, err := s.listings.ListOpen(ctx, q)
		if err != nil {
			return err
		}
		page = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Search returns OPEN listings whose title contains title.
func (s *ListingService) Search(ctx context.Context, userID, title string, q repository.PageQuery) (*repository.Page, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.listings.SearchOpenByTitle(ctx, title, q)
}

// GetByID returns a listing and counts the view. Counting a view
// invalidates the cached open-listing pages.
func (s *ListingService) GetByID(ctx context.Context, userID, postID string) (*models.TransactionPost, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.listings.FindByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.listings.IncrementSeenCount(ctx, postID); err != nil {
		return nil, err
	}
	// Cached open pages carry seenCount.
	cache.InvalidateOpenListings(ctx)
	return s.listings.FindByID(ctx, postID)
}

// ListMine returns the caller's listings in any status.
func (s *ListingService) ListMine(ctx context.Context, userID string, q repository.PageQuery) (*repository.Page, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.listings.ListByAuthor(ctx, userID, q)
}

// GetMine returns one of the caller's listings without counting a view.
func (s *ListingService) GetMine(ctx context.Context, userID, postID string) (*models.TransactionPost, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.listings.FindByAuthor(ctx, userID, postID)
}

// CreateListing grades the image, stores the aggregate, then uploads the
// image and patches its URL. A failed upload leaves the listing without an
// image; it is logged and reported, never rolled back.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (post *models.TransactionPost, err error) {
	ctx, span := observability.StartSpan(ctx, "listing.create", attribute.String("user_id", in.UserID))
	defer func() {
		span.End(err)
		observability.ListingWorkflows.WithLabelValues("create", observability.Outcome(err)).Inc()
	}()

	if _, err = s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	img, err := s.images.Prepare(in.Image)
	if err != nil {
		return nil, err
	}
	result, err := s.grade(ctx, img, in.Listing.BuyPrice)
	if err != nil {
		return nil, err
	}

	post = &models.TransactionPost{
		UserID:           in.UserID,
		Status:           models.StatusOpen,
		RecommendedPrice: result.OutputPrice,
		FinalPrice:       result.OutputPrice,
		Description:      in.Listing.Description,
		Book:             newBook(in.Listing, result),
	}
	if err = s.listings.CreateAggregate(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidateOpenListings(ctx)

	if err = s.attachImage(ctx, post, img); err != nil {
		return nil, err
	}
	return s.listings.FindByID(ctx, post.ID)
}

// UpdateListing re-grades the new image and rewrites the caller's listing.
func (s *ListingService) UpdateListing(ctx context.Context, in UpdateListingInput) (post *models.TransactionPost, err error) {
	ctx, span := observability.StartSpan(ctx, "listing.update",
		attribute.String("user_id", in.UserID), attribute.String("post_id", in.PostID))
	defer func() {
		span.End(err)
		observability.ListingWorkflows.WithLabelValues("update", observability.Outcome(err)).Inc()
	}()

	if _, err = s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	existing, err := s.listings.FindByAuthor(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}
	img, err := s.images.Prepare(in.Image)
	if err != nil {
		return nil, err
	}
	result, err := s.grade(ctx, img, in.Listing.BuyPrice)
	if err != nil {
		return nil, err
	}

	post = &models.TransactionPost{
		ID:               existing.ID,
		UserID:           existing.UserID,
		BookID:           existing.BookID,
		RecommendedPrice: result.OutputPrice,
		FinalPrice:       in.Listing.FinalPrice,
		Description:      in.Listing.Description,
		Book:             newBook(in.Listing, result),
	}
	post.Book.ID = existing.BookID
	if err = s.listings.UpdateAggregate(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidateOpenListings(ctx)

	if err = s.attachImage(ctx, post, img); err != nil {
		return nil, err
	}
	return s.listings.FindByID(ctx, post.ID)
}

func (s *ListingService) attachImage(ctx context.Context, post *models.TransactionPost, img *PreparedImage) error {
	ctx, span := observability.StartSpan(ctx, "listing.image", attribute.String("post_id", post.ID))
	url, err := s.images.UploadListingImage(ctx, post.ID, img)
	if err == nil {
		err = s.listings.UpdateImageURL(ctx, post.BookID, url)
	}
	span.End(err)
	if err != nil {
		slog.ErrorContext(ctx, "listing stored without image", "post_id", post.ID, "err", err)
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteListing removes the caller's listing with its book and prediction.
// Image cleanup afterwards is best effort.
func (s *ListingService) DeleteListing(ctx context.Context, userID, postID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "listing.delete",
		attribute.String("user_id", userID), attribute.String("post_id", postID))
	defer func() {
		span.End(err)
		observability.ListingWorkflows.WithLabelValues("delete", observability.Outcome(err)).Inc()
	}()

	if _, err = s.requireUser(ctx, userID); err != nil {
		return err
	}
	existing, err := s.listings.FindByAuthor(ctx, userID, postID)
	if err != nil {
		return err
	}
	if err = s.listings.DeleteAggregate(ctx, existing); err != nil {
		return err
	}
	cache.InvalidateOpenListings(ctx)

	if cleanupErr := s.images.DeleteListingImage(ctx, postID); cleanupErr != nil {
		slog.WarnContext(ctx, "failed to remove listing image", "post_id", postID, "err", cleanupErr)
	}
	return nil
}

// MarkSold closes the caller's listing. Marking a sold listing again changes nothing.
func (s *ListingService) MarkSold(ctx context.Context, userID, postID string) (*models.TransactionPost, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.listings.FindByAuthor(ctx, userID, postID); err != nil {
		return nil, err
	}
	if err := s.listings.MarkSold(ctx, userID, postID); err != nil {
		return nil, err
	}
	cache.InvalidateOpenListings(ctx)
	return s.listings.FindByAuthor(ctx, userID, postID)
}

func newBook(in validation.ListingInput, result *models.PredictionResult) *models.Book {
	return &models.Book{
		Title:            in.Title,
		Author:           in.Author,
		ISBN:             in.ISBN,
		Publisher:        in.Publisher,
		PublishYear:      in.PublishYear,
		Language:         in.Language,
		BuyPrice:         in.BuyPrice,
		PredictionResult: result,
	}
}
