package repository

import (
	"context"
	"strings"

	"bookmarket/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listingNotFound = "Product not found"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into a LIKE pattern matching it literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ListingRepository persists the listing aggregate: a TransactionPost, its
// Book and the Book's PredictionResult.
type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*models.TransactionPost, error)
	FindByAuthor(ctx context.Context, userID, id string) (*models.TransactionPost, error)
	ListOpen(ctx context.Context, q PageQuery) (*Page, error)
	SearchOpenByTitle(ctx context.Context, title string, q PageQuery) (*Page, error)
	ListByAuthor(ctx context.Context, userID string, q PageQuery) (*Page, error)

	CreateAggregate(ctx context.Context, post *models.TransactionPost) error
	UpdateAggregate(ctx context.Context, post *models.TransactionPost) error
	UpdateImageURL(ctx context.Context, bookID, url string) error
	IncrementSeenCount(ctx context.Context, id string) error
	MarkSold(ctx context.Context, userID, id string) error
	DeleteAggregate(ctx context.Context, post *models.TransactionPost) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func withAggregate(db *gorm.DB) *gorm.DB {
	return db.Preload("Book.PredictionResult").Preload("User.Profile")
}

func openOnly(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_posts.status = ?", models.StatusOpen)
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*models.TransactionPost, error) {
	var post models.TransactionPost
	err := withAggregate(r.db.WithContext(ctx)).
		Where("transaction_posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, dbError(err, listingNotFound)
	}
	return &post, nil
}

func (r *listingRepository) FindByAuthor(ctx context.Context, userID, id string) (*models.TransactionPost, error) {
	var post models.TransactionPost
	err := withAggregate(r.db.WithContext(ctx)).
		Where("transaction_posts.id = ? AND transaction_posts.user_id = ?", id, userID).
		First(&post).Error
	if err != nil {
		return nil, dbError(err, listingNotFound)
	}
	return &post, nil
}

func (r *listingRepository) ListOpen(ctx context.Context, q PageQuery) (*Page, error) {
	return r.page(ctx, q, openOnly)
}

func (r *listingRepository) SearchOpenByTitle(ctx context.Context, title string, q PageQuery) (*Page, error) {
	pattern := containsPattern(title)
	return r.page(ctx, q, func(db *gorm.DB) *gorm.DB {
		return openOnly(db).
			Joins("JOIN books ON books.id = transaction_posts.book_id").
			Where(`LOWER(books.title) LIKE LOWER(?) ESCAPE '\'`, pattern)
	})
}

func (r *listingRepository) ListByAuthor(ctx context.Context, userID string, q PageQuery) (*Page, error) {
	return r.page(ctx, q, func(db *gorm.DB) *gorm.DB {
		return db.Where("transaction_posts.user_id = ?", userID)
	})
}

// page runs the filtered count and the page query concurrently.
func (r *listingRepository) page(ctx context.Context, q PageQuery, filter func(*gorm.DB) *gorm.DB) (*Page, error) {
	q = q.Normalize()

	var (
		total int64
		items []models.TransactionPost
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return filter(r.db.WithContext(gctx).Model(&models.TransactionPost{})).Count(&total).Error
	})
	g.Go(func() error {
		return withAggregate(filter(r.db.WithContext(gctx))).
			Order("transaction_posts.created_at DESC").
			Order("transaction_posts.id").
			Limit(q.Limit).
			Offset(q.Offset()).
			Find(&items).Error
	})
	if err := g.Wait(); err != nil {
		return nil, models.NewInternalError(err)
	}

	if items == nil {
		items = []models.TransactionPost{}
	}
	return &Page{Items: items, TotalCount: total, Page: q.Page, Limit: q.Limit}, nil
}

// CreateAggregate inserts post.Book, post.Book.PredictionResult and post in
// one transaction. IDs are written back into the passed structs.
func (r *listingRepository) CreateAggregate(ctx context.Context, post *models.TransactionPost) error {
	if post.Book == nil || post.Book.PredictionResult == nil {
		return models.NewInternalError(errIncompleteAggregate)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book := post.Book
		if err := tx.Omit(clause.Associations).Create(book).Error; err != nil {
			return err
		}
		book.PredictionResult.BookID = book.ID
		if err := tx.Create(book.PredictionResult).Error; err != nil {
			return err
		}
		post.BookID = book.ID
		return tx.Omit(clause.Associations).Create(post).Error
	})
	return dbError(err, listingNotFound)
}

// UpdateAggregate rewrites the editable book fields, the whole prediction
// and the seller fields of an existing listing in one transaction.
func (r *listingRepository) UpdateAggregate(ctx context.Context, post *models.TransactionPost) error {
	if post.Book == nil || post.Book.PredictionResult == nil {
		return models.NewInternalError(errIncompleteAggregate)
	}
	book, prediction := post.Book, post.Book.PredictionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TransactionPost{}).
			Where("id = ? AND user_id = ?", post.ID, post.UserID).
			Updates(map[string]any{
				"description":       post.Description,
				"final_price":       post.FinalPrice,
				"recommended_price": post.RecommendedPrice,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(listingNotFound)
		}

		if err := tx.Model(&models.Book{}).Where("id = ?", post.BookID).Updates(map[string]any{
			"title":        book.Title,
			"author":       book.Author,
			"isbn":         book.ISBN,
			"publisher":    book.Publisher,
			"publish_year": book.PublishYear,
			"language":     book.Language,
			"buy_price":    book.BuyPrice,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.PredictionResult{}).Where("book_id = ?", post.BookID).Updates(map[string]any{
			"book_condition": prediction.BookCondition,
			"buy_price":      prediction.BuyPrice,
			"output_price":   prediction.OutputPrice,
			"percentage":     prediction.Percentage,
			"worn_out_ratio": prediction.WornOutRatio,
			"ripped_ratio":   prediction.RippedRatio,
			"overall_ratio":  prediction.OverallRatio,
		}).Error
	})
	return dbError(err, listingNotFound)
}

func (r *listingRepository) UpdateImageURL(ctx context.Context, bookID, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", bookID).Update("image_url", url)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Book not found")
	}
	return nil
}

// IncrementSeenCount bumps seen_count with a single atomic statement.
func (r *listingRepository) IncrementSeenCount(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.TransactionPost{}).
		Where("id = ?", id).
		UpdateColumn("seen_count", gorm.Expr("seen_count + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(listingNotFound)
	}
	return nil
}

// MarkSold moves an OPEN listing of userID to SOLD. Already sold listings are left untouched.
func (r *listingRepository) MarkSold(ctx context.Context, userID, id string) error {
	err := r.db.WithContext(ctx).
		Model(&models.TransactionPost{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.StatusOpen).
		Update("status", models.StatusSold).Error
	return dbError(err, listingNotFound)
}

// DeleteAggregate removes the post, its prediction and its book, in that order, in one transaction.
func (r *listingRepository) DeleteAggregate(ctx context.Context, post *models.TransactionPost) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", post.ID, post.UserID).Delete(&models.TransactionPost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(listingNotFound)
		}
		if err := tx.Where("book_id = ?", post.BookID).Delete(&models.PredictionResult{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", post.BookID).Delete(&models.Book{}).Error
	})
	return dbError(err, listingNotFound)
}
