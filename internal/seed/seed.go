package seed

import (
	"context"
	"fmt"
	"log"

	"bookmarket/internal/models"

	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	NumUsers        int
	ListingsPerUser int
	// SoldEvery marks every Nth listing as sold. Zero leaves all listings open.
	SoldEvery   int
	ShouldClean bool
	DryRun      bool
	// MaxDays spreads listing creation times over the last MaxDays days.
	MaxDays    int
	RandomSeed int64
}

// Summary reports what a seeding run created.
type Summary struct {
	Users    int
	Listings int
	Sold     int
}

// Seed populates the database with demo users and listings.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("🌱 Seeding %d users with %d listings each...", opts.NumUsers, opts.ListingsPerUser)

	if opts.ShouldClean && !opts.DryRun {
		if err := ClearAll(ctx, db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	summary := &Summary{}
	n := 0
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser(ctx)
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		summary.Users++

		for j := 0; j < opts.ListingsPerUser; j++ {
			n++
			sold := opts.SoldEvery > 0 && n%opts.SoldEvery == 0
			if _, err := f.CreateListing(ctx, user, sold); err != nil {
				return summary, fmt.Errorf("create listing: %w", err)
			}
			summary.Listings++
			if sold {
				summary.Sold++
			}
		}
	}

	log.Printf("🎉 Seeding complete: %d users, %d listings (%d sold)", summary.Users, summary.Listings, summary.Sold)
	return summary, nil
}

// ClearAll deletes every row in dependency order.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&models.TransactionPost{},
			&models.PredictionResult{},
			&models.Book{},
			&models.Profile{},
			&models.Account{},
			&models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
