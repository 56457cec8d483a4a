// Package seed provides helpers to create demo data for the marketplace
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"bookmarket/internal/grading"
	"bookmarket/internal/models"
	"bookmarket/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var languages = []string{"Indonesian", "English", "Javanese", "Sundanese"}

var cities = []struct{ city, area string }{
	{"Surabaya", "Jawa Timur"},
	{"Malang", "Jawa Timur"},
	{"Bandung", "Jawa Barat"},
	{"Jakarta Selatan", "DKI Jakarta"},
	{"Yogyakarta", "DI Yogyakarta"},
	{"Semarang", "Jawa Tengah"},
	{"Denpasar", "Bali"},
}

// Factory builds users and listings and persists them through the repositories.
type Factory struct {
	users    repository.UserRepository
	listings repository.ListingRepository
	opts     Options
	rng      *rand.Rand
	faker    *gofakeit.Faker
}

// NewFactory creates a Factory bound to db. db may be nil when opts.DryRun is set.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Factory{
		opts: opts,
		// #nosec G404: acceptable for seeding
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
	if db != nil {
		f.users = repository.NewUserRepository(db)
		f.listings = repository.NewListingRepository(db)
	}
	return f
}

// BuildUser returns an unsaved user with account and profile.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	loc := cities[f.rng.Intn(len(cities))]
	user := &models.User{
		Account: &models.Account{
			Email:    fmt.Sprintf("%s.%s.%d@example.com", first, last, f.faker.Number(100, 99999)),
			GoogleID: f.faker.UUID(),
		},
		Profile: &models.Profile{
			Name:              first + " " + last,
			AvatarURL:         fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
			PhoneNumber:       fmt.Sprintf("+628%s", f.faker.Numerify("##########")),
			CityLocality:      loc.city,
			AdminAreaLocality: loc.area,
			Address:           f.faker.Street(),
		},
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		user.ID = f.faker.UUID()
		log.Printf("[dry-run] CreateUser: %s", user.Account.Email)
		return user, nil
	}
	if err := f.users.CreateWithProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildListing returns an unsaved OPEN listing for user, graded the same way
// a model response would be.
func (f *Factory) BuildListing(user *models.User, overrides ...func(*models.TransactionPost)) *models.TransactionPost {
	buyPrice := float64(f.rng.Intn(40)+2) * 5000
	overall := 40 + f.rng.Float64()*60
	worn := (100 - overall) * f.rng.Float64()
	grade := grading.Evaluate(overall)
	recommended := roundTo(buyPrice*float64(grade.Percentage)/100, 500)

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	created := time.Now().Add(-time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute)

	post := &models.TransactionPost{
		UserID:           user.ID,
		Status:           models.StatusOpen,
		RecommendedPrice: recommended,
		FinalPrice:       recommended,
		Description:      f.faker.Paragraph(1, 2, 12, " "),
		CreatedAt:        created,
		Book: &models.Book{
			Title:       f.faker.BookTitle(),
			Author:      f.faker.BookAuthor(),
			ISBN:        f.faker.Numerify("978##########"),
			Publisher:   f.faker.Company(),
			PublishYear: f.faker.Number(1970, time.Now().Year()),
			Language:    languages[f.rng.Intn(len(languages))],
			BuyPrice:    buyPrice,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/800", f.faker.UUID()),
			PredictionResult: &models.PredictionResult{
				BookCondition: grade.Condition,
				BuyPrice:      buyPrice,
				OutputPrice:   recommended,
				Percentage:    grade.Percentage,
				WornOutRatio:  worn,
				RippedRatio:   100 - overall - worn,
				OverallRatio:  overall,
			},
		},
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreateListing builds and persists a listing, optionally already sold.
func (f *Factory) CreateListing(ctx context.Context, user *models.User, sold bool, overrides ...func(*models.TransactionPost)) (*models.TransactionPost, error) {
	post := f.BuildListing(user, overrides...)
	if f.opts.DryRun {
		post.ID = f.faker.UUID()
		log.Printf("[dry-run] CreateListing: user=%s title=%q", user.ID, post.Book.Title)
		return post, nil
	}
	if err := f.listings.CreateAggregate(ctx, post); err != nil {
		return nil, err
	}
	if sold {
		if err := f.listings.MarkSold(ctx, user.ID, post.ID); err != nil {
			return nil, err
		}
		post.Status = models.StatusSold
	}
	return post, nil
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
