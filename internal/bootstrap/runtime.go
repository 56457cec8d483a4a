// Package bootstrap prepares the database and cache for command-line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"bookmarket/internal/cache"
	"bookmarket/internal/config"
	"bookmarket/internal/database"
	"bookmarket/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Migrate runs the schema migration even in production.
	Migrate  bool
	SeedDemo bool
	Seed     seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client disables caching.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.Migrate && cfg.IsProduction() {
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
	}

	if opts.SeedDemo {
		if err := seedDemo(ctx, cfg, db, opts.Seed); err != nil {
			return nil, nil, err
		}
	}

	return db, r, nil
}

func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB, opts seed.Options) error {
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to seed demo data in %s", cfg.Env)
	}
	summary, err := seed.Seed(ctx, db, opts)
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	// Cached listing pages predate the new rows.
	cache.InvalidateOpenListings(ctx)
	log.Printf("demo data ready: %d users, %d listings", summary.Users, summary.Listings)
	return nil
}
