// Command main runs the demo data seeder for Bookmarket.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"bookmarket/internal/bootstrap"
	"bookmarket/internal/config"
	"bookmarket/internal/middleware"
	"bookmarket/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	perUser := flag.Int("listings", 5, "Listings to create per user")
	soldEvery := flag.Int("sold-every", 4, "Mark every Nth listing as sold (0 keeps all open)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users x %d listings, clean=%v\n", *numUsers, *perUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(middleware.Logger)

	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		SeedDemo: true,
		Seed: seed.Options{
			NumUsers:        *numUsers,
			ListingsPerUser: *perUser,
			SoldEvery:       *soldEvery,
			ShouldClean:     *shouldClean,
			DryRun:          *dryRun,
		},
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	log.Println("✨ All done! Your database is now populated with demo listings.")
}
