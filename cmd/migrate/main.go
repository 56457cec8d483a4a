// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"bookmarket/internal/bootstrap"
	"bookmarket/internal/config"
	"bookmarket/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		db, _, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{Migrate: true})
		if err != nil {
			return err
		}
		log.Printf("schema up to date for %d models", len(database.PersistentModels()))
		return closeDB(db)
	case "status":
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		for _, m := range database.PersistentModels() {
			log.Printf("%-28T exists=%t", m, db.Migrator().HasTable(m))
		}
		return closeDB(db)
	default:
		return usage()
	}
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
