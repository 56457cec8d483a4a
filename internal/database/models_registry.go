package database

import "bookmarket/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Account{},
		&models.Profile{},
		&models.Book{},
		&models.PredictionResult{},
		&models.TransactionPost{},
	}
}
