// Package repository implements the data access layer for the application.
package repository

import (
	"errors"

	"bookmarket/internal/models"

	"gorm.io/gorm"
)

// dbError maps a gorm error to an AppError. AppErrors raised inside
// transactions pass through unchanged.
func dbError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(notFound)
	}
	return models.NewInternalError(err)
}

var errIncompleteAggregate = errors.New("listing aggregate requires a book and a prediction result")
