// Package models contains data structures for the marketplace's domain models.
package models

import "github.com/google/uuid"

// newID returns a fresh primary key when one has not been assigned yet.
func newID(current string) string {
	if current != "" {
		return current
	}
	return uuid.NewString()
}
