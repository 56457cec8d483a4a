package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionStatus is the sale state of a listing. It only moves OPEN -> SOLD.
type TransactionStatus string

const (
	StatusOpen TransactionStatus = "OPEN"
	StatusSold TransactionStatus = "SOLD"
)

// TransactionPost is a listing: one user offering one book at a price.
type TransactionPost struct {
	ID               string            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string            `gorm:"type:uuid;not null;index" json:"-"`
	User             *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookID           string            `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Book             *Book             `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Status           TransactionStatus `gorm:"type:varchar(8);not null;default:OPEN;index" json:"status"`
	RecommendedPrice float64           `json:"recommendedPrice"`
	FinalPrice       float64           `json:"finalPrice"`
	Description      string            `gorm:"type:text" json:"description"`
	SeenCount        int64             `gorm:"not null;default:0" json:"seenCount"`
	CreatedAt        time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (t *TransactionPost) BeforeCreate(*gorm.DB) error {
	t.ID = newID(t.ID)
	if t.Status == "" {
		t.Status = StatusOpen
	}
	return nil
}
