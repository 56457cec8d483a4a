package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a marketplace member. Identity lives in Account, display data in Profile.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Account   *Account  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"account,omitempty"`
	Profile   *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	u.ID = newID(u.ID)
	return nil
}

// Account links a user to the Firebase identity that signed them up.
type Account struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	GoogleID string `gorm:"column:google_id;uniqueIndex;not null" json:"googleId"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	a.ID = newID(a.ID)
	return nil
}

// Profile holds the public, editable part of a user.
type Profile struct {
	ID                string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Name              string `json:"name"`
	AvatarURL         string `json:"avatarUrl"`
	PhoneNumber       string `json:"phoneNumber"`
	CityLocality      string `json:"cityLocality"`
	AdminAreaLocality string `json:"adminAreaLocality"`
	Address           string `json:"address"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}
