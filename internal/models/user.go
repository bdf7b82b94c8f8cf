package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	ReferralCode string `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferrerID   *uint  `gorm:"index" json:"referrer_id,omitempty"`
	Referrer     *User  `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	Credits      int    `gorm:"default:0" json:"credits"`
	// PaidPurchases is incremented atomically during settlement; reading 1
	// after the increment identifies the user's first paid purchase.
	PaidPurchases int       `gorm:"default:0" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
