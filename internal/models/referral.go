package models

import (
	"time"
)

// Referral status values. The transition is strictly one-way:
// pending -> converted.
const (
	ReferralStatusPending   = "pending"
	ReferralStatusConverted = "converted"
)

// Referral represents a directed referral edge from a referrer to the user
// they invited. At most one edge exists per (referrer, referred) pair.
type Referral struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ReferrerID   uint   `gorm:"not null;index;uniqueIndex:idx_referrals_referrer_referred" json:"referrer_id"`
	Referrer     *User  `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	ReferredID   uint   `gorm:"not null;index;uniqueIndex:idx_referrals_referrer_referred" json:"referred_id"`
	ReferredUser *User  `gorm:"foreignKey:ReferredID" json:"referred_user,omitempty"`
	Status       string `gorm:"size:20;default:pending;index" json:"status"`
	ConvertedAt  *time.Time `json:"converted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName specifies the table name for Referral model
func (Referral) TableName() string {
	return "referrals"
}
