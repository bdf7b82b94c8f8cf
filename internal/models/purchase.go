package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase status values. A purchase reaches paid at most once and never
// leaves it; a validation failure keeps the record pending for retry.
const (
	PurchaseStatusPending = "pending"
	PurchaseStatusPaid    = "paid"
	PurchaseStatusFailed  = "failed"
)

// Purchase represents one checkout attempt for a course
type Purchase struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CourseID   uint            `gorm:"not null;index" json:"course_id"`
	CourseName string          `gorm:"size:255;not null" json:"course_name"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status     string          `gorm:"size:20;default:pending;index" json:"status"`
	// IsFirstPurchase is meaningful only once the purchase is paid; at most
	// one paid purchase per user carries it.
	IsFirstPurchase bool       `gorm:"default:false" json:"is_first_purchase"`
	CardHolder      *string    `gorm:"size:255" json:"card_holder,omitempty"`
	CardLast4       *string    `gorm:"size:4" json:"card_last4,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Purchase model
func (Purchase) TableName() string {
	return "purchases"
}
