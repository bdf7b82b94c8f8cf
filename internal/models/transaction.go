package models

import (
	"time"

	"github.com/google/uuid"
)

// Credit transaction types
const (
	TransactionTypeReferralBonus = "referral_bonus"
)

// CreditTransaction is a durable record of a single credit disbursement.
// One row is written per increment, inside the settlement transaction, so
// every balance change can be traced back to the purchase that caused it.
type CreditTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type        string    `gorm:"size:50;not null;index" json:"type"`
	Amount      int       `gorm:"not null" json:"amount"`
	ReferralID  *uint     `gorm:"index" json:"referral_id,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for CreditTransaction model
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
