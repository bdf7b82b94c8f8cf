package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course represents a course in the catalog
type Course struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Author      string          `gorm:"size:255;not null" json:"author"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string          `gorm:"size:500" json:"image_url"`
	Category    string          `gorm:"size:100;index" json:"category"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Course model
func (Course) TableName() string {
	return "courses"
}
