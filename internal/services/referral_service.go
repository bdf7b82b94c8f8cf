package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"course-market/internal/models"
)

// ReferralService owns creation and conversion of referral edges
type ReferralService struct {
	db *gorm.DB
}

// NewReferralService creates a new ReferralService
func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

// CreatePendingReferral inserts a pending edge from referrer to referred.
// At most one edge may exist per pair.
func (s *ReferralService) CreatePendingReferral(referrerID, referredID uint) (*models.Referral, error) {
	var referral *models.Referral
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		referral, err = s.createPendingReferral(tx, referrerID, referredID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return referral, nil
}

func (s *ReferralService) createPendingReferral(tx *gorm.DB, referrerID, referredID uint) (*models.Referral, error) {
	var existing models.Referral
	err := tx.Where("referrer_id = ? AND referred_id = ?", referrerID, referredID).
		First(&existing).Error
	if err == nil {
		return nil, &DuplicateReferralError{ReferrerID: referrerID, ReferredID: referredID}
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	referral := models.Referral{
		ReferrerID: referrerID,
		ReferredID: referredID,
		Status:     models.ReferralStatusPending,
	}

	// The composite unique index on (referrer_id, referred_id) backstops the
	// check above under concurrent registrations.
	if err := tx.Create(&referral).Error; err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	return &referral, nil
}

// ConvertReferral transitions the referred user's pending edge to converted.
// It is idempotent: a user with no referrer, or no remaining pending edge,
// yields a nil referral and no error. Crediting is the caller's
// responsibility.
func (s *ReferralService) ConvertReferral(referredUserID uint) (*models.Referral, error) {
	var referral *models.Referral
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		referral, err = s.convertReferralInTx(tx, referredUserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return referral, nil
}

// convertReferralInTx runs the conversion against the caller's transaction so
// that purchase settlement can fold it into a single atomic commit.
func (s *ReferralService) convertReferralInTx(tx *gorm.DB, referredUserID uint) (*models.Referral, error) {
	var user models.User
	err := tx.First(&user, referredUserID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if user.ReferrerID == nil {
		// Organic registration, nothing to convert
		return nil, nil
	}

	var referral models.Referral
	err = tx.Where("referrer_id = ? AND referred_id = ? AND status = ?",
		*user.ReferrerID, referredUserID, models.ReferralStatusPending).
		First(&referral).Error
	if err == gorm.ErrRecordNotFound {
		// Already converted, or the edge never existed
		log.Printf("No pending referral to convert for user %d", referredUserID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Guarded transition: only a still-pending edge converts, so the
	// idempotency invariant holds at the storage layer even if a concurrent
	// conversion slipped past the lookup above.
	now := time.Now()
	res := tx.Model(&models.Referral{}).
		Where("id = ? AND status = ?", referral.ID, models.ReferralStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ReferralStatusConverted,
			"converted_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to convert referral: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("No pending referral to convert for user %d", referredUserID)
		return nil, nil
	}

	referral.Status = models.ReferralStatusConverted
	referral.ConvertedAt = &now

	log.Printf("Referral %d converted: referrer=%d, referred=%d", referral.ID, referral.ReferrerID, referral.ReferredID)
	return &referral, nil
}

// ReferralStats holds aggregate referral counts for a referrer
type ReferralStats struct {
	TotalReferredUsers int64 `json:"totalReferredUsers"`
	ConvertedUsers     int64 `json:"convertedUsers"`
}

// GetReferralStats returns referral statistics for a user
func (s *ReferralService) GetReferralStats(userID uint) (*ReferralStats, error) {
	var total int64
	if err := s.db.Model(&models.Referral{}).Where("referrer_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var converted int64
	if err := s.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND status = ?", userID, models.ReferralStatusConverted).
		Count(&converted).Error; err != nil {
		return nil, err
	}

	return &ReferralStats{
		TotalReferredUsers: total,
		ConvertedUsers:     converted,
	}, nil
}

// GetUserReferrals returns all referrals made by a user, newest first
func (s *ReferralService) GetUserReferrals(userID uint) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := s.db.Where("referrer_id = ?", userID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

// Pagination describes one page of a listing
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	Limit           int   `json:"limit"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// ReferralPage is one page of a user's referrals
type ReferralPage struct {
	Referrals  []models.Referral `json:"referrals"`
	Pagination Pagination        `json:"pagination"`
}

// GetUserReferralsPaginated returns one page of a user's referrals,
// newest first
func (s *ReferralService) GetUserReferralsPaginated(userID uint, page, limit int) (*ReferralPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 8
	}

	var total int64
	if err := s.db.Model(&models.Referral{}).Where("referrer_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var referrals []models.Referral
	if err := s.db.Where("referrer_id = ?", userID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&referrals).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &ReferralPage{
		Referrals: referrals,
		Pagination: Pagination{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalItems:      total,
			Limit:           limit,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}, nil
}
