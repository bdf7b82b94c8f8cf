package services

import (
	"fmt"

	"gorm.io/gorm"
)

// CreditService assembles the referral dashboard projection
type CreditService struct {
	users       *UserService
	referrals   *ReferralService
	frontendURL string
}

// NewCreditService creates a new CreditService
func NewCreditService(db *gorm.DB, frontendURL string) *CreditService {
	return &CreditService{
		users:       NewUserService(db),
		referrals:   NewReferralService(db),
		frontendURL: frontendURL,
	}
}

// Dashboard is the referral dashboard payload
type Dashboard struct {
	TotalReferredUsers int64  `json:"totalReferredUsers"`
	ConvertedUsers     int64  `json:"convertedUsers"`
	TotalCredits       int    `json:"totalCredits"`
	ReferralLink       string `json:"referralLink"`
}

// GetDashboard returns the credit balance, referral stats and shareable
// referral link for a user
func (s *CreditService) GetDashboard(userID uint) (*Dashboard, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.referrals.GetReferralStats(userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalReferredUsers: stats.TotalReferredUsers,
		ConvertedUsers:     stats.ConvertedUsers,
		TotalCredits:       user.Credits,
		ReferralLink:       fmt.Sprintf("%s/register?ref=%s", s.frontendURL, user.ReferralCode),
	}, nil
}
