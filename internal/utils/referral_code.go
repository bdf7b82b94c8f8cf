package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
	"gorm.io/gorm"

	"course-market/internal/models"
)

const referralCodeLength = 10

// GenerateReferralCode creates a random referral code. Base58 keeps codes
// free of ambiguous characters (0/O, I/l) since users type them by hand.
func GenerateReferralCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}

	code := base58.Encode(b)
	if len(code) > referralCodeLength {
		code = code[:referralCodeLength]
	}

	return code, nil
}

// GenerateUniqueReferralCode generates a referral code that is not yet
// assigned to any user. The unique index on users.referral_code remains the
// backstop for the window between check and insert.
func GenerateUniqueReferralCode(tx *gorm.DB) (string, error) {
	for {
		code, err := GenerateReferralCode()
		if err != nil {
			return "", err
		}

		var user models.User
		err = tx.Where("referral_code = ?", code).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}
