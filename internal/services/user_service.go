package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"course-market/internal/models"
	"course-market/internal/utils"
)

// UserService owns user accounts and the credit balance ledger
type UserService struct {
	db        *gorm.DB
	referrals *ReferralService
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:        db,
		referrals: NewReferralService(db),
	}
}

// RegisterInput carries the registration payload
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	ReferralCode string
}

// Register creates a new account. When a referral code is supplied it must
// resolve to an existing user; the new user then gets an immutable referrer
// back-reference and a pending referral edge, created in the same
// transaction as the account itself.
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return ErrEmailTaken
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		var referrerID *uint
		if input.ReferralCode != "" {
			var referrer models.User
			err := tx.Where("referral_code = ?", input.ReferralCode).First(&referrer).Error
			if err == gorm.ErrRecordNotFound {
				return ErrInvalidReferralCode
			}
			if err != nil {
				return err
			}
			referrerID = &referrer.ID
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		code, err := utils.GenerateUniqueReferralCode(tx)
		if err != nil {
			return err
		}

		user = models.User{
			Name:         strings.TrimSpace(input.Name),
			Email:        email,
			PasswordHash: string(hash),
			ReferralCode: code,
			ReferrerID:   referrerID,
		}

		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if referrerID != nil {
			if _, err := s.referrals.createPendingReferral(tx, *referrerID, user.ID); err != nil {
				return err
			}
			log.Printf("Referral record created: referrer=%d, referred=%d", *referrerID, user.ID)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Printf("New user registered: %s (ID: %d)", user.Email, user.ID)
	return &user, nil
}

// Login verifies the credentials and returns the user
func (s *UserService) Login(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	log.Printf("User logged in: %s (ID: %d)", user.Email, user.ID)
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Message: "We couldn't find your account. Please contact support"}
		}
		return nil, err
	}
	return &user, nil
}

// AddCredits increments a user's credit balance and returns the user with
// the new balance.
func (s *UserService) AddCredits(userID uint, amount int) (*models.User, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.addCreditsInTx(tx, userID, amount, nil, "Referral bonus credit")
	})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// addCreditsInTx performs the balance mutation as an atomic increment at the
// storage layer, never read-modify-write, and writes one audit row per
// disbursement.
func (s *UserService) addCreditsInTx(tx *gorm.DB, userID uint, amount int, referralID *uint, description string) error {
	res := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to add credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Message: "We couldn't find your account. Please contact support"}
	}

	record := models.CreditTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        models.TransactionTypeReferralBonus,
		Amount:      amount,
		ReferralID:  referralID,
		Description: description,
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	log.Printf("Added %d credits to user %d", amount, userID)
	return nil
}
