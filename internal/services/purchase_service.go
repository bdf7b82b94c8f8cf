package services

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"course-market/internal/models"
)

// ReferralCreditAmount is credited to both the referrer and the referred
// user when the referred user's first purchase settles.
const ReferralCreditAmount = 2

var expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)

// PurchaseService owns the purchase lifecycle: initiation, settlement and
// the referral side effects of a first purchase.
type PurchaseService struct {
	db        *gorm.DB
	referrals *ReferralService
	users     *UserService
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{
		db:        db,
		referrals: NewReferralService(db),
		users:     NewUserService(db),
	}
}

// PaymentDetails carries the card fields submitted at checkout. No gateway
// is invoked; settlement is simulated after validation.
type PaymentDetails struct {
	CardNumber string
	Expiry     string
	CVV        string
	CardHolder string
}

// InitiatePurchase creates a pending purchase for a course. A user may hold
// several pending purchases for the same course; each maps to one checkout
// attempt.
func (s *PurchaseService) InitiatePurchase(userID, courseID uint, courseName string, amount decimal.Decimal) (*models.Purchase, error) {
	if amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "Amount must be greater than zero"}
	}

	purchase := models.Purchase{
		UserID:     userID,
		CourseID:   courseID,
		CourseName: courseName,
		Amount:     amount,
		Status:     models.PurchaseStatusPending,
	}

	if err := s.db.Create(&purchase).Error; err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	log.Printf("Purchase initiated: %d for user %d", purchase.ID, userID)
	return &purchase, nil
}

// ProcessPurchase settles a pending purchase. On success the purchase is
// marked paid with masked payment metadata, and if it is the user's first
// paid purchase, the pending referral edge (when one exists) is converted
// and both parties are credited. The paid transition, referral conversion
// and credit disbursements commit in a single transaction, so a failure in
// any step leaves the purchase pending.
func (s *PurchaseService) ProcessPurchase(purchaseID, userID uint, payment PaymentDetails) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.Where("id = ? AND user_id = ?", purchaseID, userID).First(&purchase).Error
	if err == gorm.ErrRecordNotFound {
		// Missing and foreign-owned purchases get the same answer
		return nil, &NotFoundError{Message: "We couldn't find this purchase. Please try again"}
	}
	if err != nil {
		return nil, err
	}

	if purchase.Status != models.PurchaseStatusPending {
		return nil, &InvalidStateError{Message: "This purchase has already been completed"}
	}

	// Validation failure leaves the purchase pending so the user can correct
	// the form and retry.
	if err := validateCard(payment); err != nil {
		return nil, err
	}

	holder := strings.TrimSpace(payment.CardHolder)
	last4 := payment.CardNumber[len(payment.CardNumber)-4:]
	now := time.Now()

	var isFirstPurchase bool

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Guarded transition: only a still-pending row is marked paid, so a
		// concurrent settlement of the same purchase loses here.
		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusPending).
			Updates(map[string]interface{}{
				"status":      models.PurchaseStatusPaid,
				"card_holder": holder,
				"card_last4":  last4,
				"paid_at":     now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark purchase paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &InvalidStateError{Message: "This purchase has already been completed"}
		}

		// The counter increment takes the user's row lock, serializing
		// concurrent settlements for the same user. Exactly one settlement
		// observes the value 1.
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("paid_purchases", gorm.Expr("paid_purchases + 1")).Error; err != nil {
			return fmt.Errorf("failed to update paid purchase count: %w", err)
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		isFirstPurchase = user.PaidPurchases == 1

		if !isFirstPurchase {
			return nil
		}

		if err := tx.Model(&models.Purchase{}).Where("id = ?", purchase.ID).
			Update("is_first_purchase", true).Error; err != nil {
			return err
		}

		referral, err := s.referrals.convertReferralInTx(tx, userID)
		if err != nil {
			return err
		}
		if referral == nil {
			// No referrer or no pending edge; the purchase still settles
			return nil
		}

		description := fmt.Sprintf("Referral bonus for purchase %d", purchase.ID)
		if err := s.users.addCreditsInTx(tx, referral.ReferrerID, ReferralCreditAmount, &referral.ID, description); err != nil {
			return err
		}
		if err := s.users.addCreditsInTx(tx, referral.ReferredID, ReferralCreditAmount, &referral.ID, description); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if err := s.db.First(&purchase, purchase.ID).Error; err != nil {
		return nil, err
	}

	log.Printf("Purchase paid: %d, isFirstPurchase: %v", purchase.ID, isFirstPurchase)
	return &purchase, nil
}

// validateCard checks the payment fields in a fixed order and reports the
// first failure.
func validateCard(payment PaymentDetails) error {
	if len(payment.CardNumber) < 13 {
		return &ValidationError{Field: "cardNumber", Message: "Please enter a valid card number"}
	}

	if !expiryPattern.MatchString(payment.Expiry) {
		return &ValidationError{Field: "expiry", Message: "Please enter expiry date in MM/YY format"}
	}
	month, err := strconv.Atoi(payment.Expiry[:2])
	if err != nil || month < 1 || month > 12 {
		return &ValidationError{Field: "expiry", Message: "Please enter expiry date in MM/YY format"}
	}

	if len(payment.CVV) < 3 {
		return &ValidationError{Field: "cvv", Message: "Please enter a valid CVV code"}
	}

	if strings.TrimSpace(payment.CardHolder) == "" {
		return &ValidationError{Field: "cardHolder", Message: "Please enter the card holder name"}
	}

	return nil
}

// GetUserPurchases returns all purchases for a user, newest first
func (s *PurchaseService) GetUserPurchases(userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}

	log.Printf("Fetched %d purchases for user %d", len(purchases), userID)
	return purchases, nil
}
