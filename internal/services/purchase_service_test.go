package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"course-market/internal/models"
)

func validPayment() PaymentDetails {
	return PaymentDetails{
		CardNumber: "4111111111111111",
		Expiry:     "12/29",
		CVV:        "123",
		CardHolder: "Test Holder",
	}
}

func TestFirstPurchaseSettlesReferralAndCredits(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	purchases := NewPurchaseService(db)

	referrer := createTestUser(t, db, "alice", nil)
	referred := createTestUser(t, db, "bob", &referrer.ID)
	if _, err := referrals.CreatePendingReferral(referrer.ID, referred.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}

	purchase, err := purchases.InitiatePurchase(referred.ID, 1, "Test Course", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}
	if purchase.Status != models.PurchaseStatusPending {
		t.Fatalf("expected pending status, got %q", purchase.Status)
	}

	settled, err := purchases.ProcessPurchase(purchase.ID, referred.ID, validPayment())
	if err != nil {
		t.Fatalf("ProcessPurchase failed: %v", err)
	}

	if settled.Status != models.PurchaseStatusPaid {
		t.Errorf("expected paid status, got %q", settled.Status)
	}
	if !settled.IsFirstPurchase {
		t.Error("expected first purchase flag")
	}
	if settled.CardLast4 == nil || *settled.CardLast4 != "1111" {
		t.Errorf("expected last4 1111, got %v", settled.CardLast4)
	}
	if settled.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}

	var edge models.Referral
	if err := db.Where("referrer_id = ? AND referred_id = ?", referrer.ID, referred.ID).First(&edge).Error; err != nil {
		t.Fatalf("failed to load referral: %v", err)
	}
	if edge.Status != models.ReferralStatusConverted {
		t.Errorf("expected converted referral, got %q", edge.Status)
	}

	var referrerAfter, referredAfter models.User
	db.First(&referrerAfter, referrer.ID)
	db.First(&referredAfter, referred.ID)
	if referrerAfter.Credits != ReferralCreditAmount {
		t.Errorf("expected referrer credits %d, got %d", ReferralCreditAmount, referrerAfter.Credits)
	}
	if referredAfter.Credits != ReferralCreditAmount {
		t.Errorf("expected referred credits %d, got %d", ReferralCreditAmount, referredAfter.Credits)
	}

	var auditCount int64
	db.Model(&models.CreditTransaction{}).Count(&auditCount)
	if auditCount != 2 {
		t.Errorf("expected 2 credit transactions, got %d", auditCount)
	}
}

func TestValidationFailureLeavesPurchasePending(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	purchases := NewPurchaseService(db)

	referrer := createTestUser(t, db, "alice", nil)
	referred := createTestUser(t, db, "bob", &referrer.ID)
	if _, err := referrals.CreatePendingReferral(referrer.ID, referred.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}

	purchase, err := purchases.InitiatePurchase(referred.ID, 1, "Test Course", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}

	payment := validPayment()
	payment.Expiry = "13/29" // month out of range

	_, err = purchases.ProcessPurchase(purchase.ID, referred.ID, payment)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "expiry" {
		t.Errorf("expected expiry field, got %q", verr.Field)
	}

	var stored models.Purchase
	db.First(&stored, purchase.ID)
	if stored.Status != models.PurchaseStatusPending {
		t.Errorf("expected purchase to stay pending, got %q", stored.Status)
	}

	var edge models.Referral
	db.Where("referred_id = ?", referred.ID).First(&edge)
	if edge.Status != models.ReferralStatusPending {
		t.Errorf("expected referral to stay pending, got %q", edge.Status)
	}

	var referredAfter models.User
	db.First(&referredAfter, referred.ID)
	if referredAfter.Credits != 0 {
		t.Errorf("expected no credits, got %d", referredAfter.Credits)
	}

	// The purchase is retryable with corrected details
	settled, err := purchases.ProcessPurchase(purchase.ID, referred.ID, validPayment())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if settled.Status != models.PurchaseStatusPaid {
		t.Errorf("expected paid after retry, got %q", settled.Status)
	}
}

func TestValidationOrder(t *testing.T) {
	db := setupTestDB(t)
	purchases := NewPurchaseService(db)

	user := createTestUser(t, db, "buyer", nil)
	purchase, err := purchases.InitiatePurchase(user.ID, 1, "Test Course", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}

	// Everything invalid: the card number error must win
	_, err = purchases.ProcessPurchase(purchase.ID, user.ID, PaymentDetails{
		CardNumber: "1234",
		Expiry:     "bad",
		CVV:        "1",
		CardHolder: "  ",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "cardNumber" {
		t.Errorf("expected cardNumber reported first, got %q", verr.Field)
	}

	// Valid card number: the expiry error is next
	_, err = purchases.ProcessPurchase(purchase.ID, user.ID, PaymentDetails{
		CardNumber: "4111111111111111",
		Expiry:     "bad",
		CVV:        "1",
		CardHolder: "  ",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "expiry" {
		t.Errorf("expected expiry reported next, got %q", verr.Field)
	}

	// Then CVV
	_, err = purchases.ProcessPurchase(purchase.ID, user.ID, PaymentDetails{
		CardNumber: "4111111111111111",
		Expiry:     "12/29",
		CVV:        "1",
		CardHolder: "  ",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "cvv" {
		t.Errorf("expected cvv reported next, got %q", verr.Field)
	}

	// Then card holder
	_, err = purchases.ProcessPurchase(purchase.ID, user.ID, PaymentDetails{
		CardNumber: "4111111111111111",
		Expiry:     "12/29",
		CVV:        "123",
		CardHolder: "  ",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "cardHolder" {
		t.Errorf("expected cardHolder reported last, got %q", verr.Field)
	}
}

func TestFirstPurchaseUniqueness(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	purchases := NewPurchaseService(db)

	referrer := createTestUser(t, db, "alice", nil)
	referred := createTestUser(t, db, "bob", &referrer.ID)
	if _, err := referrals.CreatePendingReferral(referrer.ID, referred.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		purchase, err := purchases.InitiatePurchase(referred.ID, uint(i+1), "Course", decimal.NewFromInt(20))
		if err != nil {
			t.Fatalf("InitiatePurchase %d failed: %v", i, err)
		}
		if _, err := purchases.ProcessPurchase(purchase.ID, referred.ID, validPayment()); err != nil {
			t.Fatalf("ProcessPurchase %d failed: %v", i, err)
		}
	}

	var flagged []models.Purchase
	db.Where("user_id = ? AND is_first_purchase = ?", referred.ID, true).
		Order("created_at ASC").Find(&flagged)
	if len(flagged) != 1 {
		t.Fatalf("expected exactly 1 first purchase, got %d", len(flagged))
	}

	var earliest models.Purchase
	db.Where("user_id = ? AND status = ?", referred.ID, models.PurchaseStatusPaid).
		Order("paid_at ASC").First(&earliest)
	if earliest.ID != flagged[0].ID {
		t.Errorf("first settled purchase %d should carry the flag, got %d", earliest.ID, flagged[0].ID)
	}

	// Credits disbursed exactly once despite three settlements
	var referredAfter models.User
	db.First(&referredAfter, referred.ID)
	if referredAfter.Credits != ReferralCreditAmount {
		t.Errorf("expected credits %d, got %d", ReferralCreditAmount, referredAfter.Credits)
	}
	var auditCount int64
	db.Model(&models.CreditTransaction{}).Count(&auditCount)
	if auditCount != 2 {
		t.Errorf("expected 2 credit transactions total, got %d", auditCount)
	}
}

func TestSettlementRollsBackWhenCreditingFails(t *testing.T) {
	db := setupTestDB(t)
	referrals := NewReferralService(db)
	purchases := NewPurchaseService(db)

	referrer := createTestUser(t, db, "alice", nil)
	referred := createTestUser(t, db, "bob", &referrer.ID)
	if _, err := referrals.CreatePendingReferral(referrer.ID, referred.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}

	purchase, err := purchases.InitiatePurchase(referred.ID, 1, "Test Course", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}

	// Remove the referrer so crediting them fails mid-settlement
	if err := db.Delete(&models.User{}, referrer.ID).Error; err != nil {
		t.Fatalf("failed to delete referrer: %v", err)
	}

	_, err = purchases.ProcessPurchase(purchase.ID, referred.ID, validPayment())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError from failed crediting, got %v", err)
	}

	// The whole settlement rolls back: no paid-but-uncredited state
	var stored models.Purchase
	db.First(&stored, purchase.ID)
	if stored.Status != models.PurchaseStatusPending {
		t.Errorf("expected purchase to stay pending, got %q", stored.Status)
	}
	if stored.IsFirstPurchase {
		t.Error("expected first purchase flag to be rolled back")
	}

	var edge models.Referral
	db.Where("referred_id = ?", referred.ID).First(&edge)
	if edge.Status != models.ReferralStatusPending {
		t.Errorf("expected referral to stay pending, got %q", edge.Status)
	}

	var referredAfter models.User
	db.First(&referredAfter, referred.ID)
	if referredAfter.Credits != 0 {
		t.Errorf("expected no credits, got %d", referredAfter.Credits)
	}
	if referredAfter.PaidPurchases != 0 {
		t.Errorf("expected paid purchase count to be rolled back, got %d", referredAfter.PaidPurchases)
	}

	var auditCount int64
	db.Model(&models.CreditTransaction{}).Count(&auditCount)
	if auditCount != 0 {
		t.Errorf("expected no credit transactions, got %d", auditCount)
	}

	// With the referrer gone the edge can never convert, but the purchase
	// itself is still retryable once the conversion path no-ops
	db.Delete(&models.Referral{}, edge.ID)
	settled, err := purchases.ProcessPurchase(purchase.ID, referred.ID, validPayment())
	if err != nil {
		t.Fatalf("retry after edge removal failed: %v", err)
	}
	if settled.Status != models.PurchaseStatusPaid {
		t.Errorf("expected paid after retry, got %q", settled.Status)
	}
}

func TestNoReferrerSettlementIsQuiet(t *testing.T) {
	db := setupTestDB(t)
	purchases := NewPurchaseService(db)

	user := createTestUser(t, db, "organic", nil)

	purchase, err := purchases.InitiatePurchase(user.ID, 1, "Course", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}

	settled, err := purchases.ProcessPurchase(purchase.ID, user.ID, validPayment())
	if err != nil {
		t.Fatalf("ProcessPurchase failed: %v", err)
	}
	if !settled.IsFirstPurchase {
		t.Error("expected first purchase flag")
	}

	var after models.User
	db.First(&after, user.ID)
	if after.Credits != 0 {
		t.Errorf("expected no credits, got %d", after.Credits)
	}

	var referralCount, auditCount int64
	db.Model(&models.Referral{}).Count(&referralCount)
	db.Model(&models.CreditTransaction{}).Count(&auditCount)
	if referralCount != 0 {
		t.Errorf("expected no referral rows, got %d", referralCount)
	}
	if auditCount != 0 {
		t.Errorf("expected no credit transactions, got %d", auditCount)
	}
}

func TestProcessPurchaseOwnership(t *testing.T) {
	db := setupTestDB(t)
	purchases := NewPurchaseService(db)

	owner := createTestUser(t, db, "owner", nil)
	stranger := createTestUser(t, db, "stranger", nil)

	purchase, err := purchases.InitiatePurchase(owner.ID, 1, "Course", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}

	_, err = purchases.ProcessPurchase(purchase.ID, stranger.ID, validPayment())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for foreign purchase, got %v", err)
	}

	_, err = purchases.ProcessPurchase(9999, owner.ID, validPayment())
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for missing purchase, got %v", err)
	}
}

func TestProcessPurchaseAlreadyPaid(t *testing.T) {
	db := setupTestDB(t)
	purchases := NewPurchaseService(db)

	user := createTestUser(t, db, "buyer", nil)

	purchase, err := purchases.InitiatePurchase(user.ID, 1, "Course", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}
	if _, err := purchases.ProcessPurchase(purchase.ID, user.ID, validPayment()); err != nil {
		t.Fatalf("ProcessPurchase failed: %v", err)
	}

	_, err = purchases.ProcessPurchase(purchase.ID, user.ID, validPayment())
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestInitiatePurchaseRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	purchases := NewPurchaseService(db)

	user := createTestUser(t, db, "buyer", nil)

	_, err := purchases.InitiatePurchase(user.ID, 1, "Course", decimal.Zero)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "amount" {
		t.Errorf("expected amount field, got %q", verr.Field)
	}

	_, err = purchases.InitiatePurchase(user.ID, 1, "Course", decimal.NewFromInt(-5))
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for negative amount, got %v", err)
	}
}

func TestGetUserPurchasesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	purchases := NewPurchaseService(db)

	user := createTestUser(t, db, "buyer", nil)

	first, err := purchases.InitiatePurchase(user.ID, 1, "First", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}
	second, err := purchases.InitiatePurchase(user.ID, 2, "Second", decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("InitiatePurchase failed: %v", err)
	}

	list, err := purchases.GetUserPurchases(user.ID)
	if err != nil {
		t.Fatalf("GetUserPurchases failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Errorf("expected newest purchase first, got %q", list[0].CourseName)
	}
	if list[1].ID != first.ID {
		t.Errorf("expected oldest purchase last, got %q", list[1].CourseName)
	}
}
