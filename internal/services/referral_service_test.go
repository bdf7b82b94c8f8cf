package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course-market/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// :memory: is unique per connection unless using cache=shared, so all
	// handles in the test process see the same database.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Referral{},
		&models.Purchase{},
		&models.Course{},
		&models.CreditTransaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// Clean all tables so tests stay order-independent
	db.Exec("DELETE FROM credit_transactions")
	db.Exec("DELETE FROM purchases")
	db.Exec("DELETE FROM referrals")
	db.Exec("DELETE FROM courses")
	db.Exec("DELETE FROM users")

	return db
}

// createTestUser inserts a user directly, bypassing registration
func createTestUser(t *testing.T, db *gorm.DB, name string, referrerID *uint) *models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "test-hash",
		ReferralCode: fmt.Sprintf("CODE%s", name),
		ReferrerID:   referrerID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return &user
}

func TestCreatePendingReferral(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db)

	referrer := createTestUser(t, db, "alice", nil)
	referred := createTestUser(t, db, "bob", &referrer.ID)

	referral, err := service.CreatePendingReferral(referrer.ID, referred.ID)
	if err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}
	if referral.Status != models.ReferralStatusPending {
		t.Errorf("expected status %q, got %q", models.ReferralStatusPending, referral.Status)
	}

	// Second edge for the same pair must be rejected
	_, err = service.CreatePendingReferral(referrer.ID, referred.ID)
	var dup *DuplicateReferralError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateReferralError, got %v", err)
	}

	var count int64
	db.Model(&models.Referral{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 referral edge, got %d", count)
	}
}

func TestConvertReferralNoReferrer(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db)

	user := createTestUser(t, db, "organic", nil)

	referral, err := service.ConvertReferral(user.ID)
	if err != nil {
		t.Fatalf("ConvertReferral failed: %v", err)
	}
	if referral != nil {
		t.Errorf("expected no-op for user without referrer, got %+v", referral)
	}
}

func TestConvertReferralUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db)

	referral, err := service.ConvertReferral(9999)
	if err != nil {
		t.Fatalf("ConvertReferral failed: %v", err)
	}
	if referral != nil {
		t.Errorf("expected no-op for unknown user, got %+v", referral)
	}
}

func TestConvertReferralIdempotent(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db)

	referrer := createTestUser(t, db, "alice", nil)
	referred := createTestUser(t, db, "bob", &referrer.ID)

	if _, err := service.CreatePendingReferral(referrer.ID, referred.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}

	// First call converts the edge
	referral, err := service.ConvertReferral(referred.ID)
	if err != nil {
		t.Fatalf("ConvertReferral failed: %v", err)
	}
	if referral == nil {
		t.Fatal("expected converted referral, got nil")
	}
	if referral.Status != models.ReferralStatusConverted {
		t.Errorf("expected status %q, got %q", models.ReferralStatusConverted, referral.Status)
	}
	if referral.ConvertedAt == nil {
		t.Error("expected converted_at to be set")
	}

	// Second call finds no pending edge and is a no-op
	again, err := service.ConvertReferral(referred.ID)
	if err != nil {
		t.Fatalf("second ConvertReferral failed: %v", err)
	}
	if again != nil {
		t.Errorf("expected no-op on second conversion, got %+v", again)
	}

	var stored models.Referral
	if err := db.First(&stored, referral.ID).Error; err != nil {
		t.Fatalf("failed to reload referral: %v", err)
	}
	if stored.Status != models.ReferralStatusConverted {
		t.Errorf("expected stored status %q, got %q", models.ReferralStatusConverted, stored.Status)
	}
}

func TestGetReferralStats(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db)

	referrer := createTestUser(t, db, "alice", nil)
	first := createTestUser(t, db, "bob", &referrer.ID)
	second := createTestUser(t, db, "carol", &referrer.ID)

	if _, err := service.CreatePendingReferral(referrer.ID, first.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}
	if _, err := service.CreatePendingReferral(referrer.ID, second.ID); err != nil {
		t.Fatalf("CreatePendingReferral failed: %v", err)
	}
	if _, err := service.ConvertReferral(first.ID); err != nil {
		t.Fatalf("ConvertReferral failed: %v", err)
	}

	stats, err := service.GetReferralStats(referrer.ID)
	if err != nil {
		t.Fatalf("GetReferralStats failed: %v", err)
	}
	if stats.TotalReferredUsers != 2 {
		t.Errorf("expected 2 total referred users, got %d", stats.TotalReferredUsers)
	}
	if stats.ConvertedUsers != 1 {
		t.Errorf("expected 1 converted user, got %d", stats.ConvertedUsers)
	}
}

func TestGetUserReferralsPaginated(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db)

	referrer := createTestUser(t, db, "alice", nil)
	for i := 0; i < 3; i++ {
		referred := createTestUser(t, db, fmt.Sprintf("user%d", i), &referrer.ID)
		if _, err := service.CreatePendingReferral(referrer.ID, referred.ID); err != nil {
			t.Fatalf("CreatePendingReferral failed: %v", err)
		}
	}

	page, err := service.GetUserReferralsPaginated(referrer.ID, 1, 2)
	if err != nil {
		t.Fatalf("GetUserReferralsPaginated failed: %v", err)
	}
	if len(page.Referrals) != 2 {
		t.Errorf("expected 2 referrals on page 1, got %d", len(page.Referrals))
	}
	if page.Pagination.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", page.Pagination.TotalItems)
	}
	if page.Pagination.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", page.Pagination.TotalPages)
	}
	if !page.Pagination.HasNextPage {
		t.Error("expected next page")
	}
	if page.Pagination.HasPreviousPage {
		t.Error("did not expect previous page")
	}

	second, err := service.GetUserReferralsPaginated(referrer.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetUserReferralsPaginated failed: %v", err)
	}
	if len(second.Referrals) != 1 {
		t.Errorf("expected 1 referral on page 2, got %d", len(second.Referrals))
	}
	if second.Pagination.HasNextPage {
		t.Error("did not expect next page")
	}
	if !second.Pagination.HasPreviousPage {
		t.Error("expected previous page")
	}
}
