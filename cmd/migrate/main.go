package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Applies the constraints GORM's AutoMigrate does not manage: the composite
// unique index guarding the one-edge-per-pair referral invariant and the
// non-negative credits check on users.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Build connection string
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_referrals_referrer_referred
			ON referrals (referrer_id, referred_id)`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'chk_users_credits_non_negative'
			) THEN
				ALTER TABLE users ADD CONSTRAINT chk_users_credits_non_negative CHECK (credits >= 0);
			END IF;
		END $$`,
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchases_amount_positive'
			) THEN
				ALTER TABLE purchases ADD CONSTRAINT chk_purchases_amount_positive CHECK (amount > 0);
			END IF;
		END $$`,
	}

	log.Println("Executing migration...")
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to execute migration: %v", err)
		}
	}

	log.Println("✅ Migration completed successfully!")
}
