package main

import (
	"log"
	"os"
	"strings"

	"cardscan/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate sets first so the card definition FK can be applied safely.
		if err := db.AutoMigrate(&models.CardSet{}); err != nil {
			log.Printf("migration warning (card_sets): %v", err)
		}
		if err := db.AutoMigrate(&models.CardDefinition{}); err != nil {
			log.Printf("migration warning (card_definitions): %v", err)
		}
	}
	ensureImageBase()
}

// ensureImageBase creates the reference image directory.
func ensureImageBase() {
	base := cardImageDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create card image dir %s: %v", base, err)
	}
}

// cardImageDir returns the directory holding downloaded card art (configurable via CARD_IMAGE_DIR env)
func cardImageDir() string {
	if v := os.Getenv("CARD_IMAGE_DIR"); v != "" {
		return v
	}
	return "card_images"
}
