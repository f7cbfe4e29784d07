package main

import (
	"flag"
	"log"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/database"

	"github.com/google/uuid"
)

func main() {
	login := flag.String("user", "admin", "username or email of the account")
	newPassword := flag.String("password", "admin123", "new password")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Database())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByLogin(*login)
	if err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *login, err)
	}

	// 4. Hash new password
	if err := user.SetPassword(*newPassword); err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update, signing out every open session
	if err := userRepo.UpdatePassword(user.ID, user.Password, uuid.New().String()); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Success! Password for %s has been reset", user.Username)
}
