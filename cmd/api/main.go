package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/handler"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/database"
	"go-stock-ledger/pkg/mailer"
	"go-stock-ledger/pkg/storage"

	"gorm.io/gorm"
)

func main() {
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
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := db.AutoMigrate(
		&model.Privilege{}, &model.Role{}, &model.User{},
		&model.Company{}, &model.Shop{}, &model.Product{}, &model.StockEntry{},
	); err != nil {
		log.Fatalf("❌ Failed to migrate: %v", err)
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, cfg.Admin)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. External collaborators
	blobs := setupBlobStore(cfg.Storage)
	var sender mailer.Sender = mailer.LogSender{}
	if cfg.Mail.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP())
	} else {
		log.Println("Warning: SMTP_HOST not set, password reset mails are logged instead of sent")
	}

	// 6. Dependency Injection (Wiring Layers)
	companyRepo := repository.NewCompanyRepo(db)
	shopRepo := repository.NewShopRepo(db)
	productRepo := repository.NewProductRepo(db)
	entryRepo := repository.NewStockEntryRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	catalogService := service.NewCatalogService(companyRepo, shopRepo, productRepo, blobs, wsHub)
	ledgerService := service.NewLedgerService(entryRepo, productRepo, companyRepo, shopRepo, wsHub)
	reportService := service.NewReportService(entryRepo, productRepo, companyRepo)
	dashService := service.NewDashboardService(entryRepo)
	authService := service.NewAuthService(userRepo, roleRepo, sender, service.ResetLinkConfig{
		BaseURL:  cfg.App.PublicBaseURL,
		SiteName: cfg.App.SiteName,
	})
	userService := service.NewUserService(userRepo, roleRepo)

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Report:    handler.NewReportHandler(reportService),
		Dashboard: handler.NewDashboardHandler(dashService),
		User:      handler.NewUserHandler(userService),
		Role:      handler.NewRoleHandler(roleRepo, privilegeRepo),
	}

	// 7. Setup Fiber
	app := handler.NewApp(cfg.App.Name, true)
	if cfg.Storage.S3Bucket == "" {
		app.Static("/uploads", cfg.Storage.UploadDir)
	}
	handler.SetupRoutes(app, handlers, userRepo, wsHub)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// setupBlobStore uses S3 when a bucket is configured and the local upload dir otherwise
func setupBlobStore(cfg config.StorageConfig) storage.BlobStore {
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(context.Background(), cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("❌ Failed to init S3 storage: %v", err)
		}
		log.Printf("✅ Product photos stored in s3://%s", cfg.S3Bucket)
		return s3Store
	}
	log.Printf("✅ Product photos stored in %s", cfg.UploadDir)
	return storage.NewLocalStore(cfg.UploadDir, "/uploads")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, admin config.AdminConfig) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	privileges, err := privilegeRepo.SeedDefaults()
	if err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles, ADMIN gets every privilege
	if err := roleRepo.SeedDefaults(privileges); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Create default admin user
	if _, err := userRepo.FindByUsername(admin.Username); err == nil {
		return
	}
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		log.Printf("Warning: ADMIN role missing, admin user not created: %v", err)
		return
	}

	user := &model.User{
		Username:  admin.Username,
		Email:     admin.Email,
		FirstName: "Site",
		LastName:  "Administrator",
		RoleID:    &adminRole.ID,
		IsActive:  true,
	}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"

	if err := user.SetPassword(admin.Password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(user); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("✅ Admin user created: %s (ADMIN)", admin.Username)
	}
}
