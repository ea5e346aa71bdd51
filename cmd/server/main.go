package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	api "teamspace-backend/internal/api/http"
	"teamspace-backend/internal/config"
	"teamspace-backend/internal/logger"
	"teamspace-backend/internal/repository/postgres"
	"teamspace-backend/internal/security"
	"teamspace-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Teamspace Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authMiddleware := api.NewAuthMiddleware(tokenManager)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services
	permissionSvc := service.NewPermissionService(store.MembershipRepository)
	membershipSvc := service.NewMembershipService(store.MembershipRepository)
	admissionSvc := service.NewAdmissionService(
		store.InvitationRepository,
		store.MembershipRepository,
		store.AuditRepository,
		store.ProjectDirectory,
		permissionSvc,
		emailSvc,
		cfg.Invitations.BaseURL,
		cfg.Invitations.TokenBytes,
	)
	auditSvc := service.NewAuditService(store.AuditRepository)

	// Initialize HTTP handlers
	membershipHandler := api.NewMembershipHandler(membershipSvc, permissionSvc, store.ProjectDirectory)
	admissionHandler := api.NewAdmissionHandler(admissionSvc, permissionSvc, store.ProjectDirectory)
	auditHandler := api.NewAuditHandler(auditSvc, permissionSvc, store.ProjectDirectory)

	router := api.NewRouter(authMiddleware, membershipHandler, admissionHandler, auditHandler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
