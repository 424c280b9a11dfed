package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"querydesk/internal/config"
	"querydesk/internal/database"
	"querydesk/internal/handlers"
	"querydesk/internal/logger"
	"querydesk/internal/middleware"
	"querydesk/internal/models"
	"querydesk/internal/services"
	"querydesk/internal/storage"
	"querydesk/internal/validator"
)

// @title           Querydesk API
// @version         1.0
// @description     Querydesk is a role-based audit workflow tracker: auditors raise queries against a category taxonomy, employees respond, managers decide, and every action lands in a per-query audit ledger.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	fileStore, err := storage.NewLocalStore(appConfig.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to open upload directory: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	identityService := services.NewIdentityService(db)
	taxonomyService := services.NewTaxonomyService(db)
	ledgerService := services.NewLedgerService(db)
	attachmentService := services.NewAttachmentService(db, fileStore, appConfig.AllowedExtensions)
	queryService := services.NewQueryService(db, identityService, taxonomyService, ledgerService, attachmentService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(identityService)
	userHandler := handlers.NewUserHandler(identityService)
	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyService)
	queryHandler := handlers.NewQueryHandler(queryService, attachmentService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/change_password", authHandler.ChangePassword)

	// User administration
	users := protected.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.POST("", middleware.RequireRoles(models.RoleAdmin), userHandler.CreateUser)

	// Taxonomy routes
	protected.GET("/categories", taxonomyHandler.ListCategories)
	protected.GET("/categories/:id/subcategories", taxonomyHandler.ListSubCategories)
	protected.GET("/templates", taxonomyHandler.ListTemplates)

	// Query lifecycle routes
	queries := protected.Group("/queries")
	queries.GET("", queryHandler.ListDashboard)
	queries.POST("", middleware.RequireRoles(models.RoleAuditor), queryHandler.CreateQuery)
	queries.GET("/:id", queryHandler.GetQuery)
	queries.POST("/:id/assign", middleware.RequireRoles(models.RoleAuditor), queryHandler.AssignEmployee)
	queries.POST("/:id/submit", middleware.RequireRoles(models.RoleEmployee), queryHandler.EmployeeSubmit)
	queries.POST("/:id/decide", middleware.RequireRoles(models.RoleManager), queryHandler.ManagerDecide)
	queries.POST("/:id/close", middleware.RequireRoles(models.RoleAuditor), queryHandler.Close)
	queries.POST("/:id/reopen", middleware.RequireRoles(models.RoleAuditor), queryHandler.Reopen)
	queries.POST("/:id/comments", queryHandler.AddComment)

	// Attachment downloads
	protected.GET("/uploads/:filename", queryHandler.DownloadAttachment)

	log.Infof("Starting querydesk API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
