package main

import (
	"fmt"
	"net/http"
	"os"

	"keyper/internal/config"
	"keyper/internal/database"
	"keyper/internal/events"
	"keyper/internal/handlers"
	"keyper/internal/logger"
	"keyper/internal/middleware"
	"keyper/internal/permissions"
	"keyper/internal/services"
	"keyper/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "keyper/internal/docs" // Import swagger docs
)

// @title           KeyPer API
// @version         1.0
// @description     KeyPer is a household management application covering shared budgets, expense tracking, and per-member financial permissions.
// @termsOfService  http://swagger.io/terms/

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

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	resolver := permissions.NewResolver(db)
	bus := events.NewBus()

	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db)
	householdService := services.NewHouseholdService(db, resolver)
	invitationService := services.NewInvitationService(db, resolver, notificationService)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, resolver)
	expenseService := services.NewExpenseService(db, resolver, bus)
	overrideService := services.NewOverrideService(db, resolver)
	auditService := services.NewAuditService(db)

	// Budget alerts fan out to household members after each expense write.
	dispatcher := services.NewAlertDispatcher(db, budgetService, notificationService, appConfig.BudgetAlertEveryExpense)
	dispatcher.Register(bus)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	householdHandler := handlers.NewHouseholdHandler(householdService, auditService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	overrideHandler := handlers.NewOverrideHandler(overrideService, auditService)

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
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Household routes
	households := protected.Group("/households")
	households.POST("", householdHandler.CreateHousehold)
	households.GET("", householdHandler.GetHouseholds)
	households.GET("/:id", householdHandler.GetHousehold)
	households.PUT("/:id", householdHandler.UpdateHousehold)
	households.POST("/:id/activate", householdHandler.SetActiveHousehold)
	households.GET("/:id/members", householdHandler.GetMembers)
	households.DELETE("/:id/members/:memberID", householdHandler.RemoveMember)

	// Invitation routes
	households.POST("/:id/invitations", invitationHandler.CreateInvitation)
	households.GET("/:id/invitations", invitationHandler.GetInvitations)
	protected.POST("/invitations/accept", invitationHandler.AcceptInvitation)
	protected.DELETE("/invitations/:id", invitationHandler.RevokeInvitation)

	// Permission override routes
	households.GET("/:id/permissions", overrideHandler.GetOverrides)
	households.PUT("/:id/members/:memberID/permissions", overrideHandler.UpsertOverride)
	households.GET("/:id/members/:memberID/permissions", overrideHandler.GetOverride)
	households.DELETE("/:id/members/:memberID/permissions", overrideHandler.DeleteOverride)

	// Budget routes
	households.POST("/:id/budgets", budgetHandler.CreateBudget)
	households.GET("/:id/budgets", budgetHandler.GetBudgets)
	households.GET("/:id/budgets/status", budgetHandler.GetBudgetStatus)
	budgets := protected.Group("/budgets")
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Expense routes
	households.POST("/:id/expenses", expenseHandler.CreateExpense)
	households.GET("/:id/expenses", expenseHandler.GetExpenses)
	expenses := protected.Group("/expenses")
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	log.Infof("Starting KeyPer backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
