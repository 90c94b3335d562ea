package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"keyper/internal/events"
	"keyper/internal/handlers"
	"keyper/internal/logger"
	"keyper/internal/middleware"
	"keyper/internal/models"
	"keyper/internal/permissions"
	"keyper/internal/services"
	"keyper/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Household{},
		&models.Invitation{},
		&models.PermissionOverride{},
		&models.Category{},
		&models.Budget{},
		&models.Expense{},
		&models.Notification{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
// Budget alerts are dispatched on every expense, matching the default configuration.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	resolver := permissions.NewResolver(db)
	bus := events.NewBus()

	// Services
	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db)
	householdService := services.NewHouseholdService(db, resolver)
	invitationService := services.NewInvitationService(db, resolver, notificationService)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db, resolver)
	expenseService := services.NewExpenseService(db, resolver, bus)
	overrideService := services.NewOverrideService(db, resolver)
	auditService := services.NewAuditService(db)

	dispatcher := services.NewAlertDispatcher(db, budgetService, notificationService, true)
	dispatcher.Register(bus)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	householdHandler := handlers.NewHouseholdHandler(householdService, auditService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	overrideHandler := handlers.NewOverrideHandler(overrideService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	households := protected.Group("/households")
	households.POST("", householdHandler.CreateHousehold)
	households.GET("", householdHandler.GetHouseholds)
	households.GET("/:id", householdHandler.GetHousehold)
	households.PUT("/:id", householdHandler.UpdateHousehold)
	households.POST("/:id/activate", householdHandler.SetActiveHousehold)
	households.GET("/:id/members", householdHandler.GetMembers)
	households.DELETE("/:id/members/:memberID", householdHandler.RemoveMember)

	households.POST("/:id/invitations", invitationHandler.CreateInvitation)
	households.GET("/:id/invitations", invitationHandler.GetInvitations)
	protected.POST("/invitations/accept", invitationHandler.AcceptInvitation)
	protected.DELETE("/invitations/:id", invitationHandler.RevokeInvitation)

	households.GET("/:id/permissions", overrideHandler.GetOverrides)
	households.PUT("/:id/members/:memberID/permissions", overrideHandler.UpsertOverride)
	households.GET("/:id/members/:memberID/permissions", overrideHandler.GetOverride)
	households.DELETE("/:id/members/:memberID/permissions", overrideHandler.DeleteOverride)

	households.POST("/:id/budgets", budgetHandler.CreateBudget)
	households.GET("/:id/budgets", budgetHandler.GetBudgets)
	households.GET("/:id/budgets/status", budgetHandler.GetBudgetStatus)
	budgets := protected.Group("/budgets")
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	households.POST("/:id/expenses", expenseHandler.CreateExpense)
	households.GET("/:id/expenses", expenseHandler.GetExpenses)
	expenses := protected.Group("/expenses")
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"display_name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// setRole updates a user's platform role directly. Registration always
// produces a regular member, so flows that need a treasurer or an
// administrator promote the account first.
func (app *testApp) setRole(t *testing.T, userID float64, role models.Role) {
	t.Helper()
	if err := app.DB.Model(&models.User{}).Where("id = ?", uint(userID)).
		Update("role", role).Error; err != nil {
		t.Fatalf("failed to set role: %v", err)
	}
}

// createHousehold creates a household and returns its ID.
func (app *testApp) createHousehold(t *testing.T, token, name string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/households", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create household failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["household"].(map[string]interface{})["id"].(float64)
}
