package services

import (
	"time"

	"keyper/internal/models"
	"keyper/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	UpdateProfile(userID uint, displayName string) (*models.User, error)
}

// HouseholdServicer defines the contract for household and membership logic.
type HouseholdServicer interface {
	CreateHousehold(userID uint, name, description string) (*models.Household, error)
	GetUserHouseholds(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Household], error)
	GetHouseholdByID(userID, householdID uint) (*models.Household, error)
	UpdateHousehold(userID, householdID uint, name, description string) (*models.Household, error)
	GetMembers(userID, householdID uint) ([]models.User, error)
	SetActiveHousehold(userID, householdID uint) error
	RemoveMember(userID, householdID, memberID uint) error
	IsMember(userID, householdID uint) (bool, error)
}

// InvitationServicer defines the contract for invitation codes.
type InvitationServicer interface {
	CreateInvitation(userID, householdID uint, role models.Role, label string) (*models.Invitation, error)
	ListInvitations(userID, householdID uint) ([]models.Invitation, error)
	AcceptInvitation(userID uint, code string) (*models.Household, error)
	RevokeInvitation(userID, invitationID uint) error
}

// CategoryServicer defines the contract for expense categories. Categories
// are shared across households; only administrators may change them.
type CategoryServicer interface {
	CreateCategory(userID uint, name, color, icon string, sortOrder int, parentID *uint) (*models.Category, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name, color, icon string, sortOrder *int, parentID *uint) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// BudgetStatus is the computed utilization of one budget for its current
// period. Nothing here is persisted; it is derived from the expense ledger
// at evaluation time.
type BudgetStatus struct {
	BudgetID    uint             `json:"budget_id"`
	LimitAmount int64            `json:"limit_amount"`
	Spent       int64            `json:"spent"`
	Remaining   int64            `json:"remaining"`
	Percentage  float64          `json:"percentage"`
	Tier        models.AlertTier `json:"tier"`
	PeriodStart time.Time        `json:"period_start"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, householdID uint, categoryID *uint, limitAmount int64, period models.BudgetPeriod) (*models.Budget, error)
	GetHouseholdBudgets(userID, householdID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, limitAmount *int64, period *models.BudgetPeriod, isActive *bool) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	Evaluate(budget *models.Budget) (*BudgetStatus, error)
	GetHouseholdStatus(userID, householdID uint) ([]BudgetStatus, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *uint
	MinAmount  *int64
	MaxAmount  *int64
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID, householdID uint, categoryID *uint, description string, amount int64, date time.Time, notes string) (*models.Expense, error)
	GetHouseholdExpenses(userID, householdID uint, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID uint) (*models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
}

// NotificationServicer defines the contract for in-app notifications.
type NotificationServicer interface {
	Notify(userID uint, notifType models.NotificationType, title, message string, householdID *uint) (*models.Notification, error)
	NotifyHousehold(householdID uint, notifType models.NotificationType, title, message string) (int, error)
	GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error)
	UnreadCount(userID uint) (int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) (int64, error)
	DeleteNotification(userID, notificationID uint) error
}

// OverrideServicer defines the contract for per-household permission
// overrides on the financial capabilities.
type OverrideServicer interface {
	UpsertOverride(actorID, householdID, targetUserID uint, canAccessBudget, canCreateExpense, canDeleteExpense, canCreateBudget bool) (*models.PermissionOverride, error)
	GetOverride(actorID, householdID, targetUserID uint) (*models.PermissionOverride, error)
	ListOverrides(actorID, householdID uint) ([]models.PermissionOverride, error)
	DeleteOverride(actorID, householdID, targetUserID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any)
}
