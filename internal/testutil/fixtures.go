package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"keyper/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active member user with a hashed password and
// unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleMember)
}

// CreateTestUserWithRole creates a user with the given role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSuperuser creates a staff superuser.
func CreateTestSuperuser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUserWithRole(t, db, models.RoleAdmin)
	if err := db.Model(user).Updates(map[string]interface{}{
		"is_staff":     true,
		"is_superuser": true,
	}).Error; err != nil {
		t.Fatalf("failed to promote test superuser: %v", err)
	}
	user.IsStaff = true
	user.IsSuperuser = true
	return user
}

// CreateTestHousehold creates a household with the given users as members.
func CreateTestHousehold(t *testing.T, db *gorm.DB, members ...*models.User) *models.Household {
	t.Helper()

	household := &models.Household{
		Name: fmt.Sprintf("Test Household %d", nextID()),
	}
	if err := db.Create(household).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}
	for _, member := range members {
		if err := db.Model(household).Association("Members").Append(member); err != nil {
			t.Fatalf("failed to add test household member: %v", err)
		}
	}
	return household
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:  fmt.Sprintf("Test Category %d", nextID()),
		Color: "#0d6efd",
		Icon:  "bi-tag",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates an active monthly budget for the household.
func CreateTestBudget(t *testing.T, db *gorm.DB, householdID uint, categoryID *uint, limitAmount int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		HouseholdID: householdID,
		CategoryID:  categoryID,
		LimitAmount: limitAmount,
		Period:      models.BudgetPeriodMonthly,
		IsActive:    true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates an expense dated now.
func CreateTestExpense(t *testing.T, db *gorm.DB, householdID uint, categoryID *uint, amount int64) *models.Expense {
	t.Helper()
	return CreateTestExpenseOn(t, db, householdID, categoryID, amount, time.Now())
}

// CreateTestExpenseOn creates an expense with the given date.
func CreateTestExpenseOn(t *testing.T, db *gorm.DB, householdID uint, categoryID *uint, amount int64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		HouseholdID: householdID,
		CategoryID:  categoryID,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Amount:      amount,
		Date:        date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestOverride creates a normalized permission override row.
func CreateTestOverride(t *testing.T, db *gorm.DB, userID, householdID uint, accessBudget, createExpense, deleteExpense, createBudget bool) *models.PermissionOverride {
	t.Helper()

	override := &models.PermissionOverride{
		UserID:           userID,
		HouseholdID:      householdID,
		CanAccessBudget:  accessBudget,
		CanCreateDepense: createExpense,
		CanDeleteDepense: deleteExpense,
		CanCreateBudget:  createBudget,
	}
	override.Normalize()
	if err := db.Create(override).Error; err != nil {
		t.Fatalf("failed to create test permission override: %v", err)
	}
	return override
}
