package services

import (
	"testing"
	"time"

	"keyper/internal/events"
	"keyper/internal/models"
	"keyper/internal/pagination"
	"keyper/internal/permissions"
	"keyper/internal/testutil"
)

func TestCreateExpense(t *testing.T) {
	t.Run("treasurer_creates_and_event_fires", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		bus := events.NewBus()
		svc := NewExpenseService(db, permissions.NewResolver(db), bus)
		treasurer := testutil.CreateTestUserWithRole(t, db, models.RoleTreasurer)
		household := testutil.CreateTestHousehold(t, db, treasurer)
		cat := testutil.CreateTestCategory(t, db)

		var received []events.Event
		bus.Subscribe(events.ExpenseCreated, func(e events.Event) error {
			received = append(received, e)
			return nil
		})

		expense, err := svc.CreateExpense(treasurer.ID, household.ID, &cat.ID, "Groceries", 4500, time.Now(), "")
		testutil.AssertNoError(t, err)

		if expense.ID == 0 {
			t.Fatal("expected non-zero expense ID")
		}
		if expense.Amount != 4500 {
			t.Errorf("expected amount 4500, got %d", expense.Amount)
		}
		if len(received) != 1 {
			t.Fatalf("expected 1 event, got %d", len(received))
		}
		data, ok := received[0].Data.(events.ExpenseCreatedData)
		if !ok {
			t.Fatalf("unexpected event payload type %T", received[0].Data)
		}
		if data.Expense.ID != expense.ID {
			t.Errorf("expected event for expense %d, got %d", expense.ID, data.Expense.ID)
		}
	})

	t.Run("member_denied_by_matrix", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		bus := events.NewBus()
		svc := NewExpenseService(db, permissions.NewResolver(db), bus)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, member)

		var fired int
		bus.Subscribe(events.ExpenseCreated, func(events.Event) error {
			fired++
			return nil
		})

		_, err := svc.CreateExpense(member.ID, household.ID, nil, "Coffee", 300, time.Now(), "")
		testutil.AssertAppError(t, err, "FORBIDDEN")
		if fired != 0 {
			t.Errorf("expected no event on denied write, got %d", fired)
		}
	})

	t.Run("override_grants_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, permissions.NewResolver(db), events.NewBus())
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, member)
		testutil.CreateTestOverride(t, db, member.ID, household.ID, false, true, false, false)

		_, err := svc.CreateExpense(member.ID, household.ID, nil, "Coffee", 300, time.Now(), "")
		testutil.AssertNoError(t, err)
	})

	t.Run("non_member_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, permissions.NewResolver(db), events.NewBus())
		treasurer := testutil.CreateTestUserWithRole(t, db, models.RoleTreasurer)
		outsider := testutil.CreateTestUserWithRole(t, db, models.RoleTreasurer)
		household := testutil.CreateTestHousehold(t, db, treasurer)

		_, err := svc.CreateExpense(outsider.ID, household.ID, nil, "Sneaky", 100, time.Now(), "")
		testutil.AssertAppError(t, err, "NOT_A_MEMBER")
	})

	t.Run("write_survives_failing_subscriber", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		bus := events.NewBus()
		svc := NewExpenseService(db, permissions.NewResolver(db), bus)
		treasurer := testutil.CreateTestUserWithRole(t, db, models.RoleTreasurer)
		household := testutil.CreateTestHousehold(t, db, treasurer)

		bus.Subscribe(events.ExpenseCreated, func(events.Event) error {
			panic("subscriber blew up")
		})

		expense, err := svc.CreateExpense(treasurer.ID, household.ID, nil, "Rent", 90000, time.Now(), "")
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Expense{}).Where("id = ?", expense.ID).Count(&count)
		if count != 1 {
			t.Error("expected expense row to be committed despite subscriber panic")
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, permissions.NewResolver(db), events.NewBus())
		treasurer := testutil.CreateTestUserWithRole(t, db, models.RoleTreasurer)
		household := testutil.CreateTestHousehold(t, db, treasurer)

		_, err := svc.CreateExpense(treasurer.ID, household.ID, nil, "", 100, time.Now(), "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateExpense(treasurer.ID, household.ID, nil, "Free", 0, time.Now(), "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		missing := uint(9999)
		_, err = svc.CreateExpense(treasurer.ID, household.ID, &missing, "Ghost", 100, time.Now(), "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetHouseholdExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, permissions.NewResolver(db), events.NewBus())
	member := testutil.CreateTestUser(t, db)
	household := testutil.CreateTestHousehold(t, db, member)
	cat := testutil.CreateTestCategory(t, db)

	testutil.CreateTestExpense(t, db, household.ID, &cat.ID, 1000)
	testutil.CreateTestExpense(t, db, household.ID, &cat.ID, 5000)
	testutil.CreateTestExpense(t, db, household.ID, nil, 3000)

	result, err := svc.GetHouseholdExpenses(member.ID, household.ID, pagination.PageRequest{}, ExpenseFilter{})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 3 {
		t.Errorf("expected 3 expenses, got %d", result.TotalItems)
	}

	minAmount := int64(2000)
	result, err = svc.GetHouseholdExpenses(member.ID, household.ID, pagination.PageRequest{}, ExpenseFilter{
		CategoryID: &cat.ID,
		MinAmount:  &minAmount,
	})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 1 {
		t.Errorf("expected 1 filtered expense, got %d", result.TotalItems)
	}

	// Juniors have no budget access at all.
	junior := testutil.CreateTestUserWithRole(t, db, models.RoleJunior)
	if err := db.Model(&household).Association("Members").Append(junior); err != nil {
		t.Fatalf("failed to add junior: %v", err)
	}
	_, err = svc.GetHouseholdExpenses(junior.ID, household.ID, pagination.PageRequest{}, ExpenseFilter{})
	testutil.AssertAppError(t, err, "FORBIDDEN")
}

func TestDeleteExpense(t *testing.T) {
	t.Run("requires_delete_capability", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, permissions.NewResolver(db), events.NewBus())
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, member)
		expense := testutil.CreateTestExpense(t, db, household.ID, nil, 1000)

		err := svc.DeleteExpense(member.ID, expense.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("treasurer_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, permissions.NewResolver(db), events.NewBus())
		treasurer := testutil.CreateTestUserWithRole(t, db, models.RoleTreasurer)
		household := testutil.CreateTestHousehold(t, db, treasurer)
		expense := testutil.CreateTestExpense(t, db, household.ID, nil, 1000)

		err := svc.DeleteExpense(treasurer.ID, expense.ID)
		testutil.AssertNoError(t, err)

		err = svc.DeleteExpense(treasurer.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}
