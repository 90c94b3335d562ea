package services

import (
	"testing"

	"keyper/internal/models"
	"keyper/internal/pagination"
	"keyper/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("admin_creates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

		category, err := svc.CreateCategory(admin.ID, "Alimentation", "#28a745", "bi-basket", 1, nil)
		testutil.AssertNoError(t, err)

		if category.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if category.Color != "#28a745" {
			t.Errorf("expected custom color, got %s", category.Color)
		}
	})

	t.Run("defaults_applied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

		category, err := svc.CreateCategory(admin.ID, "Divers", "", "", 0, nil)
		testutil.AssertNoError(t, err)
		if category.Color != "#0d6efd" {
			t.Errorf("expected default color, got %s", category.Color)
		}
		if category.Icon != "bi-tag" {
			t.Errorf("expected default icon, got %s", category.Icon)
		}
	})

	t.Run("member_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		member := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(member.ID, "Nope", "", "", 0, nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("subcategory_of_subcategory_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

		parent, err := svc.CreateCategory(admin.ID, "Maison", "", "", 0, nil)
		testutil.AssertNoError(t, err)
		child, err := svc.CreateCategory(admin.ID, "Jardin", "", "", 0, &parent.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(admin.ID, "Trop profond", "", "", 0, &child.ID)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCategoryFullName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

	parent, err := svc.CreateCategory(admin.ID, "Maison", "", "", 0, nil)
	testutil.AssertNoError(t, err)
	child, err := svc.CreateCategory(admin.ID, "Jardin", "", "", 0, &parent.ID)
	testutil.AssertNoError(t, err)

	loaded, err := svc.GetCategoryByID(child.ID)
	testutil.AssertNoError(t, err)
	if got := loaded.FullName(); got != "Maison > Jardin" {
		t.Errorf("expected 'Maison > Jardin', got %q", got)
	}
}

func TestGetCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

	for _, name := range []string{"B", "A", "C"} {
		_, err := svc.CreateCategory(admin.ID, name, "", "", 0, nil)
		testutil.AssertNoError(t, err)
	}

	result, err := svc.GetCategories(pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if result.TotalItems != 3 {
		t.Fatalf("expected 3 categories, got %d", result.TotalItems)
	}
	// Equal sort order falls back to name order.
	if result.Data[0].Name != "A" {
		t.Errorf("expected A first, got %s", result.Data[0].Name)
	}
}

func TestUpdateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
	member := testutil.CreateTestUser(t, db)

	category, err := svc.CreateCategory(admin.ID, "Ancien", "", "", 0, nil)
	testutil.AssertNoError(t, err)

	_, err = svc.UpdateCategory(member.ID, category.ID, "Hacked", "", "", nil, nil)
	testutil.AssertAppError(t, err, "FORBIDDEN")

	_, err = svc.UpdateCategory(admin.ID, category.ID, "", "", "", nil, &category.ID)
	testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")

	updated, err := svc.UpdateCategory(admin.ID, category.ID, "Nouveau", "#ff0000", "", nil, nil)
	testutil.AssertNoError(t, err)
	if updated.Name != "Nouveau" {
		t.Errorf("expected renamed category, got %s", updated.Name)
	}
}

func TestDeleteCategory(t *testing.T) {
	t.Run("in_use_by_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		household := testutil.CreateTestHousehold(t, db, admin)

		category, err := svc.CreateCategory(admin.ID, "Occupée", "", "", 0, nil)
		testutil.AssertNoError(t, err)
		testutil.CreateTestExpense(t, db, household.ID, &category.ID, 100)

		err = svc.DeleteCategory(admin.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("in_use_by_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		household := testutil.CreateTestHousehold(t, db, admin)

		category, err := svc.CreateCategory(admin.ID, "Budgétée", "", "", 0, nil)
		testutil.AssertNoError(t, err)
		testutil.CreateTestBudget(t, db, household.ID, &category.ID, 1000)

		err = svc.DeleteCategory(admin.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("has_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

		parent, err := svc.CreateCategory(admin.ID, "Parent", "", "", 0, nil)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(admin.ID, "Enfant", "", "", 0, &parent.ID)
		testutil.AssertNoError(t, err)

		err = svc.DeleteCategory(admin.ID, parent.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("unused_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)

		category, err := svc.CreateCategory(admin.ID, "Libre", "", "", 0, nil)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteCategory(admin.ID, category.ID))

		_, err = svc.GetCategoryByID(category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
