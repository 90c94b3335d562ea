package services

import (
	"testing"

	"keyper/internal/models"
	"keyper/internal/permissions"
	"keyper/internal/testutil"
)

func TestUpsertOverride(t *testing.T) {
	t.Run("admin_grants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewOverrideService(db, permissions.NewResolver(db))
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, admin, member)

		override, err := svc.UpsertOverride(admin.ID, household.ID, member.ID, false, true, false, false)
		testutil.AssertNoError(t, err)

		if !override.CanCreateDepense {
			t.Error("expected expense creation to be granted")
		}
		if override.CanAccessBudget || override.CanDeleteDepense || override.CanCreateBudget {
			t.Error("expected other flags to stay false")
		}
	})

	t.Run("full_access_cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewOverrideService(db, permissions.NewResolver(db))
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, admin, member)

		override, err := svc.UpsertOverride(admin.ID, household.ID, member.ID, true, false, false, false)
		testutil.AssertNoError(t, err)

		if !override.CanCreateDepense || !override.CanDeleteDepense || !override.CanCreateBudget {
			t.Error("expected full budget access to cascade into all financial flags")
		}

		// The stored row is normalized too, not just the returned value.
		var stored models.PermissionOverride
		if err := db.Where("user_id = ? AND household_id = ?", member.ID, household.ID).First(&stored).Error; err != nil {
			t.Fatalf("failed to load stored override: %v", err)
		}
		if !stored.CanCreateDepense || !stored.CanDeleteDepense || !stored.CanCreateBudget {
			t.Error("expected stored row to be normalized")
		}
	})

	t.Run("upsert_replaces_existing_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewOverrideService(db, permissions.NewResolver(db))
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		member := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, admin, member)

		first, err := svc.UpsertOverride(admin.ID, household.ID, member.ID, false, true, false, false)
		testutil.AssertNoError(t, err)
		second, err := svc.UpsertOverride(admin.ID, household.ID, member.ID, false, false, true, false)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Error("expected the same row to be updated, not a new one")
		}

		var count int64
		db.Model(&models.PermissionOverride{}).
			Where("user_id = ? AND household_id = ?", member.ID, household.ID).
			Count(&count)
		if count != 1 {
			t.Errorf("expected exactly one override row per pair, got %d", count)
		}

		var stored models.PermissionOverride
		db.First(&stored, second.ID)
		if stored.CanCreateDepense {
			t.Error("expected the replaced flag to be cleared")
		}
		if !stored.CanDeleteDepense {
			t.Error("expected the new flag to be set")
		}
	})

	t.Run("member_cannot_grant", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewOverrideService(db, permissions.NewResolver(db))
		member := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, member, other)

		_, err := svc.UpsertOverride(member.ID, household.ID, other.ID, true, true, true, true)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("target_must_be_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewOverrideService(db, permissions.NewResolver(db))
		admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
		outsider := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, admin)

		_, err := svc.UpsertOverride(admin.ID, household.ID, outsider.ID, false, true, false, false)
		testutil.AssertAppError(t, err, "NOT_A_MEMBER")
	})
}

func TestGetAndListOverrides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewOverrideService(db, permissions.NewResolver(db))
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
	member := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	household := testutil.CreateTestHousehold(t, db, admin, member, other)

	_, err := svc.UpsertOverride(admin.ID, household.ID, member.ID, false, true, false, false)
	testutil.AssertNoError(t, err)
	_, err = svc.UpsertOverride(admin.ID, household.ID, other.ID, true, false, false, false)
	testutil.AssertNoError(t, err)

	override, err := svc.GetOverride(admin.ID, household.ID, member.ID)
	testutil.AssertNoError(t, err)
	if !override.CanCreateDepense {
		t.Error("expected member's override to grant expense creation")
	}

	overrides, err := svc.ListOverrides(admin.ID, household.ID)
	testutil.AssertNoError(t, err)
	if len(overrides) != 2 {
		t.Errorf("expected 2 overrides, got %d", len(overrides))
	}

	_, err = svc.GetOverride(admin.ID, household.ID, admin.ID)
	testutil.AssertAppError(t, err, "OVERRIDE_NOT_FOUND")
}

func TestDeleteOverride(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	resolver := permissions.NewResolver(db)
	svc := NewOverrideService(db, resolver)
	admin := testutil.CreateTestUserWithRole(t, db, models.RoleAdmin)
	member := testutil.CreateTestUser(t, db)
	household := testutil.CreateTestHousehold(t, db, admin, member)

	_, err := svc.UpsertOverride(admin.ID, household.ID, member.ID, false, true, false, false)
	testutil.AssertNoError(t, err)
	if !resolver.Resolve(member, permissions.CapCreateExpense, household.ID) {
		t.Fatal("expected grant before deletion")
	}

	err = svc.DeleteOverride(admin.ID, household.ID, member.ID)
	testutil.AssertNoError(t, err)

	// Back to the matrix answer.
	if resolver.Resolve(member, permissions.CapCreateExpense, household.ID) {
		t.Error("expected matrix answer after deletion")
	}

	err = svc.DeleteOverride(admin.ID, household.ID, member.ID)
	testutil.AssertAppError(t, err, "OVERRIDE_NOT_FOUND")
}
