package permissions

import (
	"testing"

	"keyper/internal/models"
)

func TestRoleAllowsFinancialCapabilities(t *testing.T) {
	cases := []struct {
		role models.Role
		cap  Capability
		want bool
	}{
		{models.RoleAdmin, CapAccessBudget, true},
		{models.RoleAdmin, CapCreateExpense, true},
		{models.RoleAdmin, CapDeleteExpense, true},
		{models.RoleAdmin, CapCreateBudget, true},

		{models.RoleTreasurer, CapAccessBudget, true},
		{models.RoleTreasurer, CapCreateExpense, true},
		{models.RoleTreasurer, CapDeleteExpense, true},
		{models.RoleTreasurer, CapCreateBudget, true},

		{models.RoleMember, CapAccessBudget, true},
		{models.RoleMember, CapCreateExpense, false},
		{models.RoleMember, CapDeleteExpense, false},
		{models.RoleMember, CapCreateBudget, false},

		{models.RoleJunior, CapAccessBudget, false},
		{models.RoleJunior, CapCreateExpense, false},
		{models.RoleJunior, CapDeleteExpense, false},
		{models.RoleJunior, CapCreateBudget, false},

		{models.RoleGuest, CapAccessBudget, false},
		{models.RoleGuest, CapCreateExpense, false},
		{models.RoleGuest, CapDeleteExpense, false},
		{models.RoleGuest, CapCreateBudget, false},

		{models.RoleObserver, CapAccessBudget, false},
		{models.RoleObserver, CapCreateExpense, false},
		{models.RoleObserver, CapDeleteExpense, false},
		{models.RoleObserver, CapCreateBudget, false},
	}

	for _, tc := range cases {
		if got := RoleAllows(tc.role, tc.cap); got != tc.want {
			t.Errorf("RoleAllows(%s, %s) = %v, want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}

func TestRoleAllowsNonFinancial(t *testing.T) {
	if !RoleAllows(models.RoleAdmin, CapManageMembers) {
		t.Error("expected admin to manage members")
	}
	if RoleAllows(models.RoleTreasurer, CapManageMembers) {
		t.Error("expected treasurer not to manage members")
	}
	if !RoleAllows(models.RoleMember, CapCompleteTask) {
		t.Error("expected member to complete tasks")
	}
	if RoleAllows(models.RoleGuest, CapCreateTask) {
		t.Error("expected guest not to create tasks")
	}
	// Every role may create a household of their own.
	for _, role := range Roles() {
		if !RoleAllows(role, CapCreateHousehold) {
			t.Errorf("expected role %s to create households", role)
		}
	}
}

func TestRoleAllowsAbsentKeyDenies(t *testing.T) {
	// The treasurer dictionary has no entry for these capabilities at all;
	// an absent key must read as deny, not as an error.
	if RoleAllows(models.RoleTreasurer, CapReactivateOwnTask) {
		t.Error("expected absent capability key to deny")
	}
	if RoleAllows(models.RoleGuest, CapViewInventory) {
		t.Error("expected absent capability key to deny")
	}
}

func TestRoleAllowsUnknownRoleFallsBackToMember(t *testing.T) {
	unknown := models.Role("stagiaire")
	for _, cap := range []Capability{CapAccessBudget, CapCreateExpense, CapCreateTask, CapManageMembers} {
		if got, want := RoleAllows(unknown, cap), RoleAllows(models.RoleMember, cap); got != want {
			t.Errorf("RoleAllows(unknown, %s) = %v, want member answer %v", cap, got, want)
		}
	}
}

func TestIsFinancial(t *testing.T) {
	for _, cap := range []Capability{CapAccessBudget, CapCreateExpense, CapDeleteExpense, CapCreateBudget} {
		if !IsFinancial(cap) {
			t.Errorf("expected %s to be financial", cap)
		}
	}
	for _, cap := range []Capability{CapRequestBudget, CapManageMembers, CapAccessChat} {
		if IsFinancial(cap) {
			t.Errorf("expected %s not to be financial", cap)
		}
	}
}
