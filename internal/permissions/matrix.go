package permissions

import "keyper/internal/models"

// matrix maps each role to its full capability dictionary. It is built once
// at package load and must never be mutated at runtime; access goes through
// RoleAllows, which never hands the maps out. A capability absent from a
// role's dictionary resolves to deny.
var matrix = map[models.Role]map[Capability]bool{
	models.RoleAdmin: {
		CapCreateHousehold:     true,
		CapEditHousehold:       true,
		CapDeleteHousehold:     true,
		CapAddRoom:             true,
		CapDeleteRoom:          true,
		CapAddPet:              true,
		CapDeletePet:           true,
		CapRestrictRoomAccess:  true,
		CapCreateTask:          true,
		CapEditTask:            true,
		CapDeleteTask:          true,
		CapAssignTask:          true,
		CapCompleteTask:        true,
		CapReactivateOwnTask:   true,
		CapAccessCalendar:      true,
		CapAddEvent:            true,
		CapAccessTaskHistory:   true,
		CapManageMembers:       true,
		CapGenerateInvitation:  true,
		CapDeleteMember:        true,
		CapAccessBudget:        true,
		CapCreateExpense:       true,
		CapDeleteExpense:       true,
		CapCreateBudget:        true,
		CapManageRequests:      true,
		CapAccessChat:          true,
		CapAccessDashboard:     true,
		CapViewAllHouseholds:   true,
		CapModifyInventory:     true,
		CapViewStock:           true,
		CapModifyStock:         true,
		CapCreateShoppingList:  true,
		CapViewShoppingLists:   true,
		CapModifyShoppingLists: true,
		CapViewMenus:           true,
		CapModifyMenus:         true,
		CapViewRecipes:         true,
		CapGenerateRecipes:     true,
		CapViewRecipeHistory:   true,
		CapAddNote:             true,
		CapAccessRewards:       true,
		CapAccessTrophies:      true,
		CapManagePreferences:   true,
		CapViewStats:           true,
		CapAccessRequests:      true,
	},
	models.RoleTreasurer: {
		CapCreateHousehold:     true,
		CapEditHousehold:       false,
		CapDeleteHousehold:     false,
		CapAddRoom:             false,
		CapDeleteRoom:          false,
		CapAddPet:              false,
		CapDeletePet:           false,
		CapCreateTask:          false,
		CapEditTask:            false,
		CapDeleteTask:          false,
		CapAssignTask:          false,
		CapCompleteTask:        false,
		CapManageMembers:       false,
		CapGenerateInvitation:  false,
		CapDeleteMember:        false,
		CapAccessBudget:        true,
		CapCreateExpense:       true,
		CapDeleteExpense:       true,
		CapCreateBudget:        true,
		CapAccessChat:          true,
		CapAccessDashboard:     false,
		CapViewAllHouseholds:   false,
		CapViewStock:           false,
		CapModifyStock:         false,
		CapCreateShoppingList:  false,
		CapViewShoppingLists:   false,
		CapModifyShoppingLists: false,
		CapViewMenus:           false,
		CapModifyMenus:         false,
		CapViewRecipes:         false,
		CapGenerateRecipes:     false,
		CapViewRecipeHistory:   false,
		CapAccessRequests:      true,
	},
	models.RoleMember: {
		CapCreateHousehold:     true,
		CapEditHousehold:       false,
		CapDeleteHousehold:     false,
		CapAddRoom:             false,
		CapDeleteRoom:          false,
		CapAddPet:              false,
		CapDeletePet:           false,
		CapCreateTask:          true,
		CapEditTask:            false,
		CapDeleteTask:          false,
		CapAssignTask:          false,
		CapCompleteTask:        true,
		CapReactivateOwnTask:   true,
		CapAccessCalendar:      true,
		CapAddEvent:            true,
		CapAccessTaskHistory:   true,
		CapManageMembers:       false,
		CapGenerateInvitation:  false,
		CapDeleteMember:        false,
		CapAccessBudget:        true,
		CapCreateExpense:       false,
		CapDeleteExpense:       false,
		CapCreateBudget:        false,
		CapRequestBudget:       true,
		CapAccessChat:          true,
		CapAccessDashboard:     true,
		CapViewAllHouseholds:   false,
		CapModifyInventory:     true,
		CapViewStock:           true,
		CapModifyStock:         true,
		CapCreateShoppingList:  true,
		CapViewShoppingLists:   true,
		CapModifyShoppingLists: true,
		CapViewMenus:           true,
		CapModifyMenus:         true,
		CapViewRecipes:         true,
		CapGenerateRecipes:     true,
		CapViewRecipeHistory:   true,
		CapAddNote:             true,
		CapAccessRewards:       true,
		CapAccessTrophies:      true,
		CapManagePreferences:   true,
		CapViewStats:           true,
		CapAccessRequests:      true,
	},
	models.RoleJunior: {
		CapCreateHousehold:     true,
		CapEditHousehold:       false,
		CapDeleteHousehold:     false,
		CapAddRoom:             false,
		CapDeleteRoom:          false,
		CapAddPet:              false,
		CapDeletePet:           false,
		CapCreateTask:          true,
		CapEditTask:            false,
		CapDeleteTask:          false,
		CapAssignTask:          false,
		CapCompleteTask:        true,
		CapReactivateOwnTask:   true,
		CapAccessCalendar:      true,
		CapAddEvent:            true,
		CapAccessTaskHistory:   true,
		CapManageMembers:       false,
		CapGenerateInvitation:  false,
		CapDeleteMember:        false,
		CapAccessBudget:        false,
		CapCreateExpense:       false,
		CapDeleteExpense:       false,
		CapCreateBudget:        false,
		CapRequestBudget:       false,
		CapAccessChat:          true,
		CapAccessDashboard:     true,
		CapViewAllHouseholds:   false,
		CapModifyInventory:     false,
		CapViewInventory:       true,
		CapViewStock:           true,
		CapModifyStock:         false,
		CapCreateShoppingList:  false,
		CapViewShoppingLists:   true,
		CapModifyShoppingLists: false,
		CapViewMenus:           true,
		CapModifyMenus:         false,
		CapViewRecipes:         true,
		CapGenerateRecipes:     false,
		CapViewRecipeHistory:   true,
		CapAddNote:             true,
		CapAccessRewards:       true,
		CapAccessTrophies:      true,
		CapManagePreferences:   true,
		CapViewStats:           true,
		CapAccessRequests:      true,
	},
	models.RoleGuest: {
		CapCreateHousehold:     true,
		CapEditHousehold:       false,
		CapDeleteHousehold:     false,
		CapAddRoom:             false,
		CapDeleteRoom:          false,
		CapAddPet:              false,
		CapDeletePet:           false,
		CapCreateTask:          false,
		CapEditTask:            false,
		CapDeleteTask:          false,
		CapAssignTask:          false,
		CapCompleteTask:        false,
		CapManageMembers:       false,
		CapGenerateInvitation:  false,
		CapDeleteMember:        false,
		CapAccessBudget:        false,
		CapCreateExpense:       false,
		CapDeleteExpense:       false,
		CapCreateBudget:        false,
		CapAccessChat:          true,
		CapAccessDashboard:     false,
		CapViewAllHouseholds:   false,
		CapModifyInventory:     false,
		CapViewStock:           false,
		CapModifyStock:         false,
		CapCreateShoppingList:  false,
		CapViewShoppingLists:   false,
		CapModifyShoppingLists: false,
		CapViewMenus:           false,
		CapModifyMenus:         false,
		CapViewRecipes:         false,
		CapGenerateRecipes:     false,
		CapViewRecipeHistory:   false,
		CapAddNote:             false,
		CapAccessRewards:       false,
		CapAccessTrophies:      false,
		CapManagePreferences:   false,
		CapViewStats:           false,
		CapAccessRequests:      true,
	},
	models.RoleObserver: {
		CapCreateHousehold:     true,
		CapEditHousehold:       false,
		CapDeleteHousehold:     false,
		CapAddRoom:             false,
		CapDeleteRoom:          false,
		CapAddPet:              false,
		CapDeletePet:           false,
		CapCreateTask:          false,
		CapEditTask:            false,
		CapDeleteTask:          false,
		CapAssignTask:          false,
		CapCompleteTask:        false,
		CapReactivateOwnTask:   false,
		CapAccessCalendar:      true,
		CapAddEvent:            false,
		CapAccessTaskHistory:   true,
		CapManageMembers:       false,
		CapGenerateInvitation:  false,
		CapDeleteMember:        false,
		CapAccessBudget:        false,
		CapCreateExpense:       false,
		CapDeleteExpense:       false,
		CapCreateBudget:        false,
		CapRequestBudget:       false,
		CapAccessChat:          true,
		CapAccessDashboard:     true,
		CapViewAllHouseholds:   false,
		CapModifyInventory:     false,
		CapViewInventory:       true,
		CapViewStock:           true,
		CapModifyStock:         false,
		CapCreateShoppingList:  false,
		CapViewShoppingLists:   true,
		CapModifyShoppingLists: false,
		CapViewMenus:           true,
		CapModifyMenus:         false,
		CapViewRecipes:         true,
		CapGenerateRecipes:     false,
		CapViewRecipeHistory:   true,
		CapAddNote:             false,
		CapAccessRewards:       false,
		CapAccessTrophies:      false,
		CapManagePreferences:   true,
		CapViewStats:           true,
		CapAccessRequests:      true,
	},
}

// RoleAllows answers the matrix lookup for a role and capability. Unknown
// roles fall back to the membre dictionary, mirroring the default role
// assigned at registration. Absent capability keys deny.
func RoleAllows(role models.Role, cap Capability) bool {
	perms, ok := matrix[role]
	if !ok {
		perms = matrix[models.RoleMember]
	}
	return perms[cap]
}

// Roles returns the role tags that have a dictionary in the matrix.
func Roles() []models.Role {
	roles := make([]models.Role, 0, len(matrix))
	for r := range matrix {
		roles = append(roles, r)
	}
	return roles
}
