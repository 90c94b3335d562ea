// Package permissions implements KeyPer's authorization model: a static
// role→capability matrix shared by every call site, layered under
// per-household overrides for the financial capabilities.
package permissions

// Capability is a named permission flag checked before an action. The set
// is closed: the string tags below are the contract between the resolver
// and every call site, and they match the values the original KeyPer
// database was deployed with.
type Capability string

const (
	// Households
	CapCreateHousehold Capability = "can_create_foyer"
	CapEditHousehold   Capability = "can_edit_foyer"
	CapDeleteHousehold Capability = "can_delete_foyer"

	// Rooms and pets
	CapAddRoom            Capability = "can_add_piece"
	CapDeleteRoom         Capability = "can_delete_piece"
	CapAddPet             Capability = "can_add_animal"
	CapDeletePet          Capability = "can_delete_animal"
	CapRestrictRoomAccess Capability = "can_restrict_piece_access"

	// Tasks and calendar
	CapCreateTask        Capability = "can_create_tache"
	CapEditTask          Capability = "can_edit_tache"
	CapDeleteTask        Capability = "can_delete_tache"
	CapAssignTask        Capability = "can_assign_tache"
	CapCompleteTask      Capability = "can_terminer_tache"
	CapReactivateOwnTask Capability = "can_reactivate_own_tache"
	CapAccessCalendar    Capability = "can_access_calendrier"
	CapAddEvent          Capability = "can_add_evenement"
	CapAccessTaskHistory Capability = "can_access_historique_taches"

	// Membership
	CapManageMembers      Capability = "can_manage_members"
	CapGenerateInvitation Capability = "can_generate_invitation"
	CapDeleteMember       Capability = "can_delete_member"

	// Budget and expenses. These four are the only capabilities a
	// per-household override can replace.
	CapAccessBudget  Capability = "can_access_budget"
	CapCreateExpense Capability = "can_create_depense"
	CapDeleteExpense Capability = "can_delete_depense"
	CapCreateBudget  Capability = "can_create_budget"
	CapRequestBudget Capability = "can_request_budget"

	// Requests
	CapManageRequests Capability = "can_manage_demandes"
	CapAccessRequests Capability = "can_access_demandes"

	// Chat and dashboard
	CapAccessChat        Capability = "can_access_chat"
	CapAccessDashboard   Capability = "can_access_dashboard"
	CapViewAllHouseholds Capability = "can_view_all_foyers"

	// Kitchen: inventory, stock, shopping lists, menus, recipes
	CapModifyInventory     Capability = "can_modify_inventaire"
	CapViewInventory       Capability = "can_view_inventaire"
	CapViewStock           Capability = "can_view_stock"
	CapModifyStock         Capability = "can_modify_stock"
	CapCreateShoppingList  Capability = "can_create_liste_courses"
	CapViewShoppingLists   Capability = "can_view_liste_courses"
	CapModifyShoppingLists Capability = "can_modify_liste_courses"
	CapViewMenus           Capability = "can_view_menus"
	CapModifyMenus         Capability = "can_modify_menus"
	CapViewRecipes         Capability = "can_view_recettes"
	CapGenerateRecipes     Capability = "can_generate_recettes"
	CapViewRecipeHistory   Capability = "can_view_historique_recettes"

	// Misc
	CapAddNote           Capability = "can_add_note"
	CapAccessRewards     Capability = "can_access_recompenses"
	CapAccessTrophies    Capability = "can_access_trophees"
	CapManagePreferences Capability = "can_manage_preferences"
	CapViewStats         Capability = "can_view_stats"
)

// financialCapabilities are the capabilities a PermissionOverride row can
// replace. All other capabilities stay role-fixed.
var financialCapabilities = map[Capability]bool{
	CapAccessBudget:  true,
	CapCreateExpense: true,
	CapDeleteExpense: true,
	CapCreateBudget:  true,
}

// IsFinancial reports whether cap is one of the four override-able
// financial capabilities.
func IsFinancial(cap Capability) bool {
	return financialCapabilities[cap]
}
