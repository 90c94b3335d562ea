package models

// PermissionOverride is a per-(user, household) grant that replaces the
// role matrix answer for the four financial capabilities. At most one row
// exists per pair. Rows are created and edited only by a household admin.
type PermissionOverride struct {
	Base
	UserID           uint `gorm:"not null;uniqueIndex:idx_override_user_household" json:"user_id"`
	HouseholdID      uint `gorm:"not null;uniqueIndex:idx_override_user_household" json:"household_id"`
	CanAccessBudget  bool `gorm:"default:false" json:"can_access_budget"`
	CanCreateDepense bool `gorm:"default:false" json:"can_create_depense"`
	CanDeleteDepense bool `gorm:"default:false" json:"can_delete_depense"`
	CanCreateBudget  bool `gorm:"default:false" json:"can_create_budget"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Household Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// Normalize applies the cascading grant: full budget access implies the
// three narrower financial capabilities. The write path calls this before
// persisting; it is deliberately not a GORM hook so the rule stays visible
// and testable on its own.
func (o *PermissionOverride) Normalize() {
	if o.CanAccessBudget {
		o.CanCreateDepense = true
		o.CanDeleteDepense = true
		o.CanCreateBudget = true
	}
}
