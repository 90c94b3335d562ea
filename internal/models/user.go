package models

import "time"

// Role is a user's platform-level role. It sets the default capability
// grants everywhere; per-household overrides can widen the financial
// capabilities only (see PermissionOverride).
type Role string

// Role tags match the values stored by the original KeyPer database.
const (
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "tresorier"
	RoleMember    Role = "membre"
	RoleJunior    Role = "junior"
	RoleGuest     Role = "invite"
	RoleObserver  Role = "observateur"
)

// ValidRole reports whether r is one of the six known role tags.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleTreasurer, RoleMember, RoleJunior, RoleGuest, RoleObserver:
		return true
	}
	return false
}

// User represents the user model in the database
type User struct {
	Base
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	Password          string     `gorm:"not null" json:"-"`
	DisplayName       string     `json:"display_name"`
	Role              Role       `gorm:"not null;default:'membre'" json:"role"`
	ActiveHouseholdID *uint      `json:"active_household_id,omitempty"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	IsStaff           bool       `gorm:"default:false" json:"-"`
	IsSuperuser       bool       `gorm:"default:false" json:"-"`
	RefreshTokenHash  string     `gorm:"size:64" json:"-"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	ActiveHousehold *Household  `gorm:"foreignKey:ActiveHouseholdID" json:"active_household,omitempty"`
	Households      []Household `gorm:"many2many:household_members" json:"households,omitempty"`
}
