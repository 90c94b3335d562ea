package permissions

import (
	"errors"

	"gorm.io/gorm"

	"keyper/internal/logger"
	"keyper/internal/models"
)

// Resolver answers allow/deny for a user, capability, and household.
//
// Resolution order, first match wins:
//  1. staff + superuser: always allow.
//  2. a PermissionOverride row for (user, household), when the capability
//     is one of the four financial ones: the stored flag replaces the role
//     answer entirely.
//  3. the static role matrix; absent keys deny.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a Resolver backed by the given database.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve reports whether user may exercise cap within the household.
// A householdID of zero means no household context is available; the
// override layer is skipped and only the role matrix answers. A nil user
// is an unauthenticated caller and always denies.
//
// Resolve never fails: override lookup errors degrade silently to the
// matrix, and an unknown capability resolves to false rather than raising,
// since the capability set is closed at compile time.
func (r *Resolver) Resolve(user *models.User, cap Capability, householdID uint) bool {
	if user == nil {
		return false
	}

	if user.IsStaff && user.IsSuperuser {
		return true
	}

	if householdID != 0 && IsFinancial(cap) {
		var override models.PermissionOverride
		err := r.db.Where("user_id = ? AND household_id = ?", user.ID, householdID).
			First(&override).Error
		switch {
		case err == nil:
			switch cap {
			case CapAccessBudget:
				return override.CanAccessBudget
			case CapCreateExpense:
				return override.CanCreateDepense
			case CapDeleteExpense:
				return override.CanDeleteDepense
			case CapCreateBudget:
				return override.CanCreateBudget
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No override for this pair, fall through to the matrix.
		default:
			logger.Get().Warnw("permission override lookup failed, falling back to role matrix",
				"user_id", user.ID,
				"household_id", householdID,
				"capability", cap,
				"error", err,
			)
		}
	}

	return RoleAllows(user.Role, cap)
}
