package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/permissions"
)

// overrideService manages per-household permission overrides for the
// financial capabilities.
type overrideService struct {
	db       *gorm.DB
	resolver *permissions.Resolver
}

// NewOverrideService creates a new OverrideServicer.
func NewOverrideService(db *gorm.DB, resolver *permissions.Resolver) OverrideServicer {
	return &overrideService{db: db, resolver: resolver}
}

// requireManager verifies the actor belongs to the household and may
// manage its members.
func (s *overrideService) requireManager(actorID, householdID uint) error {
	if err := requireMember(s.db, actorID, householdID); err != nil {
		return err
	}
	actor, err := loadUser(s.db, actorID)
	if err != nil {
		return err
	}
	if !s.resolver.Resolve(actor, permissions.CapManageMembers, householdID) {
		return apperrors.ErrForbidden
	}
	return nil
}

// UpsertOverride creates or replaces the override row for the target user
// in the household. The cascading grant is applied before persisting, so a
// stored row is always normalized: full budget access implies the three
// narrower flags.
func (s *overrideService) UpsertOverride(actorID, householdID, targetUserID uint, canAccessBudget, canCreateExpense, canDeleteExpense, canCreateBudget bool) (*models.PermissionOverride, error) {
	if err := s.requireManager(actorID, householdID); err != nil {
		return nil, err
	}
	if err := requireMember(s.db, targetUserID, householdID); err != nil {
		return nil, err
	}

	override := &models.PermissionOverride{
		UserID:           targetUserID,
		HouseholdID:      householdID,
		CanAccessBudget:  canAccessBudget,
		CanCreateDepense: canCreateExpense,
		CanDeleteDepense: canDeleteExpense,
		CanCreateBudget:  canCreateBudget,
	}
	override.Normalize()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PermissionOverride
		err := tx.Where("user_id = ? AND household_id = ?", targetUserID, householdID).
			First(&existing).Error
		switch {
		case err == nil:
			override.ID = existing.ID
			override.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).Updates(map[string]interface{}{
				"can_access_budget":  override.CanAccessBudget,
				"can_create_depense": override.CanCreateDepense,
				"can_delete_depense": override.CanDeleteDepense,
				"can_create_budget":  override.CanCreateBudget,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(override).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return override, nil
}

// GetOverride returns the override row for the target user, if any.
func (s *overrideService) GetOverride(actorID, householdID, targetUserID uint) (*models.PermissionOverride, error) {
	if err := s.requireManager(actorID, householdID); err != nil {
		return nil, err
	}

	var override models.PermissionOverride
	if err := s.db.Where("user_id = ? AND household_id = ?", targetUserID, householdID).
		First(&override).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOverrideNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &override, nil
}

// ListOverrides returns all override rows for the household.
func (s *overrideService) ListOverrides(actorID, householdID uint) ([]models.PermissionOverride, error) {
	if err := s.requireManager(actorID, householdID); err != nil {
		return nil, err
	}

	var overrides []models.PermissionOverride
	if err := s.db.Preload("User").
		Where("household_id = ?", householdID).
		Find(&overrides).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return overrides, nil
}

// DeleteOverride removes the override row; the target falls back to the
// role matrix.
func (s *overrideService) DeleteOverride(actorID, householdID, targetUserID uint) error {
	if err := s.requireManager(actorID, householdID); err != nil {
		return err
	}

	result := s.db.Where("user_id = ? AND household_id = ?", targetUserID, householdID).
		Delete(&models.PermissionOverride{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrOverrideNotFound
	}
	return nil
}
