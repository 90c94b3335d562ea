package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/pagination"
	"keyper/internal/permissions"
)

// householdService handles household and membership business logic.
type householdService struct {
	db       *gorm.DB
	resolver *permissions.Resolver
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB, resolver *permissions.Resolver) HouseholdServicer {
	return &householdService{db: db, resolver: resolver}
}

// CreateHousehold creates a household and enrolls the creator as its first
// member. The creator's active household is switched to the new one.
func (s *householdService) CreateHousehold(userID uint, name, description string) (*models.Household, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapCreateHousehold, 0) {
		return nil, apperrors.ErrForbidden
	}

	household := &models.Household{
		Name:        name,
		Description: description,
		CreatedByID: &userID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(household).Error; err != nil {
			return err
		}
		if err := tx.Model(household).Association("Members").Append(user); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("active_household_id", household.ID).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return household, nil
}

// GetUserHouseholds returns a paginated list of households the user belongs to.
func (s *householdService) GetUserHouseholds(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Household], error) {
	page.Defaults()

	base := s.db.Model(&models.Household{}).
		Joins("JOIN household_members ON household_members.household_id = households.id").
		Where("household_members.user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var households []models.Household
	if err := base.Scopes(pagination.Paginate(page)).Find(&households).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(households, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetHouseholdByID returns a household by ID if the user is a member.
func (s *householdService) GetHouseholdByID(userID, householdID uint) (*models.Household, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	var household models.Household
	if err := s.db.Preload("Members").First(&household, householdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}

// UpdateHousehold updates a household's name and description.
func (s *householdService) UpdateHousehold(userID, householdID uint, name, description string) (*models.Household, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapEditHousehold, householdID) {
		return nil, apperrors.ErrForbidden
	}

	var household models.Household
	if err := s.db.First(&household, householdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if len(updates) > 0 {
		if err := s.db.Model(&household).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return &household, nil
}

// GetMembers returns all members of a household the user belongs to.
func (s *householdService) GetMembers(userID, householdID uint) ([]models.User, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	var household models.Household
	if err := s.db.First(&household, householdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var members []models.User
	if err := s.db.Model(&household).Association("Members").Find(&members); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

// SetActiveHousehold switches the household the user is currently acting in.
func (s *householdService) SetActiveHousehold(userID, householdID uint) error {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return err
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("active_household_id", householdID)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// RemoveMember removes a member from the household. Requires the member
// management capability; members may always remove themselves.
func (s *householdService) RemoveMember(userID, householdID, memberID uint) error {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return err
	}

	if userID != memberID {
		user, err := loadUser(s.db, userID)
		if err != nil {
			return err
		}
		if !s.resolver.Resolve(user, permissions.CapDeleteMember, householdID) {
			return apperrors.ErrForbidden
		}
	}

	ok, err := memberOf(s.db, memberID, householdID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotAMember
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		household := models.Household{Base: models.Base{ID: householdID}}
		member := models.User{Base: models.Base{ID: memberID}}
		if err := tx.Model(&household).Association("Members").Delete(&member); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Leaving the active household resets the member's context.
		return tx.Model(&models.User{}).
			Where("id = ? AND active_household_id = ?", memberID, householdID).
			Update("active_household_id", nil).Error
	})
}

// IsMember reports whether the user belongs to the household.
func (s *householdService) IsMember(userID, householdID uint) (bool, error) {
	return memberOf(s.db, userID, householdID)
}
