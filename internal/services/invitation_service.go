package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/logger"
	"keyper/internal/models"
	"keyper/internal/permissions"
)

// invitationService handles invitation codes for joining households.
type invitationService struct {
	db            *gorm.DB
	resolver      *permissions.Resolver
	notifications NotificationServicer
}

// NewInvitationService creates a new InvitationServicer.
func NewInvitationService(db *gorm.DB, resolver *permissions.Resolver, notifications NotificationServicer) InvitationServicer {
	return &invitationService{db: db, resolver: resolver, notifications: notifications}
}

// CreateInvitation issues a single-use invitation code for the household.
func (s *invitationService) CreateInvitation(userID, householdID uint, role models.Role, label string) (*models.Invitation, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapGenerateInvitation, householdID) {
		return nil, apperrors.ErrForbidden
	}

	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidRole(role) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown role")
	}

	invitation := &models.Invitation{
		HouseholdID: householdID,
		Role:        role,
		Label:       label,
	}
	if err := s.db.Create(invitation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return invitation, nil
}

// ListInvitations returns the invitations issued for a household.
func (s *invitationService) ListInvitations(userID, householdID uint) ([]models.Invitation, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapManageMembers, householdID) {
		return nil, apperrors.ErrForbidden
	}

	var invitations []models.Invitation
	if err := s.db.Where("household_id = ?", householdID).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invitations, nil
}

// AcceptInvitation redeems an invitation code: the user joins the household
// with the invited role and the code is burned. Existing members of the
// household are notified of the arrival.
func (s *invitationService) AcceptInvitation(userID uint, code string) (*models.Household, error) {
	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	var invitation models.Invitation
	if err := s.db.Where("code = ?", code).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !invitation.IsValid(time.Now()) {
		return nil, apperrors.ErrInvitationInvalid
	}

	alreadyMember, err := memberOf(s.db, userID, invitation.HouseholdID)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, apperrors.ErrAlreadyMember
	}

	var household models.Household
	if err := s.db.First(&household, invitation.HouseholdID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var existing []models.User
	if err := s.db.Model(&household).Association("Members").Find(&existing); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Burn the code first; the unique row guard keeps redemption single-use.
		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND used = ?", invitation.ID, false).
			Update("used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrInvitationInvalid
		}

		if err := tx.Model(&household).Association("Members").Append(user); err != nil {
			return err
		}

		updates := map[string]interface{}{"role": invitation.Role}
		if user.ActiveHouseholdID == nil {
			updates["active_household_id"] = household.ID
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	title := "New household member"
	message := fmt.Sprintf("%s joined %s.", name, household.Name)
	for _, member := range existing {
		if _, err := s.notifications.Notify(member.ID, models.NotificationTypeNewMember, title, message, &household.ID); err != nil {
			logger.Get().Errorw("failed to notify member of new arrival",
				"user_id", member.ID,
				"household_id", household.ID,
				"error", err,
			)
		}
	}

	return &household, nil
}

// RevokeInvitation marks an unused invitation as used so it can no longer
// be redeemed.
func (s *invitationService) RevokeInvitation(userID, invitationID uint) error {
	var invitation models.Invitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvitationNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := requireMember(s.db, userID, invitation.HouseholdID); err != nil {
		return err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return err
	}
	if !s.resolver.Resolve(user, permissions.CapManageMembers, invitation.HouseholdID) {
		return apperrors.ErrForbidden
	}

	if invitation.Used {
		return apperrors.ErrInvitationInvalid
	}

	if err := s.db.Model(&invitation).Update("used", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
