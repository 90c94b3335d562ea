package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
)

// loadUser fetches a user by ID for permission evaluation.
func loadUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// memberOf reports whether the user belongs to the household.
func memberOf(db *gorm.DB, userID, householdID uint) (bool, error) {
	var count int64
	err := db.Table("household_members").
		Where("user_id = ? AND household_id = ?", userID, householdID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// requireMember returns ErrNotAMember unless the user belongs to the household.
func requireMember(db *gorm.DB, userID, householdID uint) error {
	ok, err := memberOf(db, userID, householdID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotAMember
	}
	return nil
}

// isUniqueConstraintError detects unique constraint violations across the
// Postgres and SQLite drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique failed")
}
