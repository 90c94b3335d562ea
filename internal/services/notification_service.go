package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/pagination"
)

// notificationService handles in-app notification business logic.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Notify creates a notification for one user.
func (s *notificationService) Notify(userID uint, notifType models.NotificationType, title, message string, householdID *uint) (*models.Notification, error) {
	if title == "" || message == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title and message are required")
	}

	notification := &models.Notification{
		UserID:      userID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		HouseholdID: householdID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notification, nil
}

// NotifyHousehold creates one notification per household member and
// returns how many were created. Every member is addressed, including
// whoever triggered the underlying event.
func (s *notificationService) NotifyHousehold(householdID uint, notifType models.NotificationType, title, message string) (int, error) {
	var household models.Household
	if err := s.db.First(&household, householdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrHouseholdNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var members []models.User
	if err := s.db.Model(&household).Association("Members").Find(&members); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	notifications := make([]models.Notification, 0, len(members))
	for _, member := range members {
		notifications = append(notifications, models.Notification{
			UserID:      member.ID,
			Type:        notifType,
			Title:       title,
			Message:     message,
			HouseholdID: &household.ID,
		})
	}

	if err := s.db.Create(&notifications).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(notifications), nil
}

// GetUserNotifications returns a paginated list of the user's
// notifications, newest first.
func (s *notificationService) GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		base = base.Where("read = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := base.Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *notificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *notificationService) MarkRead(userID, notificationID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks all of the user's unread notifications as read and
// returns how many changed.
func (s *notificationService) MarkAllRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteNotification removes one of the user's notifications.
func (s *notificationService) DeleteNotification(userID, notificationID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
