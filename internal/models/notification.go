package models

// NotificationType tags the domain event a notification was created for.
// The tags match the values stored by the original KeyPer database.
type NotificationType string

const (
	NotificationTypeTaskAssigned NotificationType = "tache_assignee"
	NotificationTypeTaskDone     NotificationType = "tache_complete"
	NotificationTypeTaskReminder NotificationType = "tache_rappel"
	NotificationTypeBudgetAlert  NotificationType = "budget_alerte"
	NotificationTypeNewMember    NotificationType = "nouveau_membre"
	NotificationTypeMessage      NotificationType = "message"
)

// Notification belongs to exactly one user. Notifications are created by
// the system as a side effect of domain events, never directly by a user;
// the recipient can mark them read or delete them, and they are otherwise
// left to accumulate.
type Notification struct {
	Base
	UserID      uint             `gorm:"not null;index" json:"user_id"`
	Type        NotificationType `gorm:"not null" json:"type"`
	Title       string           `gorm:"not null" json:"title"`
	Message     string           `gorm:"not null" json:"message"`
	Read        bool             `gorm:"default:false" json:"read"`
	HouseholdID *uint            `json:"household_id,omitempty"`

	// Relationships
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}
