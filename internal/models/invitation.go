package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// invitationValidity is how long an invitation code can be redeemed.
const invitationValidity = 7 * 24 * time.Hour

// Invitation is a single-use code that lets a user join a household with
// the role the inviter chose.
type Invitation struct {
	Base
	Code        string `gorm:"type:uuid;uniqueIndex;not null" json:"code"`
	HouseholdID uint   `gorm:"not null" json:"household_id"`
	Label       string `json:"label,omitempty"`
	Role        Role   `gorm:"not null;default:'membre'" json:"role"`
	Used        bool   `gorm:"default:false" json:"used"`

	// Relationships
	Household Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// BeforeCreate generates the invitation code if one was not supplied.
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.Code == "" {
		i.Code = uuid.New().String()
	}
	return nil
}

// IsValid reports whether the invitation is still redeemable.
func (i *Invitation) IsValid(now time.Time) bool {
	return !i.Used && now.Sub(i.CreatedAt) <= invitationValidity
}
