package models

import "time"

// Expense is a single ledger entry. Amounts are stored in cents. An expense
// is immutable once created except for deletion.
type Expense struct {
	Base
	HouseholdID uint      `gorm:"not null;index" json:"household_id"`
	CategoryID  *uint     `json:"category_id,omitempty"`
	CreatedByID *uint     `json:"created_by_id,omitempty"`
	Description string    `gorm:"not null" json:"description"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Notes       string    `json:"notes,omitempty"`

	// Relationships
	Household Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedBy *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
