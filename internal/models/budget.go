package models

// BudgetPeriod represents the accounting window of a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
)

// AlertTier classifies a budget's current utilization. Consumed by the
// presentation layer to pick styling and urgency.
type AlertTier string

const (
	AlertTierSuccess AlertTier = "success"
	AlertTierWarning AlertTier = "warning"
	AlertTierDanger  AlertTier = "danger"
)

// Budget is a recurring spending limit for a household, optionally narrowed
// to one category. Utilization is never stored; it is recomputed from the
// expense ledger on every evaluation.
type Budget struct {
	Base
	HouseholdID uint         `gorm:"not null;index" json:"household_id"`
	CategoryID  *uint        `json:"category_id,omitempty"`
	LimitAmount int64        `gorm:"not null" json:"limit_amount"`
	Period      BudgetPeriod `gorm:"not null;default:'monthly'" json:"period"`
	IsActive    bool         `gorm:"default:true" json:"is_active"`

	// Relationships
	Household Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
