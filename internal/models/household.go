package models

// Household is the tenant unit: budgets, expenses, invitations, and
// permission overrides are all scoped to one household.
type Household struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CreatedByID *uint  `json:"created_by_id,omitempty"`

	// Relationships
	CreatedBy *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Members   []User    `gorm:"many2many:household_members" json:"members,omitempty"`
	Budgets   []Budget  `gorm:"foreignKey:HouseholdID" json:"budgets,omitempty"`
	Expenses  []Expense `gorm:"foreignKey:HouseholdID" json:"expenses,omitempty"`
}
