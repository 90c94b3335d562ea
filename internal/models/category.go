package models

// Category represents an expense category. A category with a parent is a
// sub-category; principal categories have no parent. Budgets attached to a
// sub-category and to its parent are tracked independently, never rolled up.
type Category struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	Color     string `gorm:"not null;default:'#0d6efd'" json:"color"`
	Icon      string `gorm:"not null;default:'bi-tag'" json:"icon"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	ParentID  *uint  `json:"parent_id,omitempty"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Budgets  []Budget   `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
	Expenses []Expense  `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}

// FullName returns the display name prefixed with the parent name when the
// category is a sub-category. The Parent relation must be preloaded.
func (c *Category) FullName() string {
	if c.Parent != nil {
		return c.Parent.Name + " > " + c.Name
	}
	return c.Name
}
