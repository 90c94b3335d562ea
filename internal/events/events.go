package events

import "keyper/internal/models"

// Event types published by the services.
const (
	ExpenseCreated EventType = "expense.created"
)

// ExpenseCreatedData is the payload of an ExpenseCreated event. The
// expense row is already committed when the event fires.
type ExpenseCreatedData struct {
	Expense models.Expense
}
