package services

import (
	"fmt"

	"gorm.io/gorm"

	"keyper/internal/events"
	"keyper/internal/logger"
	"keyper/internal/models"
)

// AlertDispatcher listens for created expenses and notifies every member
// of the household when a matching budget crosses into the warning or
// danger tier.
//
// With notifyEveryExpense set, the alert fires on every expense recorded
// while the budget sits at or above the warning threshold, so members may
// receive the same alert repeatedly. When unset, the alert fires only on
// the expense that moves the budget into a higher tier.
type AlertDispatcher struct {
	db                 *gorm.DB
	budgets            BudgetServicer
	notifications      NotificationServicer
	notifyEveryExpense bool
}

// NewAlertDispatcher creates an AlertDispatcher.
func NewAlertDispatcher(db *gorm.DB, budgets BudgetServicer, notifications NotificationServicer, notifyEveryExpense bool) *AlertDispatcher {
	return &AlertDispatcher{
		db:                 db,
		budgets:            budgets,
		notifications:      notifications,
		notifyEveryExpense: notifyEveryExpense,
	}
}

// Register subscribes the dispatcher to expense creation events. The
// returned function unsubscribes it.
func (d *AlertDispatcher) Register(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe(events.ExpenseCreated, d.HandleExpenseCreated)
}

// HandleExpenseCreated evaluates every active budget that matches the new
// expense and dispatches alerts for those in the warning or danger tier.
func (d *AlertDispatcher) HandleExpenseCreated(e events.Event) error {
	data, ok := e.Data.(events.ExpenseCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for event %s", e.Data, e.Type)
	}
	expense := data.Expense

	query := d.db.Where("household_id = ? AND is_active = ?", expense.HouseholdID, true)
	if expense.CategoryID != nil {
		query = query.Where("category_id = ?", *expense.CategoryID)
	} else {
		query = query.Where("category_id IS NULL")
	}

	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		return fmt.Errorf("loading budgets for expense %d: %w", expense.ID, err)
	}

	for i := range budgets {
		if err := d.checkBudget(&budgets[i], &expense); err != nil {
			logger.Get().Errorw("budget alert check failed",
				"budget_id", budgets[i].ID,
				"expense_id", expense.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (d *AlertDispatcher) checkBudget(budget *models.Budget, expense *models.Expense) error {
	status, err := d.budgets.Evaluate(budget)
	if err != nil {
		return err
	}
	if status.Tier == models.AlertTierSuccess {
		return nil
	}

	if !d.notifyEveryExpense && !d.crossedTier(status, expense) {
		return nil
	}

	title, message := d.alertText(budget, status)
	count, err := d.notifications.NotifyHousehold(budget.HouseholdID, models.NotificationTypeBudgetAlert, title, message)
	if err != nil {
		return err
	}

	logger.Get().Infow("budget alert dispatched",
		"budget_id", budget.ID,
		"household_id", budget.HouseholdID,
		"tier", status.Tier,
		"percentage", status.Percentage,
		"recipients", count,
	)
	return nil
}

// crossedTier reports whether this expense moved the budget into a higher
// tier than it was in before the expense was recorded.
func (d *AlertDispatcher) crossedTier(status *BudgetStatus, expense *models.Expense) bool {
	priorSpent := status.Spent
	if !expense.Date.Before(status.PeriodStart) {
		priorSpent -= expense.Amount
	}
	priorTier := TierFor(Percentage(priorSpent, status.LimitAmount))
	return priorTier != status.Tier
}

func (d *AlertDispatcher) alertText(budget *models.Budget, status *BudgetStatus) (title, message string) {
	label := d.budgetLabel(budget)
	if status.Tier == models.AlertTierDanger {
		title = fmt.Sprintf("Budget exceeded: %s", label)
		message = fmt.Sprintf("Spending on '%s' reached %.2f%% of the %s limit. The budget is exceeded.", label, status.Percentage, budget.Period)
		return
	}
	title = fmt.Sprintf("Budget almost exhausted: %s", label)
	message = fmt.Sprintf("Spending on '%s' reached %.2f%% of the %s limit.", label, status.Percentage, budget.Period)
	return
}

func (d *AlertDispatcher) budgetLabel(budget *models.Budget) string {
	if budget.CategoryID == nil {
		return "General"
	}
	var category models.Category
	if err := d.db.Preload("Parent").First(&category, *budget.CategoryID).Error; err != nil {
		logger.Get().Warnw("failed to load category for budget alert",
			"budget_id", budget.ID,
			"category_id", *budget.CategoryID,
			"error", err,
		)
		return "General"
	}
	return category.FullName()
}
