package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/events"
	"keyper/internal/logger"
	"keyper/internal/models"
	"keyper/internal/pagination"
	"keyper/internal/permissions"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db       *gorm.DB
	resolver *permissions.Resolver
	bus      *events.Bus
}

// NewExpenseService creates a new ExpenseServicer. Created expenses are
// announced on the bus after the insert commits.
func NewExpenseService(db *gorm.DB, resolver *permissions.Resolver, bus *events.Bus) ExpenseServicer {
	return &expenseService{db: db, resolver: resolver, bus: bus}
}

// CreateExpense records an expense for the household. The insert is
// transactional; the created event is published only after the commit, so
// subscribers never observe an uncommitted row. A failed or noisy
// subscriber cannot undo the write.
func (s *expenseService) CreateExpense(userID, householdID uint, categoryID *uint, description string, amount int64, date time.Time, notes string) (*models.Expense, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapCreateExpense, householdID) {
		return nil, apperrors.ErrForbidden
	}

	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	expense := &models.Expense{
		HouseholdID: householdID,
		CategoryID:  categoryID,
		CreatedByID: &userID,
		Description: description,
		Amount:      amount,
		Date:        date,
		Notes:       notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(expense).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Best effort: the expense is committed whatever happens downstream.
	event := events.NewEvent(context.Background(), events.ExpenseCreated, events.ExpenseCreatedData{Expense: *expense})
	if err := s.bus.Publish(event); err != nil {
		logger.Get().Errorw("expense created event had failing subscribers",
			"expense_id", expense.ID,
			"household_id", householdID,
			"error", err,
		)
	}

	return expense, nil
}

// GetHouseholdExpenses returns a paginated list of the household's
// expenses with optional filters, newest first.
func (s *expenseService) GetHouseholdExpenses(userID, householdID uint, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapAccessBudget, householdID) {
		return nil, apperrors.ErrForbidden
	}

	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("household_id = ?", householdID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinAmount != nil {
		base = base.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		base = base.Where("amount <= ?", *filter.MaxAmount)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("Category").Preload("CreatedBy").
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID returns an expense if the user may view the household's
// finances.
func (s *expenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Preload("Category").Preload("CreatedBy").First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := requireMember(s.db, userID, expense.HouseholdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapAccessBudget, expense.HouseholdID) {
		return nil, apperrors.ErrForbidden
	}

	return &expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := requireMember(s.db, userID, expense.HouseholdID); err != nil {
		return err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return err
	}
	if !s.resolver.Resolve(user, permissions.CapDeleteExpense, expense.HouseholdID) {
		return apperrors.ErrForbidden
	}

	if err := s.db.Delete(&expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
