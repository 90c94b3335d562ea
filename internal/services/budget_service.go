package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/pagination"
	"keyper/internal/permissions"
)

// Utilization thresholds, in percent of the budget limit.
const (
	warningThreshold = 80.0
	dangerThreshold  = 100.0
)

// PeriodStart returns the first day of the period that contains now.
// Monthly budgets reset on the 1st of the month, quarterly budgets on the
// 1st of January, April, July, and October, and yearly budgets on the 1st
// of January.
func PeriodStart(period models.BudgetPeriod, now time.Time) time.Time {
	switch period {
	case models.BudgetPeriodQuarterly:
		quarterMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
	case models.BudgetPeriodYearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// Percentage returns spent as a percentage of limit, rounded to two
// decimals. A non-positive limit yields 0 rather than a division error;
// such budgets never alert.
func Percentage(spent, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	pct := float64(spent) / float64(limit) * 100
	return math.Round(pct*100) / 100
}

// TierFor classifies a utilization percentage: danger at or above 100%,
// warning at or above 80%, success below.
func TierFor(percentage float64) models.AlertTier {
	switch {
	case percentage >= dangerThreshold:
		return models.AlertTierDanger
	case percentage >= warningThreshold:
		return models.AlertTierWarning
	default:
		return models.AlertTierSuccess
	}
}

// budgetService handles budget-related business logic.
type budgetService struct {
	db       *gorm.DB
	resolver *permissions.Resolver
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, resolver *permissions.Resolver) BudgetServicer {
	return &budgetService{db: db, resolver: resolver}
}

// CreateBudget creates a budget for a household, optionally narrowed to a
// category.
func (s *budgetService) CreateBudget(userID, householdID uint, categoryID *uint, limitAmount int64, period models.BudgetPeriod) (*models.Budget, error) {
	if err := requireMember(s.db, userID, householdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapCreateBudget, householdID) {
		return nil, apperrors.ErrForbidden
	}

	if limitAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit_amount must be positive")
	}
	if period == "" {
		period = models.BudgetPeriodMonthly
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

	budget := &models.Budget{
		HouseholdID: householdID,
		CategoryID:  categoryID,
		LimitAmount: limitAmount,
		Period:      period,
		IsActive:    true,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetHouseholdBudgets returns a paginated list of the household's budgets
// with optional filters.
func (s *budgetService) GetHouseholdBudgets(userID, householdID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
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

	base := s.db.Model(&models.Budget{}).Where("household_id = ?", householdID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if the user may view the
// household's budgets.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := requireMember(s.db, userID, budget.HouseholdID); err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapAccessBudget, budget.HouseholdID) {
		return nil, apperrors.ErrForbidden
	}

	return &budget, nil
}

// UpdateBudget updates a budget's limit, period, or active flag.
func (s *budgetService) UpdateBudget(userID, budgetID uint, limitAmount *int64, period *models.BudgetPeriod, isActive *bool) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.Resolve(user, permissions.CapCreateBudget, budget.HouseholdID) {
		return nil, apperrors.ErrForbidden
	}

	updates := make(map[string]interface{})
	if limitAmount != nil {
		if *limitAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit_amount must be positive")
		}
		updates["limit_amount"] = *limitAmount
	}
	if period != nil {
		updates["period"] = *period
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	user, err := loadUser(s.db, userID)
	if err != nil {
		return err
	}
	if !s.resolver.Resolve(user, permissions.CapCreateBudget, budget.HouseholdID) {
		return apperrors.ErrForbidden
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Evaluate computes the budget's utilization for the current period.
// Spending is the sum of the household's expenses dated on or after the
// period start; for category budgets only expenses of that exact category
// count, and a budget without a category counts only uncategorized
// expenses. Expenses dated in the future but inside the period still count.
func (s *budgetService) Evaluate(budget *models.Budget) (*BudgetStatus, error) {
	start := PeriodStart(budget.Period, time.Now())

	query := s.db.Model(&models.Expense{}).
		Where("household_id = ? AND date >= ?", budget.HouseholdID, start)
	if budget.CategoryID != nil {
		query = query.Where("category_id = ?", *budget.CategoryID)
	} else {
		query = query.Where("category_id IS NULL")
	}

	var spent int64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&spent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	pct := Percentage(spent, budget.LimitAmount)
	return &BudgetStatus{
		BudgetID:    budget.ID,
		LimitAmount: budget.LimitAmount,
		Spent:       spent,
		Remaining:   budget.LimitAmount - spent,
		Percentage:  pct,
		Tier:        TierFor(pct),
		PeriodStart: start,
	}, nil
}

// GetHouseholdStatus evaluates every active budget of the household.
func (s *budgetService) GetHouseholdStatus(userID, householdID uint) ([]BudgetStatus, error) {
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

	var budgets []models.Budget
	if err := s.db.Where("household_id = ? AND is_active = ?", householdID, true).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		status, err := s.Evaluate(&budgets[i])
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}
