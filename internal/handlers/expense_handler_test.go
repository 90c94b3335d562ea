package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "keyper/internal/errors"
	"keyper/internal/models"
	"keyper/internal/pagination"
	"keyper/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn        func(userID, householdID uint, categoryID *uint, description string, amount int64, date time.Time, notes string) (*models.Expense, error)
	getHouseholdExpensesFn func(userID, householdID uint, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	getExpenseByIDFn       func(userID, expenseID uint) (*models.Expense, error)
	deleteExpenseFn        func(userID, expenseID uint) error
}

func (m *mockExpenseService) CreateExpense(userID, householdID uint, categoryID *uint, description string, amount int64, date time.Time, notes string) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, householdID, categoryID, description, amount, date, notes)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetHouseholdExpenses(userID, householdID uint, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.getHouseholdExpensesFn != nil {
		return m.getHouseholdExpensesFn(userID, householdID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID uint) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/households/:id/expenses", handler.CreateExpense)
	auth.GET("/households/:id/expenses", handler.GetExpenses)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(_, householdID uint, categoryID *uint, description string, amount int64, _ time.Time, notes string) (*models.Expense, error) {
				return &models.Expense{
					Base:        models.Base{ID: 1},
					HouseholdID: householdID,
					CategoryID:  categoryID,
					Description: description,
					Amount:      amount,
					Notes:       notes,
				}, nil
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/households/3/expenses",
			`{"category_id":2,"description":"Groceries","amount":4250,"date":"2026-08-15T12:00:00Z"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		expense := result["expense"].(map[string]interface{})
		if expense["description"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", expense["description"])
		}
		if expense["amount"].(float64) != 4250 {
			t.Errorf("expected amount 4250, got %v", expense["amount"])
		}
	})

	t.Run("returns 400 on missing description", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/households/3/expenses", `{"amount":4250}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/households/3/expenses",
			`{"description":"Groceries","amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 403 when capability denied", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(_, _ uint, _ *uint, _ string, _ int64, _ time.Time, _ string) (*models.Expense, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/households/3/expenses",
			`{"description":"Groceries","amount":4250}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "FORBIDDEN")
	})

	t.Run("returns 404 on unknown category", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(_, _ uint, _ *uint, _ string, _ int64, _ time.Time, _ string) (*models.Expense, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/households/3/expenses",
			`{"category_id":999,"description":"Groceries","amount":4250}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/households/:id/expenses", handler.CreateExpense)

		rec := doRequest(r, "POST", "/households/3/expenses",
			`{"description":"Groceries","amount":4250}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	t.Run("returns 200 with paginated expenses", func(t *testing.T) {
		svc := &mockExpenseService{
			getHouseholdExpensesFn: func(_, _ uint, _ pagination.PageRequest, _ services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				resp := pagination.NewPageResponse([]models.Expense{
					{Base: models.Base{ID: 1}, Description: "Groceries", Amount: 4250},
					{Base: models.Base{ID: 2}, Description: "Cinema", Amount: 2800},
				}, 1, 20, 2)
				return &resp, nil
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/households/3/expenses", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 expenses, got %d", len(data))
		}
	})

	t.Run("passes filters to service", func(t *testing.T) {
		var captured services.ExpenseFilter
		svc := &mockExpenseService{
			getHouseholdExpensesFn: func(_, _ uint, _ pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		doRequest(r, "GET", "/households/3/expenses?from_date=2026-08-01T00:00:00Z&category_id=2&min_amount=100&max_amount=9000", "")

		if captured.FromDate == nil || !captured.FromDate.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
			t.Error("expected from_date to be passed")
		}
		if captured.CategoryID == nil || *captured.CategoryID != 2 {
			t.Error("expected category_id=2 to be passed")
		}
		if captured.MinAmount == nil || *captured.MinAmount != 100 {
			t.Error("expected min_amount=100 to be passed")
		}
		if captured.MaxAmount == nil || *captured.MaxAmount != 9000 {
			t.Error("expected max_amount=9000 to be passed")
		}
	})

	t.Run("returns 400 on malformed from_date", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/households/3/expenses?from_date=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed category_id", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/households/3/expenses?category_id=food", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 403 for non-member", func(t *testing.T) {
		svc := &mockExpenseService{
			getHouseholdExpensesFn: func(_, _ uint, _ pagination.PageRequest, _ services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				return nil, apperrors.ErrNotAMember
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/households/3/expenses", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_A_MEMBER")
	})
}

func TestExpenseHandler_GetExpense(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseByIDFn: func(_, expenseID uint) (*models.Expense, error) {
				return &models.Expense{
					Base:        models.Base{ID: expenseID},
					Description: "Groceries",
					Amount:      4250,
				}, nil
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		expense := result["expense"].(map[string]interface{})
		if expense["description"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", expense["description"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseByIDFn: func(_, _ uint) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "DELETE", "/expenses/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 403 when capability denied", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(_, _ uint) error {
				return apperrors.ErrForbidden
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "DELETE", "/expenses/1", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "FORBIDDEN")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(_, _ uint) error {
				return apperrors.ErrExpenseNotFound
			},
		}
		handler := NewExpenseHandler(svc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "DELETE", "/expenses/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
