package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/models"
)

type expenseRequest struct {
	Description string           `json:"description"`
	Value       *decimal.Decimal `json:"value"`
	Category    string           `json:"category"`
	DueDay      *int             `json:"due_day"`
	PaidAt      *time.Time       `json:"paid_at"`
	RecordedAt  *time.Time       `json:"recorded_at"`
}

type expenseResponse struct {
	ID          uint            `json:"id"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Category    string          `json:"category"`
	DueDay      *int            `json:"due_day"`
	PaidAt      *time.Time      `json:"paid_at"`
	RecordedAt  time.Time       `json:"recorded_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ExpenseResource handles REST-style interactions for expense records.
func ExpenseResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "expense request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/expenses")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listExpenses(w, r)
		case http.MethodPost:
			createExpense(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid expense identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	expenseID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showExpense(w, r, expenseID)
	case http.MethodPut:
		updateExpense(w, r, expenseID)
	case http.MethodDelete:
		deleteExpense(w, r, expenseID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var expenses []models.Expense

	query := database.WithContext(ctx).Order("recorded_at desc")
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		query = query.Where("category = ?", strings.ToLower(category))
	}

	if err := query.Find(&expenses).Error; err != nil {
		applog.Error(ctx, "failed to list expenses", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load expenses")
		return
	}

	responses := make([]expenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		responses = append(responses, projectExpense(expense))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showExpense(w http.ResponseWriter, r *http.Request, expenseID uint) {
	ctx := r.Context()
	var expense models.Expense
	if err := database.WithContext(ctx).First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load expense", "error", err, "id", expenseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load expense")
		return
	}
	writeJSON(w, http.StatusOK, projectExpense(expense))
}

func createExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid expense payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	description := strings.TrimSpace(payload.Description)
	if description == "" {
		writeJSONError(w, http.StatusBadRequest, "description is required")
		return
	}
	if payload.Value == nil || !payload.Value.IsPositive() {
		writeJSONError(w, http.StatusBadRequest, "value must be greater than zero")
		return
	}

	category := strings.ToLower(strings.TrimSpace(payload.Category))
	if category == "" {
		category = models.ExpenseOther
	}
	if !models.ValidExpenseCategory(category) {
		writeJSONError(w, http.StatusBadRequest, "unknown expense category")
		return
	}
	if payload.DueDay != nil && (*payload.DueDay < 1 || *payload.DueDay > 31) {
		writeJSONError(w, http.StatusBadRequest, "due_day must be between 1 and 31")
		return
	}

	recordedAt := time.Now().UTC()
	if payload.RecordedAt != nil {
		recordedAt = *payload.RecordedAt
	}

	expense := models.Expense{
		Description: description,
		Value:       payload.Value.Round(2),
		Category:    category,
		DueDay:      payload.DueDay,
		PaidAt:      payload.PaidAt,
		RecordedAt:  recordedAt,
	}

	if err := database.WithContext(ctx).Create(&expense).Error; err != nil {
		applog.Error(ctx, "failed to create expense", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create expense")
		return
	}

	writeJSON(w, http.StatusCreated, projectExpense(expense))
}

func updateExpense(w http.ResponseWriter, r *http.Request, expenseID uint) {
	ctx := r.Context()
	var expense models.Expense
	if err := database.WithContext(ctx).First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load expense for update", "error", err, "id", expenseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load expense")
		return
	}

	var payload expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid expense update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if description := strings.TrimSpace(payload.Description); description != "" {
		updates["description"] = description
	}
	if payload.Value != nil {
		if !payload.Value.IsPositive() {
			writeJSONError(w, http.StatusBadRequest, "value must be greater than zero")
			return
		}
		updates["value"] = payload.Value.Round(2)
	}
	if category := strings.ToLower(strings.TrimSpace(payload.Category)); category != "" {
		if !models.ValidExpenseCategory(category) {
			writeJSONError(w, http.StatusBadRequest, "unknown expense category")
			return
		}
		updates["category"] = category
	}
	if payload.DueDay != nil {
		if *payload.DueDay < 1 || *payload.DueDay > 31 {
			writeJSONError(w, http.StatusBadRequest, "due_day must be between 1 and 31")
			return
		}
		updates["due_day"] = payload.DueDay
	}
	if payload.PaidAt != nil {
		updates["paid_at"] = payload.PaidAt
	}
	if payload.RecordedAt != nil {
		updates["recorded_at"] = payload.RecordedAt
	}

	if len(updates) > 0 {
		if err := database.WithContext(ctx).Model(&expense).Updates(updates).Error; err != nil {
			applog.Error(ctx, "failed to update expense", "error", err, "id", expenseID)
			writeJSONError(w, http.StatusInternalServerError, "unable to update expense")
			return
		}
	}

	if err := database.WithContext(ctx).First(&expense, expenseID).Error; err != nil {
		applog.Error(ctx, "failed to reload expense after update", "error", err, "id", expenseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectExpense(expense))
}

func deleteExpense(w http.ResponseWriter, r *http.Request, expenseID uint) {
	ctx := r.Context()
	var expense models.Expense
	if err := database.WithContext(ctx).First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load expense for delete", "error", err, "id", expenseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load expense")
		return
	}

	if err := database.WithContext(ctx).Delete(&expense).Error; err != nil {
		applog.Error(ctx, "failed to delete expense", "error", err, "id", expenseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectExpense(expense models.Expense) expenseResponse {
	return expenseResponse{
		ID:          expense.ID,
		Description: expense.Description,
		Value:       expense.Value,
		Category:    expense.Category,
		DueDay:      expense.DueDay,
		PaidAt:      expense.PaidAt,
		RecordedAt:  expense.RecordedAt,
		CreatedAt:   expense.CreatedAt,
		UpdatedAt:   expense.UpdatedAt,
	}
}
