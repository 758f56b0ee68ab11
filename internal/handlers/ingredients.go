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

type ingredientResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LowStock      bool            `json:"low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ingredientRequest struct {
	Name          string           `json:"name"`
	Unit          string           `json:"unit"`
	StockQuantity *decimal.Decimal `json:"stock_quantity"`
	MinimumStock  *decimal.Decimal `json:"minimum_stock"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

// IngredientResource handles REST-style interactions for ingredient records.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "ingredient request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var ingredients []models.Ingredient
	if err := database.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	lowStockOnly := r.URL.Query().Get("low_stock") == "1"

	responses := make([]ingredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		if lowStockOnly && !ingredient.BelowMinimum() {
			continue
		}
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	unit := strings.ToLower(strings.TrimSpace(payload.Unit))
	if unit == "" {
		unit = models.UnitGram
	}
	if !models.ValidUnit(unit) {
		writeJSONError(w, http.StatusBadRequest, "unknown unit of measure")
		return
	}

	ingredient := models.Ingredient{Name: name, Unit: unit}
	if payload.StockQuantity != nil {
		if payload.StockQuantity.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "stock_quantity must not be negative")
			return
		}
		ingredient.StockQuantity = payload.StockQuantity.Round(3)
	}
	if payload.MinimumStock != nil {
		if payload.MinimumStock.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "minimum_stock must not be negative")
			return
		}
		ingredient.MinimumStock = payload.MinimumStock.Round(3)
	}
	if payload.UnitPrice != nil {
		if payload.UnitPrice.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "unit_price must not be negative")
			return
		}
		ingredient.UnitPrice = payload.UnitPrice.Round(2)
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err, "name", name)
		writeJSONError(w, http.StatusConflict, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if unit := strings.ToLower(strings.TrimSpace(payload.Unit)); unit != "" {
		if !models.ValidUnit(unit) {
			writeJSONError(w, http.StatusBadRequest, "unknown unit of measure")
			return
		}
		updates["unit"] = unit
	}
	if payload.StockQuantity != nil {
		if payload.StockQuantity.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "stock_quantity must not be negative")
			return
		}
		updates["stock_quantity"] = payload.StockQuantity.Round(3)
	}
	if payload.MinimumStock != nil {
		if payload.MinimumStock.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "minimum_stock must not be negative")
			return
		}
		updates["minimum_stock"] = payload.MinimumStock.Round(3)
	}
	if payload.UnitPrice != nil {
		if payload.UnitPrice.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "unit_price must not be negative")
			return
		}
		updates["unit_price"] = payload.UnitPrice.Round(2)
	}

	if len(updates) > 0 {
		if err := database.WithContext(ctx).Model(&ingredient).Updates(updates).Error; err != nil {
			applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
			writeJSONError(w, http.StatusConflict, "unable to update ingredient")
			return
		}
	}

	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		applog.Error(ctx, "failed to reload ingredient after update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for delete", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var itemCount int64
	if err := database.WithContext(ctx).Model(&models.RecipeItem{}).Where("ingredient_id = ?", ingredientID).Count(&itemCount).Error; err != nil {
		applog.Error(ctx, "failed to count recipe usages for ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if itemCount > 0 {
		writeJSONError(w, http.StatusConflict, "ingredient is used by existing recipes")
		return
	}

	if err := database.WithContext(ctx).Delete(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:            ingredient.ID,
		Name:          ingredient.Name,
		Unit:          ingredient.Unit,
		StockQuantity: ingredient.StockQuantity,
		MinimumStock:  ingredient.MinimumStock,
		UnitPrice:     ingredient.UnitPrice,
		LowStock:      ingredient.BelowMinimum(),
		CreatedAt:     ingredient.CreatedAt,
		UpdatedAt:     ingredient.UpdatedAt,
	}
}
