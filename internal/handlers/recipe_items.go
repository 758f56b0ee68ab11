package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"padoca/internal/costing"
	applog "padoca/internal/log"
	"padoca/models"
)

type recipeItemRequest struct {
	RecipeID         uint             `json:"recipe_id"`
	IngredientID     uint             `json:"ingredient_id"`
	Unit             string           `json:"unit"`
	GrossWeight      decimal.Decimal  `json:"gross_weight"`
	NetWeight        *decimal.Decimal `json:"net_weight"`
	CorrectionFactor *decimal.Decimal `json:"correction_factor"`
	UnitPrice        *decimal.Decimal `json:"unit_price"`
}

type itemIngredientSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type recipeItemResponse struct {
	ID               uint                   `json:"id"`
	RecipeID         uint                   `json:"recipe_id"`
	IngredientID     uint                   `json:"ingredient_id"`
	Unit             string                 `json:"unit"`
	GrossWeight      decimal.Decimal        `json:"gross_weight"`
	NetWeight        decimal.Decimal        `json:"net_weight"`
	CorrectionFactor decimal.Decimal        `json:"correction_factor"`
	UnitPrice        decimal.Decimal        `json:"unit_price"`
	LineCost         decimal.Decimal        `json:"line_cost"`
	Ingredient       *itemIngredientSummary `json:"ingredient,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// RecipeItemResource handles CRUD interactions for recipe line records. Every
// mutation reconciles the line through the costing rules and recomputes the
// owning recipe's totals in the same transaction.
func RecipeItemResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe item request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "recipe item request without authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipe-items")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipeItems(w, r)
		case http.MethodPost:
			createRecipeItem(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe item identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	itemID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipeItem(w, r, itemID)
	case http.MethodPut:
		updateRecipeItem(w, r, itemID)
	case http.MethodDelete:
		deleteRecipeItem(w, r, itemID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipeItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var items []models.RecipeItem

	query := database.WithContext(ctx).
		Preload("Ingredient").
		Order("recipe_id asc, id asc")

	if recipeParam := strings.TrimSpace(r.URL.Query().Get("recipe_id")); recipeParam != "" {
		if idValue, err := strconv.ParseUint(recipeParam, 10, 64); err == nil {
			query = query.Where("recipe_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&items).Error; err != nil {
		applog.Error(ctx, "failed to list recipe items", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe items")
		return
	}

	responses := make([]recipeItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, projectRecipeItem(item))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipeItem(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	var item models.RecipeItem
	if err := database.WithContext(ctx).Preload("Ingredient").First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipeItem(item))
}

func createRecipeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe item payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.RecipeID == 0 {
		writeJSONError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}
	if payload.IngredientID == 0 {
		writeJSONError(w, http.StatusBadRequest, "ingredient_id is required")
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, payload.RecipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "recipe does not exist")
			return
		}
		applog.Error(ctx, "failed to load recipe for item create", "error", err, "recipeID", payload.RecipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, payload.IngredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "ingredient does not exist")
			return
		}
		applog.Error(ctx, "failed to load ingredient for item create", "error", err, "ingredientID", payload.IngredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	unit := strings.ToLower(strings.TrimSpace(payload.Unit))
	if unit == "" {
		unit = ingredient.Unit
	}
	if !models.ValidUnit(unit) {
		writeJSONError(w, http.StatusBadRequest, "unknown unit of measure")
		return
	}

	line, err := costing.Reconcile(costing.LineInput{
		GrossWeight:      payload.GrossWeight,
		NetWeight:        payload.NetWeight,
		CorrectionFactor: payload.CorrectionFactor,
		UnitPrice:        payload.UnitPrice,
	}, ingredient.UnitPrice)
	if err != nil {
		writeCostingError(w, ctx, err)
		return
	}

	item := models.RecipeItem{
		RecipeID:         payload.RecipeID,
		IngredientID:     payload.IngredientID,
		Unit:             unit,
		GrossWeight:      line.GrossWeight,
		NetWeight:        line.NetWeight,
		CorrectionFactor: line.CorrectionFactor,
		UnitPrice:        line.UnitPrice,
		LineCost:         line.LineCost,
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return costing.RecomputeRecipe(ctx, tx, item.RecipeID)
	})
	if err != nil {
		applog.Error(ctx, "failed to create recipe item", "error", err, "recipeID", payload.RecipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to create recipe item")
		return
	}

	item.Ingredient = &ingredient
	writeJSON(w, http.StatusCreated, projectRecipeItem(item))
}

func updateRecipeItem(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	var item models.RecipeItem
	if err := database.WithContext(ctx).Preload("Ingredient").First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe item for update", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}

	var payload recipeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe item update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ingredient := item.Ingredient
	if payload.IngredientID != 0 && payload.IngredientID != item.IngredientID {
		loaded := models.Ingredient{}
		if err := database.WithContext(ctx).First(&loaded, payload.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSONError(w, http.StatusBadRequest, "ingredient does not exist")
				return
			}
			applog.Error(ctx, "failed to load ingredient for item update", "error", err, "ingredientID", payload.IngredientID)
			writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
			return
		}
		ingredient = &loaded
		item.IngredientID = payload.IngredientID
	}
	if ingredient == nil {
		writeJSONError(w, http.StatusInternalServerError, "unable to resolve ingredient")
		return
	}

	unit := strings.ToLower(strings.TrimSpace(payload.Unit))
	if unit == "" {
		unit = item.Unit
	}
	if !models.ValidUnit(unit) {
		writeJSONError(w, http.StatusBadRequest, "unknown unit of measure")
		return
	}

	line, err := costing.Reconcile(costing.LineInput{
		GrossWeight:      payload.GrossWeight,
		NetWeight:        payload.NetWeight,
		CorrectionFactor: payload.CorrectionFactor,
		UnitPrice:        payload.UnitPrice,
	}, ingredient.UnitPrice)
	if err != nil {
		writeCostingError(w, ctx, err)
		return
	}

	item.Unit = unit
	item.GrossWeight = line.GrossWeight
	item.NetWeight = line.NetWeight
	item.CorrectionFactor = line.CorrectionFactor
	item.UnitPrice = line.UnitPrice
	item.LineCost = line.LineCost
	item.Ingredient = ingredient

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The stale preloaded ingredient must not win over the reassigned
		// foreign key when the item switches ingredients.
		if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
			return err
		}
		return costing.RecomputeRecipe(ctx, tx, item.RecipeID)
	})
	if err != nil {
		applog.Error(ctx, "failed to update recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe item")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipeItem(item))
}

func deleteRecipeItem(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	var item models.RecipeItem
	if err := database.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe item for delete", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe item")
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return costing.RecomputeRecipe(ctx, tx, item.RecipeID)
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe item", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeCostingError(w http.ResponseWriter, ctx context.Context, err error) {
	var validation *costing.ValidationError
	switch {
	case errors.Is(err, costing.ErrAmbiguousLineItem):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		writeJSONError(w, http.StatusBadRequest, validation.Error())
	default:
		applog.Error(ctx, "failed to reconcile recipe line", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to reconcile recipe line")
	}
}

func projectRecipeItem(item models.RecipeItem) recipeItemResponse {
	response := recipeItemResponse{
		ID:               item.ID,
		RecipeID:         item.RecipeID,
		IngredientID:     item.IngredientID,
		Unit:             item.Unit,
		GrossWeight:      item.GrossWeight,
		NetWeight:        item.NetWeight,
		CorrectionFactor: item.CorrectionFactor,
		UnitPrice:        item.UnitPrice,
		LineCost:         item.LineCost,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	if item.Ingredient != nil {
		response.Ingredient = &itemIngredientSummary{
			ID:   item.Ingredient.ID,
			Name: item.Ingredient.Name,
			Unit: item.Ingredient.Unit,
		}
	}
	return response
}
