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

	"padoca/internal/costing"
	applog "padoca/internal/log"
	"padoca/models"
)

type recipeResponse struct {
	ID             uint                 `json:"id"`
	Name           string               `json:"name"`
	Author         string               `json:"author"`
	Instructions   string               `json:"instructions"`
	Yield          int                  `json:"yield"`
	TotalCost      decimal.Decimal      `json:"total_cost"`
	CostPerPortion decimal.Decimal      `json:"cost_per_portion"`
	Items          []recipeItemResponse `json:"items"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type recipeRequest struct {
	Name         string `json:"name"`
	Author       string `json:"author"`
	Instructions string `json:"instructions"`
	Yield        *int   `json:"yield"`
}

// RecipeResource handles REST-style interactions for recipe records.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "recipe request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var recipes []models.Recipe
	query := database.WithContext(ctx).Preload("Items").Preload("Items.Ingredient").Order("name asc")
	if err := query.Find(&recipes).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		responses = append(responses, projectRecipe(recipe))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	recipe, ok := loadRecipe(w, r, recipeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(recipe))
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	recipe := models.Recipe{
		Name:         name,
		Author:       strings.TrimSpace(payload.Author),
		Instructions: strings.TrimSpace(payload.Instructions),
		Yield:        20,
	}
	if payload.Yield != nil {
		if *payload.Yield <= 0 {
			writeJSONError(w, http.StatusBadRequest, "yield must be greater than zero")
			return
		}
		recipe.Yield = *payload.Yield
	}

	if err := database.WithContext(ctx).Create(&recipe).Error; err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err, "name", name)
		writeJSONError(w, http.StatusConflict, "unable to create recipe")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipe(recipe))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, recipeID)
	if !ok {
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if payload.Author != "" {
		updates["author"] = strings.TrimSpace(payload.Author)
	}
	if payload.Instructions != "" {
		updates["instructions"] = strings.TrimSpace(payload.Instructions)
	}
	yieldChanged := false
	if payload.Yield != nil {
		if *payload.Yield <= 0 {
			writeJSONError(w, http.StatusBadRequest, "yield must be greater than zero")
			return
		}
		yieldChanged = *payload.Yield != recipe.Yield
		updates["yield"] = *payload.Yield
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if yieldChanged {
			return costing.RecomputeRecipe(ctx, tx, recipeID)
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusConflict, "unable to update recipe")
		return
	}

	recipe, ok = loadRecipe(w, r, recipeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(recipe))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, recipeID)
	if !ok {
		return
	}

	var batchCount int64
	if err := database.WithContext(ctx).Model(&models.Batch{}).Where("recipe_id = ?", recipeID).Count(&batchCount).Error; err != nil {
		applog.Error(ctx, "failed to count batches for recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}
	if batchCount > 0 {
		writeJSONError(w, http.StatusConflict, "recipe has recorded batches")
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func loadRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) (models.Recipe, bool) {
	ctx := r.Context()
	var recipe models.Recipe
	err := database.WithContext(ctx).Preload("Items").Preload("Items.Ingredient").First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return models.Recipe{}, false
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return models.Recipe{}, false
	}
	return recipe, true
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	items := make([]recipeItemResponse, 0, len(recipe.Items))
	for _, item := range recipe.Items {
		items = append(items, projectRecipeItem(item))
	}

	return recipeResponse{
		ID:             recipe.ID,
		Name:           recipe.Name,
		Author:         recipe.Author,
		Instructions:   recipe.Instructions,
		Yield:          recipe.Yield,
		TotalCost:      recipe.TotalCost,
		CostPerPortion: recipe.CostPerPortion,
		Items:          items,
		CreatedAt:      recipe.CreatedAt,
		UpdatedAt:      recipe.UpdatedAt,
	}
}
