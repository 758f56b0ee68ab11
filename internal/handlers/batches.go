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

	applog "padoca/internal/log"
	"padoca/internal/stock"
	"padoca/models"
)

type batchRequest struct {
	RecipeID   uint `json:"recipe_id"`
	Executions int  `json:"executions"`
}

type batchConsumptionResponse struct {
	IngredientID uint            `json:"ingredient_id"`
	Ingredient   string          `json:"ingredient,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type batchResponse struct {
	ID            uint                       `json:"id"`
	RecipeID      uint                       `json:"recipe_id"`
	RecipeName    string                     `json:"recipe_name,omitempty"`
	Executions    int                        `json:"executions"`
	ProductID     *uint                      `json:"product_id"`
	ProductName   string                     `json:"product_name,omitempty"`
	UnitsProduced decimal.Decimal            `json:"units_produced"`
	Consumptions  []batchConsumptionResponse `json:"consumptions"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// BatchResource handles CRUD interactions for production batch records. All
// stock movement flows through the transfer engine so every mutation is
// atomic.
func BatchResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "batch request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "batch request without authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/batches")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listBatches(w, r)
		case http.MethodPost:
			createBatch(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid batch identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	batchID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showBatch(w, r, batchID)
	case http.MethodPut:
		updateBatch(w, r, batchID)
	case http.MethodDelete:
		deleteBatch(w, r, batchID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var batches []models.Batch

	query := database.WithContext(ctx).
		Preload("Recipe").
		Preload("Product").
		Preload("Consumptions").
		Preload("Consumptions.Ingredient").
		Order("created_at desc")

	if recipeParam := strings.TrimSpace(r.URL.Query().Get("recipe_id")); recipeParam != "" {
		if idValue, err := strconv.ParseUint(recipeParam, 10, 64); err == nil {
			query = query.Where("recipe_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&batches).Error; err != nil {
		applog.Error(ctx, "failed to list batches", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load batches")
		return
	}

	responses := make([]batchResponse, 0, len(batches))
	for _, batch := range batches {
		responses = append(responses, projectBatch(batch))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showBatch(w http.ResponseWriter, r *http.Request, batchID uint) {
	batch, ok := loadBatch(w, r, batchID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectBatch(batch))
}

func createBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload batchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid batch payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.RecipeID == 0 {
		writeJSONError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}

	batch := models.Batch{RecipeID: payload.RecipeID, Executions: payload.Executions}
	if err := stock.Create(ctx, database, &batch); err != nil {
		writeStockError(w, ctx, err)
		return
	}

	created, ok := loadBatch(w, r, batch.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, projectBatch(created))
}

func updateBatch(w http.ResponseWriter, r *http.Request, batchID uint) {
	ctx := r.Context()
	batch, ok := loadBatch(w, r, batchID)
	if !ok {
		return
	}

	var payload batchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid batch update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	recipeID := payload.RecipeID
	if recipeID == 0 {
		recipeID = batch.RecipeID
	}
	executions := payload.Executions
	if executions == 0 {
		executions = batch.Executions
	}

	if err := stock.Update(ctx, database, &batch, recipeID, executions); err != nil {
		writeStockError(w, ctx, err)
		return
	}

	updated, ok := loadBatch(w, r, batchID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectBatch(updated))
}

func deleteBatch(w http.ResponseWriter, r *http.Request, batchID uint) {
	ctx := r.Context()
	batch, ok := loadBatch(w, r, batchID)
	if !ok {
		return
	}

	if err := stock.Delete(ctx, database, &batch); err != nil {
		writeStockError(w, ctx, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func loadBatch(w http.ResponseWriter, r *http.Request, batchID uint) (models.Batch, bool) {
	ctx := r.Context()
	var batch models.Batch
	err := database.WithContext(ctx).
		Preload("Recipe").
		Preload("Product").
		Preload("Consumptions").
		Preload("Consumptions.Ingredient").
		First(&batch, batchID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return models.Batch{}, false
		}
		applog.Error(ctx, "failed to load batch", "error", err, "id", batchID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load batch")
		return models.Batch{}, false
	}
	return batch, true
}

func writeStockError(w http.ResponseWriter, ctx context.Context, err error) {
	var insufficient *stock.InsufficientStockError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeJSONError(w, http.StatusBadRequest, "recipe does not exist")
	case errors.Is(err, stock.ErrNoExecutions), errors.Is(err, stock.ErrEmptyRecipe):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficient):
		writeJSONError(w, http.StatusConflict, insufficient.Error())
	default:
		applog.Error(ctx, "stock transfer failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to complete stock transfer")
	}
}

func projectBatch(batch models.Batch) batchResponse {
	response := batchResponse{
		ID:            batch.ID,
		RecipeID:      batch.RecipeID,
		Executions:    batch.Executions,
		ProductID:     batch.ProductID,
		UnitsProduced: batch.UnitsProduced,
		CreatedAt:     batch.CreatedAt,
		UpdatedAt:     batch.UpdatedAt,
	}
	if batch.Recipe != nil {
		response.RecipeName = batch.Recipe.Name
	}
	if batch.Product != nil {
		response.ProductName = batch.Product.Name
	}
	response.Consumptions = make([]batchConsumptionResponse, 0, len(batch.Consumptions))
	for _, consumption := range batch.Consumptions {
		entry := batchConsumptionResponse{
			IngredientID: consumption.IngredientID,
			Quantity:     consumption.Quantity,
		}
		if consumption.Ingredient != nil {
			entry.Ingredient = consumption.Ingredient.Name
		}
		response.Consumptions = append(response.Consumptions, entry)
	}
	return response
}
