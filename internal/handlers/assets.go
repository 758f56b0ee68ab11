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

type assetRequest struct {
	Name      string           `json:"name"`
	Quantity  *int             `json:"quantity"`
	UnitValue *decimal.Decimal `json:"unit_value"`
	Condition string           `json:"condition"`
	Notes     string           `json:"notes"`
}

type assetResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitValue  decimal.Decimal `json:"unit_value"`
	TotalValue decimal.Decimal `json:"total_value"`
	Condition  string          `json:"condition"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AssetResource handles REST-style interactions for the equipment register.
func AssetResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "asset request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/assets")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listAssets(w, r)
		case http.MethodPost:
			createAsset(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid asset identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	assetID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showAsset(w, r, assetID)
	case http.MethodPut:
		updateAsset(w, r, assetID)
	case http.MethodDelete:
		deleteAsset(w, r, assetID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var assets []models.Asset

	query := database.WithContext(ctx).Order("name asc")
	if condition := strings.TrimSpace(r.URL.Query().Get("condition")); condition != "" {
		query = query.Where("condition = ?", strings.ToLower(condition))
	}

	if err := query.Find(&assets).Error; err != nil {
		applog.Error(ctx, "failed to list assets", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load assets")
		return
	}

	responses := make([]assetResponse, 0, len(assets))
	for _, asset := range assets {
		responses = append(responses, projectAsset(asset))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showAsset(w http.ResponseWriter, r *http.Request, assetID uint) {
	ctx := r.Context()
	var asset models.Asset
	if err := database.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load asset", "error", err, "id", assetID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load asset")
		return
	}
	writeJSON(w, http.StatusOK, projectAsset(asset))
}

func createAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload assetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid asset payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	quantity := 1
	if payload.Quantity != nil {
		if *payload.Quantity < 1 {
			writeJSONError(w, http.StatusBadRequest, "quantity must be at least one")
			return
		}
		quantity = *payload.Quantity
	}

	unitValue := decimal.Zero
	if payload.UnitValue != nil {
		if payload.UnitValue.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "unit_value must not be negative")
			return
		}
		unitValue = payload.UnitValue.Round(2)
	}

	condition := strings.ToLower(strings.TrimSpace(payload.Condition))
	if condition == "" {
		condition = models.AssetConditionGood
	}
	if !models.ValidAssetCondition(condition) {
		writeJSONError(w, http.StatusBadRequest, "unknown asset condition")
		return
	}

	asset := models.Asset{
		Name:      name,
		Quantity:  quantity,
		UnitValue: unitValue,
		Condition: condition,
		Notes:     strings.TrimSpace(payload.Notes),
	}

	if err := database.WithContext(ctx).Create(&asset).Error; err != nil {
		applog.Error(ctx, "failed to create asset", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create asset")
		return
	}

	writeJSON(w, http.StatusCreated, projectAsset(asset))
}

func updateAsset(w http.ResponseWriter, r *http.Request, assetID uint) {
	ctx := r.Context()
	var asset models.Asset
	if err := database.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load asset for update", "error", err, "id", assetID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load asset")
		return
	}

	var payload assetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid asset update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if payload.Quantity != nil {
		if *payload.Quantity < 1 {
			writeJSONError(w, http.StatusBadRequest, "quantity must be at least one")
			return
		}
		updates["quantity"] = *payload.Quantity
	}
	if payload.UnitValue != nil {
		if payload.UnitValue.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "unit_value must not be negative")
			return
		}
		updates["unit_value"] = payload.UnitValue.Round(2)
	}
	if condition := strings.ToLower(strings.TrimSpace(payload.Condition)); condition != "" {
		if !models.ValidAssetCondition(condition) {
			writeJSONError(w, http.StatusBadRequest, "unknown asset condition")
			return
		}
		updates["condition"] = condition
	}
	if payload.Notes != "" {
		updates["notes"] = strings.TrimSpace(payload.Notes)
	}

	if len(updates) > 0 {
		if err := database.WithContext(ctx).Model(&asset).Updates(updates).Error; err != nil {
			applog.Error(ctx, "failed to update asset", "error", err, "id", assetID)
			writeJSONError(w, http.StatusInternalServerError, "unable to update asset")
			return
		}
	}

	if err := database.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		applog.Error(ctx, "failed to reload asset after update", "error", err, "id", assetID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectAsset(asset))
}

func deleteAsset(w http.ResponseWriter, r *http.Request, assetID uint) {
	ctx := r.Context()
	var asset models.Asset
	if err := database.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load asset for delete", "error", err, "id", assetID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load asset")
		return
	}

	if err := database.WithContext(ctx).Delete(&asset).Error; err != nil {
		applog.Error(ctx, "failed to delete asset", "error", err, "id", assetID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete asset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectAsset(asset models.Asset) assetResponse {
	return assetResponse{
		ID:         asset.ID,
		Name:       asset.Name,
		Quantity:   asset.Quantity,
		UnitValue:  asset.UnitValue,
		TotalValue: asset.TotalValue(),
		Condition:  asset.Condition,
		Notes:      asset.Notes,
		CreatedAt:  asset.CreatedAt,
		UpdatedAt:  asset.UpdatedAt,
	}
}
