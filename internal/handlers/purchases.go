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

type purchaseRequest struct {
	IngredientID uint             `json:"ingredient_id"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	PurchasedAt  *time.Time       `json:"purchased_at"`
	UpdatePrice  bool             `json:"update_price"`
}

type purchaseResponse struct {
	ID           uint            `json:"id"`
	IngredientID uint            `json:"ingredient_id"`
	Ingredient   string          `json:"ingredient,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	PurchasedAt  time.Time       `json:"purchased_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PurchaseResource handles REST-style interactions for ingredient purchases.
// Creating a purchase credits the ingredient's stock; deleting one debits it
// back, both atomically.
func PurchaseResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "purchase request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/purchases")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listPurchases(w, r)
		case http.MethodPost:
			createPurchase(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid purchase identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	purchaseID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showPurchase(w, r, purchaseID)
	case http.MethodDelete:
		deletePurchase(w, r, purchaseID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listPurchases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var purchases []models.Purchase

	query := database.WithContext(ctx).Preload("Ingredient").Order("purchased_at desc")
	if ingredientParam := strings.TrimSpace(r.URL.Query().Get("ingredient_id")); ingredientParam != "" {
		if idValue, err := strconv.ParseUint(ingredientParam, 10, 64); err == nil {
			query = query.Where("ingredient_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&purchases).Error; err != nil {
		applog.Error(ctx, "failed to list purchases", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchases")
		return
	}

	responses := make([]purchaseResponse, 0, len(purchases))
	for _, purchase := range purchases {
		responses = append(responses, projectPurchase(purchase))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showPurchase(w http.ResponseWriter, r *http.Request, purchaseID uint) {
	ctx := r.Context()
	var purchase models.Purchase
	if err := database.WithContext(ctx).Preload("Ingredient").First(&purchase, purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load purchase", "error", err, "id", purchaseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchase")
		return
	}
	writeJSON(w, http.StatusOK, projectPurchase(purchase))
}

func createPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid purchase payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.IngredientID == 0 {
		writeJSONError(w, http.StatusBadRequest, "ingredient_id is required")
		return
	}
	if !payload.Quantity.IsPositive() {
		writeJSONError(w, http.StatusBadRequest, "quantity must be greater than zero")
		return
	}

	purchasedAt := time.Now().UTC()
	if payload.PurchasedAt != nil {
		purchasedAt = *payload.PurchasedAt
	}

	purchase := models.Purchase{
		IngredientID: payload.IngredientID,
		Quantity:     payload.Quantity.Round(3),
		PurchasedAt:  purchasedAt,
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, payload.IngredientID).Error; err != nil {
			return err
		}

		purchase.UnitPrice = ingredient.UnitPrice
		if payload.UnitPrice != nil {
			if payload.UnitPrice.IsNegative() {
				return &badRequestError{message: "unit_price must not be negative"}
			}
			purchase.UnitPrice = payload.UnitPrice.Round(2)
		}

		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"stock_quantity": ingredient.StockQuantity.Add(purchase.Quantity).Round(3),
		}
		if payload.UpdatePrice && payload.UnitPrice != nil {
			updates["unit_price"] = purchase.UnitPrice
		}
		return tx.Model(&ingredient).Updates(updates).Error
	})
	if err != nil {
		var badRequest *badRequestError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeJSONError(w, http.StatusBadRequest, "ingredient does not exist")
		case errors.As(err, &badRequest):
			writeJSONError(w, http.StatusBadRequest, badRequest.message)
		default:
			applog.Error(ctx, "failed to register purchase", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to register purchase")
		}
		return
	}

	var created models.Purchase
	if err := database.WithContext(ctx).Preload("Ingredient").First(&created, purchase.ID).Error; err != nil {
		applog.Error(ctx, "failed to reload purchase", "error", err, "id", purchase.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchase")
		return
	}
	writeJSON(w, http.StatusCreated, projectPurchase(created))
}

func deletePurchase(w http.ResponseWriter, r *http.Request, purchaseID uint) {
	ctx := r.Context()
	var purchase models.Purchase
	if err := database.WithContext(ctx).First(&purchase, purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load purchase for delete", "error", err, "id", purchaseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchase")
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, purchase.IngredientID).Error; err != nil {
			return err
		}
		remaining := ingredient.StockQuantity.Sub(purchase.Quantity).Round(3)
		if remaining.IsNegative() {
			applog.Warn(ctx, "purchase reversal would leave negative stock, clamping to zero",
				"ingredient", ingredient.Name, "purchase_id", purchase.ID)
			remaining = decimal.Zero
		}
		if err := tx.Model(&ingredient).Update("stock_quantity", remaining).Error; err != nil {
			return err
		}
		return tx.Delete(&purchase).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete purchase", "error", err, "id", purchaseID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete purchase")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type badRequestError struct {
	message string
}

func (e *badRequestError) Error() string {
	return e.message
}

func projectPurchase(purchase models.Purchase) purchaseResponse {
	response := purchaseResponse{
		ID:           purchase.ID,
		IngredientID: purchase.IngredientID,
		Quantity:     purchase.Quantity,
		UnitPrice:    purchase.UnitPrice,
		TotalValue:   purchase.TotalValue(),
		PurchasedAt:  purchase.PurchasedAt,
		CreatedAt:    purchase.CreatedAt,
		UpdatedAt:    purchase.UpdatedAt,
	}
	if purchase.Ingredient != nil {
		response.Ingredient = purchase.Ingredient.Name
	}
	return response
}
