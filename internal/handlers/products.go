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

type productResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type productRequest struct {
	Name          string           `json:"name"`
	StockQuantity *decimal.Decimal `json:"stock_quantity"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

// ProductResource handles REST-style interactions for finished product records.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "product request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/products")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r)
		case http.MethodPost:
			createProduct(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid product identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	productID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showProduct(w, r, productID)
	case http.MethodPut:
		updateProduct(w, r, productID)
	case http.MethodDelete:
		deleteProduct(w, r, productID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var products []models.Product
	if err := database.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, projectProduct(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(product))
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	product := models.Product{Name: name}
	if payload.StockQuantity != nil {
		if payload.StockQuantity.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "stock_quantity must not be negative")
			return
		}
		product.StockQuantity = payload.StockQuantity.Round(3)
	}
	if payload.SalePrice != nil {
		if payload.SalePrice.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "sale_price must not be negative")
			return
		}
		product.SalePrice = payload.SalePrice.Round(2)
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err, "name", name)
		writeJSONError(w, http.StatusConflict, "unable to create product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product for update", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if payload.StockQuantity != nil {
		if payload.StockQuantity.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "stock_quantity must not be negative")
			return
		}
		updates["stock_quantity"] = payload.StockQuantity.Round(3)
	}
	if payload.SalePrice != nil {
		if payload.SalePrice.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "sale_price must not be negative")
			return
		}
		updates["sale_price"] = payload.SalePrice.Round(2)
	}

	if len(updates) > 0 {
		if err := database.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			applog.Error(ctx, "failed to update product", "error", err, "id", productID)
			writeJSONError(w, http.StatusConflict, "unable to update product")
			return
		}
	}

	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		applog.Error(ctx, "failed to reload product after update", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(product))
}

func deleteProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load product for delete", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var saleCount int64
	if err := database.WithContext(ctx).Model(&models.SaleItem{}).Where("product_id = ?", productID).Count(&saleCount).Error; err != nil {
		applog.Error(ctx, "failed to count sales for product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	if saleCount > 0 {
		writeJSONError(w, http.StatusConflict, "product has recorded sales")
		return
	}

	if err := database.WithContext(ctx).Delete(&product).Error; err != nil {
		applog.Error(ctx, "failed to delete product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectProduct(product models.Product) productResponse {
	return productResponse{
		ID:            product.ID,
		Name:          product.Name,
		StockQuantity: product.StockQuantity,
		SalePrice:     product.SalePrice,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
