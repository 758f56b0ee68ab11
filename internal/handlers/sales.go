package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/internal/stock"
	"padoca/models"
)

type saleItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type saleRequest struct {
	CustomerID    *uint             `json:"customer_id"`
	SoldAt        *time.Time        `json:"sold_at"`
	PaymentMethod string            `json:"payment_method"`
	Discount      *decimal.Decimal  `json:"discount"`
	Items         []saleItemRequest `json:"items"`
}

type saleItemResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Product   string          `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type saleResponse struct {
	ID            uint               `json:"id"`
	Reference     string             `json:"reference"`
	CustomerID    *uint              `json:"customer_id"`
	CustomerName  string             `json:"customer_name,omitempty"`
	SoldAt        time.Time          `json:"sold_at"`
	PaymentMethod string             `json:"payment_method"`
	Discount      decimal.Decimal    `json:"discount"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	Items         []saleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleResource handles REST-style interactions for counter sales. Registering
// a sale debits product stock and refreshes the customer's last contact in a
// single transaction; deleting one restores the stock it consumed.
func SaleResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "sale request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/sales")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listSales(w, r)
		case http.MethodPost:
			createSale(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid sale identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	saleID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showSale(w, r, saleID)
	case http.MethodDelete:
		deleteSale(w, r, saleID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var sales []models.Sale

	query := database.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Preload("Items.Product").
		Order("sold_at desc")

	if customerParam := strings.TrimSpace(r.URL.Query().Get("customer_id")); customerParam != "" {
		if idValue, err := strconv.ParseUint(customerParam, 10, 64); err == nil {
			query = query.Where("customer_id = ?", uint(idValue))
		}
	}

	if err := query.Find(&sales).Error; err != nil {
		applog.Error(ctx, "failed to list sales", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load sales")
		return
	}

	responses := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		responses = append(responses, projectSale(sale))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showSale(w http.ResponseWriter, r *http.Request, saleID uint) {
	sale, ok := loadSale(w, r, saleID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectSale(sale))
}

func createSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload saleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid sale payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if len(payload.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	for _, item := range payload.Items {
		if item.ProductID == 0 {
			writeJSONError(w, http.StatusBadRequest, "product_id is required on every item")
			return
		}
		if item.Quantity <= 0 {
			writeJSONError(w, http.StatusBadRequest, "quantity must be greater than zero")
			return
		}
	}

	method := strings.ToLower(strings.TrimSpace(payload.PaymentMethod))
	if method == "" {
		method = models.PaymentCash
	}
	if !models.ValidPaymentMethod(method) {
		writeJSONError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	discount := decimal.Zero
	if payload.Discount != nil {
		if payload.Discount.IsNegative() {
			writeJSONError(w, http.StatusBadRequest, "discount must not be negative")
			return
		}
		discount = payload.Discount.Round(2)
	}

	soldAt := time.Now().UTC()
	if payload.SoldAt != nil {
		soldAt = *payload.SoldAt
	}

	sale := models.Sale{
		Reference:     uuid.NewString(),
		CustomerID:    payload.CustomerID,
		SoldAt:        soldAt,
		PaymentMethod: method,
		Discount:      discount,
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sale.CustomerID != nil {
			var customer models.Customer
			if err := tx.First(&customer, *sale.CustomerID).Error; err != nil {
				return err
			}
		}

		total := decimal.Zero
		items := make([]models.SaleItem, 0, len(payload.Items))
		for _, entry := range payload.Items {
			var product models.Product
			if err := tx.First(&product, entry.ProductID).Error; err != nil {
				return err
			}

			quantity := decimal.NewFromInt(int64(entry.Quantity))
			if product.StockQuantity.LessThan(quantity) {
				return &stock.InsufficientStockError{
					Entity:    product.Name,
					Unit:      models.UnitPiece,
					Required:  quantity,
					Available: product.StockQuantity,
				}
			}

			remaining := product.StockQuantity.Sub(quantity).Round(3)
			if err := tx.Model(&product).Update("stock_quantity", remaining).Error; err != nil {
				return err
			}

			subtotal := product.SalePrice.Mul(quantity).Round(2)
			total = total.Add(subtotal)
			items = append(items, models.SaleItem{
				ProductID: entry.ProductID,
				Quantity:  entry.Quantity,
				Subtotal:  subtotal,
			})
		}

		total = total.Sub(sale.Discount).Round(2)
		if total.IsNegative() {
			total = decimal.Zero
		}
		sale.TotalValue = total
		sale.Items = items

		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		if sale.CustomerID != nil {
			now := time.Now().UTC()
			if err := tx.Model(&models.Customer{}).Where("id = ?", *sale.CustomerID).Update("last_contact", now).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var insufficient *stock.InsufficientStockError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeJSONError(w, http.StatusBadRequest, "referenced customer or product does not exist")
		case errors.As(err, &insufficient):
			writeJSONError(w, http.StatusConflict, insufficient.Error())
		default:
			applog.Error(ctx, "failed to register sale", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to register sale")
		}
		return
	}

	created, ok := loadSale(w, r, sale.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, projectSale(created))
}

func deleteSale(w http.ResponseWriter, r *http.Request, saleID uint) {
	ctx := r.Context()
	sale, ok := loadSale(w, r, saleID)
	if !ok {
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				return err
			}
			quantity := decimal.NewFromInt(int64(item.Quantity))
			restored := product.StockQuantity.Add(quantity).Round(3)
			if err := tx.Model(&product).Update("stock_quantity", restored).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete sale", "error", err, "id", saleID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete sale")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func loadSale(w http.ResponseWriter, r *http.Request, saleID uint) (models.Sale, bool) {
	ctx := r.Context()
	var sale models.Sale
	err := database.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Preload("Items.Product").
		First(&sale, saleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return models.Sale{}, false
		}
		applog.Error(ctx, "failed to load sale", "error", err, "id", saleID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load sale")
		return models.Sale{}, false
	}
	return sale, true
}

func projectSale(sale models.Sale) saleResponse {
	items := make([]saleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		entry := saleItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
		if item.Product != nil {
			entry.Product = item.Product.Name
		}
		items = append(items, entry)
	}

	response := saleResponse{
		ID:            sale.ID,
		Reference:     sale.Reference,
		CustomerID:    sale.CustomerID,
		SoldAt:        sale.SoldAt,
		PaymentMethod: sale.PaymentMethod,
		Discount:      sale.Discount,
		TotalValue:    sale.TotalValue,
		Items:         items,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
	}
	if sale.Customer != nil {
		response.CustomerName = sale.Customer.Name
	}
	return response
}
