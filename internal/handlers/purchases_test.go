package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"padoca/models"
)

func withPurchaseTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	db, err := gorm.Open(sqlite.Open("file:handlers-purchases-test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Ingredient{}, &models.Purchase{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	database = db
	return db, func() {
		database = original
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func TestPurchaseCreateCreditsStock(t *testing.T) {
	db, cleanupDB := withPurchaseTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	ingredient := models.Ingredient{
		Name:          "Wheat Flour",
		Unit:          models.UnitGram,
		StockQuantity: decimal.NewFromInt(1000),
		UnitPrice:     decimal.RequireFromString("0.01"),
	}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"ingredient_id": ingredient.ID,
		"quantity":      "5000",
	})
	req := httptest.NewRequest(http.MethodPost, "/app/api/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	PurchaseResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create, got %d: %s", w.Code, w.Body.String())
	}

	var created purchaseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if got := created.UnitPrice.String(); got != "0.01" {
		t.Fatalf("expected price defaulted from ingredient, got %s", got)
	}
	if got := created.TotalValue.String(); got != "50" {
		t.Fatalf("expected total 50, got %s", got)
	}

	var stored models.Ingredient
	if err := db.First(&stored, ingredient.ID).Error; err != nil {
		t.Fatalf("failed to reload ingredient: %v", err)
	}
	if got := stored.StockQuantity.String(); got != "6000" {
		t.Fatalf("expected stock credited to 6000, got %s", got)
	}
}

func TestPurchaseCreateUpdatesIngredientPrice(t *testing.T) {
	db, cleanupDB := withPurchaseTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	ingredient := models.Ingredient{Name: "Butter", Unit: models.UnitGram, UnitPrice: decimal.RequireFromString("0.05")}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"ingredient_id": ingredient.ID,
		"quantity":      "2000",
		"unit_price":    "0.07",
		"update_price":  true,
	})
	req := httptest.NewRequest(http.MethodPost, "/app/api/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	PurchaseResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Ingredient
	if err := db.First(&stored, ingredient.ID).Error; err != nil {
		t.Fatalf("failed to reload ingredient: %v", err)
	}
	if got := stored.UnitPrice.String(); got != "0.07" {
		t.Fatalf("expected ingredient price updated, got %s", got)
	}
}

func TestPurchaseCreateValidation(t *testing.T) {
	db, cleanupDB := withPurchaseTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	ingredient := models.Ingredient{Name: "Yeast", Unit: models.UnitGram}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}

	for name, payload := range map[string]map[string]any{
		"missing ingredient": {"quantity": "100"},
		"unknown ingredient": {"ingredient_id": 999, "quantity": "100"},
		"zero quantity":      {"ingredient_id": ingredient.ID, "quantity": "0"},
		"negative price":     {"ingredient_id": ingredient.ID, "quantity": "100", "unit_price": "-1"},
	} {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/app/api/purchases", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = authenticateRequest(t, sm, req, 1)
		w := httptest.NewRecorder()
		PurchaseResource(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestPurchaseDeleteDebitsStock(t *testing.T) {
	db, cleanupDB := withPurchaseTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	ingredient := models.Ingredient{
		Name:          "Refined Sugar",
		Unit:          models.UnitGram,
		StockQuantity: decimal.NewFromInt(3000),
		UnitPrice:     decimal.RequireFromString("0.008"),
	}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}
	purchase := models.Purchase{
		IngredientID: ingredient.ID,
		Quantity:     decimal.NewFromInt(5000),
		UnitPrice:    ingredient.UnitPrice,
	}
	if err := db.Create(&purchase).Error; err != nil {
		t.Fatalf("failed to seed purchase: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/purchases/%d", purchase.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	PurchaseResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for delete, got %d", w.Code)
	}

	// the debit would go negative, so stock clamps at zero
	var stored models.Ingredient
	if err := db.First(&stored, ingredient.ID).Error; err != nil {
		t.Fatalf("failed to reload ingredient: %v", err)
	}
	if !stored.StockQuantity.IsZero() {
		t.Fatalf("expected stock clamped at zero, got %s", stored.StockQuantity)
	}

	var count int64
	if err := db.Model(&models.Purchase{}).Where("id = ?", purchase.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count purchases: %v", err)
	}
	if count != 0 {
		t.Fatal("expected purchase removed from default queries")
	}
}
