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

func withIngredientTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	db, err := gorm.Open(sqlite.Open("file:handlers-ingredients-test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Ingredient{}, &models.Recipe{}, &models.RecipeItem{}); err != nil {
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

func TestIngredientResourceRequiresSession(t *testing.T) {
	_, cleanupDB := withIngredientTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	req := httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
}

func TestIngredientCreateAndList(t *testing.T) {
	db, cleanupDB := withIngredientTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body, _ := json.Marshal(map[string]any{
		"name":           "Wheat Flour",
		"unit":           "g",
		"stock_quantity": "2500.1234",
		"minimum_stock":  "5000",
		"unit_price":     "0.015",
	})
	req := httptest.NewRequest(http.MethodPost, "/app/api/ingredients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create, got %d: %s", w.Code, w.Body.String())
	}

	var created ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if got := created.StockQuantity.String(); got != "2500.123" {
		t.Fatalf("expected stock rounded to three places, got %s", got)
	}
	if got := created.UnitPrice.String(); got != "0.02" {
		t.Fatalf("expected price rounded to two places, got %s", got)
	}
	if !created.LowStock {
		t.Fatal("expected stock below minimum to be flagged")
	}

	healthy := models.Ingredient{
		Name:          "Butter",
		Unit:          models.UnitGram,
		StockQuantity: decimal.NewFromInt(4000),
		MinimumStock:  decimal.NewFromInt(1000),
	}
	if err := db.Create(&healthy).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/app/api/ingredients?low_stock=1", nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", w.Code)
	}
	var listed []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Wheat Flour" {
		t.Fatalf("expected only the low-stock ingredient, got %+v", listed)
	}
}

func TestIngredientCreateValidation(t *testing.T) {
	_, cleanupDB := withIngredientTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	for name, payload := range map[string]map[string]any{
		"missing name":   {"unit": "g"},
		"bad unit":       {"name": "Yeast", "unit": "sack"},
		"negative stock": {"name": "Yeast", "unit": "g", "stock_quantity": "-5"},
		"negative price": {"name": "Yeast", "unit": "g", "unit_price": "-1"},
	} {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/app/api/ingredients", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = authenticateRequest(t, sm, req, 1)
		w := httptest.NewRecorder()
		IngredientResource(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestIngredientUpdate(t *testing.T) {
	db, cleanupDB := withIngredientTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	ingredient := models.Ingredient{Name: "Sugar", Unit: models.UnitGram, UnitPrice: decimal.RequireFromString("0.01")}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"unit": "kg", "unit_price": "12.005"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/ingredients/%d", ingredient.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for update, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Ingredient
	if err := db.First(&stored, ingredient.ID).Error; err != nil {
		t.Fatalf("failed to reload ingredient: %v", err)
	}
	if stored.Unit != models.UnitKilogram {
		t.Fatalf("expected unit to change, got %q", stored.Unit)
	}
	if got := stored.UnitPrice.String(); got != "12.01" {
		t.Fatalf("expected rounded price, got %s", got)
	}
	if stored.Name != "Sugar" {
		t.Fatalf("expected untouched name, got %q", stored.Name)
	}
}

func TestIngredientDeleteBlockedByRecipeUsage(t *testing.T) {
	db, cleanupDB := withIngredientTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	ingredient := models.Ingredient{Name: "Salt", Unit: models.UnitGram}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}
	recipe := models.Recipe{Name: "Baguette", Yield: 10}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}
	item := models.RecipeItem{RecipeID: recipe.ID, IngredientID: ingredient.ID, Unit: models.UnitGram}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed recipe item: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/ingredients/%d", ingredient.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while recipes use the ingredient, got %d", w.Code)
	}

	if err := db.Delete(&item).Error; err != nil {
		t.Fatalf("failed to remove recipe item: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/ingredients/%d", ingredient.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 once unused, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&models.Ingredient{}).Where("id = ?", ingredient.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ingredients: %v", err)
	}
	if count != 0 {
		t.Fatal("expected deleted ingredient to be excluded from default queries")
	}
}
