package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"padoca/models"
)

func withAssetTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	db, err := gorm.Open(sqlite.Open("file:handlers-assets-test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Asset{}); err != nil {
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

func TestAssetCreateAndList(t *testing.T) {
	db, cleanupDB := withAssetTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	body, _ := json.Marshal(map[string]any{
		"name":       "  Spiral Mixer ",
		"quantity":   2,
		"unit_value": "3200.005",
		"condition":  "WORN",
	})
	req := httptest.NewRequest(http.MethodPost, "/app/api/assets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	AssetResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create, got %d: %s", w.Code, w.Body.String())
	}

	var created assetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.Name != "Spiral Mixer" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Condition != models.AssetConditionWorn {
		t.Fatalf("expected lowered condition, got %q", created.Condition)
	}
	if got := created.UnitValue.String(); got != "3200.01" {
		t.Fatalf("expected unit value rounded to 3200.01, got %s", got)
	}
	if got := created.TotalValue.String(); got != "6400.02" {
		t.Fatalf("expected total value 6400.02, got %s", got)
	}

	var stored models.Asset
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("failed to reload asset: %v", err)
	}
	if stored.Quantity != 2 {
		t.Fatalf("stored quantity = %d, want 2", stored.Quantity)
	}

	req = httptest.NewRequest(http.MethodGet, "/app/api/assets?condition=worn", nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	AssetResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", w.Code)
	}
	var listed []assetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected the created asset in the filtered list, got %+v", listed)
	}
}

func TestAssetCreateValidation(t *testing.T) {
	_, cleanupDB := withAssetTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	for name, payload := range map[string]map[string]any{
		"missing name":      {"unit_value": "100"},
		"zero quantity":     {"name": "Proofer", "quantity": 0},
		"negative value":    {"name": "Proofer", "unit_value": "-1"},
		"unknown condition": {"name": "Proofer", "condition": "rusty"},
	} {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/app/api/assets", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = authenticateRequest(t, sm, req, 1)
		w := httptest.NewRecorder()
		AssetResource(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestAssetUpdateAndDelete(t *testing.T) {
	db, cleanupDB := withAssetTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	asset := models.Asset{Name: "Deck Oven", Quantity: 1, Condition: models.AssetConditionGood}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("failed to seed asset: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"condition": "broken", "notes": "door hinge snapped"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/assets/%d", asset.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, 1)
	w := httptest.NewRecorder()
	AssetResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for update, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Asset
	if err := db.First(&stored, asset.ID).Error; err != nil {
		t.Fatalf("failed to reload asset: %v", err)
	}
	if stored.Condition != models.AssetConditionBroken || stored.Notes != "door hinge snapped" {
		t.Fatalf("unexpected stored state: condition %q notes %q", stored.Condition, stored.Notes)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/assets/%d", asset.ID), nil)
	req = authenticateRequest(t, sm, req, 1)
	w = httptest.NewRecorder()
	AssetResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for delete, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&models.Asset{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count assets: %v", err)
	}
	if count != 0 {
		t.Fatal("expected deleted asset to be excluded from default queries")
	}
}

func TestAssetRegisterPDFStreamsAttachment(t *testing.T) {
	db, cleanupDB := withAssetTestDatabase(t)
	t.Cleanup(cleanupDB)

	asset := models.Asset{Name: "Dough Sheeter", Quantity: 1, Condition: models.AssetConditionGood}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("failed to seed asset: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/app/reports/asset-register.pdf", nil)
	w := httptest.NewRecorder()
	AssetRegisterPDF(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", got)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "asset-register.pdf") {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatal("expected a PDF body")
	}
}
