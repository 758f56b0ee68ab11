package handlers

import (
	"context"
	"net/http"
	"testing"

	"padoca/internal/db/mock"
)

func TestBuildDashboardDataCountsBakeryRecords(t *testing.T) {
	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	Configure(nil, db)
	t.Cleanup(func() { database = nil })

	req, err := http.NewRequest(http.MethodGet, "/app", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	data := buildDashboardData(req)
	if data.IngredientCount == 0 {
		t.Fatal("expected seeded ingredients to be counted")
	}
	if data.RecipeCount == 0 {
		t.Fatal("expected seeded recipes to be counted")
	}
	if data.CustomerCount == 0 {
		t.Fatal("expected seeded customers to be counted")
	}
}
