package costing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"padoca/models"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func decPtr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d := dec(t, value)
	return &d
}

func TestReconcileDerivesFactorFromNetWeight(t *testing.T) {
	t.Parallel()

	line, err := Reconcile(LineInput{
		GrossWeight: dec(t, "100"),
		NetWeight:   decPtr(t, "80"),
	}, dec(t, "0.05"))
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !line.CorrectionFactor.Equal(dec(t, "1.25")) {
		t.Fatalf("CorrectionFactor = %s, want 1.25", line.CorrectionFactor)
	}
	if !line.NetWeight.Equal(dec(t, "80")) {
		t.Fatalf("NetWeight = %s, want 80", line.NetWeight)
	}
	if !line.LineCost.Equal(dec(t, "4.00")) {
		t.Fatalf("LineCost = %s, want 4.00", line.LineCost)
	}
}

func TestReconcileDerivesNetWeightFromFactor(t *testing.T) {
	t.Parallel()

	line, err := Reconcile(LineInput{
		GrossWeight:      dec(t, "100"),
		CorrectionFactor: decPtr(t, "1.25"),
	}, dec(t, "0.10"))
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !line.NetWeight.Equal(dec(t, "80")) {
		t.Fatalf("NetWeight = %s, want 80", line.NetWeight)
	}
	if !line.CorrectionFactor.Equal(dec(t, "1.25")) {
		t.Fatalf("CorrectionFactor = %s, want 1.25", line.CorrectionFactor)
	}
	if !line.LineCost.Equal(dec(t, "8.00")) {
		t.Fatalf("LineCost = %s, want 8.00", line.LineCost)
	}
}

func TestReconcileDefaultsNetToGross(t *testing.T) {
	t.Parallel()

	line, err := Reconcile(LineInput{GrossWeight: dec(t, "42.5")}, dec(t, "2"))
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !line.NetWeight.Equal(dec(t, "42.5")) {
		t.Fatalf("NetWeight = %s, want 42.5", line.NetWeight)
	}
	if !line.CorrectionFactor.Equal(dec(t, "1")) {
		t.Fatalf("CorrectionFactor = %s, want 1", line.CorrectionFactor)
	}
	if !line.LineCost.Equal(dec(t, "85.00")) {
		t.Fatalf("LineCost = %s, want 85.00", line.LineCost)
	}
}

func TestReconcileRoundsFactorToThreePlaces(t *testing.T) {
	t.Parallel()

	line, err := Reconcile(LineInput{
		GrossWeight: dec(t, "100"),
		NetWeight:   decPtr(t, "30"),
	}, dec(t, "1"))
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !line.CorrectionFactor.Equal(dec(t, "3.333")) {
		t.Fatalf("CorrectionFactor = %s, want 3.333", line.CorrectionFactor)
	}
}

func TestReconcileNetTimesFactorApproximatesGross(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input LineInput
	}{
		{"net supplied", LineInput{GrossWeight: dec(t, "123.456"), NetWeight: decPtr(t, "97.3")}},
		{"factor supplied", LineInput{GrossWeight: dec(t, "123.456"), CorrectionFactor: decPtr(t, "1.269")}},
		{"neither supplied", LineInput{GrossWeight: dec(t, "123.456")}},
	}

	tolerance := dec(t, "0.5")
	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			line, err := Reconcile(tt.input, dec(t, "1"))
			if err != nil {
				t.Fatalf("Reconcile returned error: %v", err)
			}
			product := line.NetWeight.Mul(line.CorrectionFactor)
			if product.Sub(line.GrossWeight).Abs().GreaterThan(tolerance) {
				t.Fatalf("net×factor = %s, too far from gross %s", product, line.GrossWeight)
			}
		})
	}
}

func TestReconcileRejectsAmbiguousInput(t *testing.T) {
	t.Parallel()

	_, err := Reconcile(LineInput{
		GrossWeight: decimal.Zero,
		NetWeight:   decPtr(t, "10"),
	}, decimal.Zero)
	if !errors.Is(err, ErrAmbiguousLineItem) {
		t.Fatalf("expected ErrAmbiguousLineItem, got %v", err)
	}

	_, err = Reconcile(LineInput{
		GrossWeight:      decimal.Zero,
		CorrectionFactor: decPtr(t, "1.2"),
	}, decimal.Zero)
	if !errors.Is(err, ErrAmbiguousLineItem) {
		t.Fatalf("expected ErrAmbiguousLineItem, got %v", err)
	}
}

func TestReconcileValidatesNumericInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input LineInput
		field string
	}{
		{"negative gross", LineInput{GrossWeight: dec(t, "-1")}, "gross_weight"},
		{"negative net", LineInput{GrossWeight: dec(t, "10"), NetWeight: decPtr(t, "-5")}, "net_weight"},
		{"zero factor", LineInput{GrossWeight: dec(t, "10"), CorrectionFactor: decPtr(t, "0")}, "correction_factor"},
		{"negative price", LineInput{GrossWeight: dec(t, "10"), UnitPrice: decPtr(t, "-0.5")}, "unit_price"},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Reconcile(tt.input, decimal.Zero)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestReconcileUnitPriceOverride(t *testing.T) {
	t.Parallel()

	line, err := Reconcile(LineInput{
		GrossWeight: dec(t, "10"),
		UnitPrice:   decPtr(t, "0.25"),
	}, dec(t, "0.99"))
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if !line.UnitPrice.Equal(dec(t, "0.25")) {
		t.Fatalf("UnitPrice = %s, want override 0.25", line.UnitPrice)
	}
	if !line.LineCost.Equal(dec(t, "2.50")) {
		t.Fatalf("LineCost = %s, want 2.50", line.LineCost)
	}
}

func TestTotalsDividesByYield(t *testing.T) {
	t.Parallel()

	items := []models.RecipeItem{
		{LineCost: dec(t, "60.00")},
		{LineCost: dec(t, "40.00")},
	}

	total, perPortion := Totals(items, 20)
	if !total.Equal(dec(t, "100.00")) {
		t.Fatalf("total = %s, want 100.00", total)
	}
	if !perPortion.Equal(dec(t, "5.00")) {
		t.Fatalf("perPortion = %s, want 5.00", perPortion)
	}
}

func TestTotalsGuardsZeroYield(t *testing.T) {
	t.Parallel()

	items := []models.RecipeItem{{LineCost: dec(t, "10.00")}}

	total, perPortion := Totals(items, 0)
	if !total.Equal(dec(t, "10.00")) {
		t.Fatalf("total = %s, want 10.00", total)
	}
	if !perPortion.IsZero() {
		t.Fatalf("perPortion = %s, want 0", perPortion)
	}
}

func withCostingTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.Ingredient{}, &models.Recipe{}, &models.RecipeItem{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestRecomputeRecipeStoresDerivedFields(t *testing.T) {
	t.Parallel()

	db := withCostingTestDatabase(t)
	ctx := context.Background()

	recipe := models.Recipe{Name: "Brioche", Yield: 10}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	items := []models.RecipeItem{
		{RecipeID: recipe.ID, IngredientID: 1, LineCost: dec(t, "12.50")},
		{RecipeID: recipe.ID, IngredientID: 2, LineCost: dec(t, "7.50")},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("create item: %v", err)
		}
	}

	if err := RecomputeRecipe(ctx, db, recipe.ID); err != nil {
		t.Fatalf("RecomputeRecipe: %v", err)
	}

	var stored models.Recipe
	if err := db.First(&stored, recipe.ID).Error; err != nil {
		t.Fatalf("reload recipe: %v", err)
	}
	if !stored.TotalCost.Equal(dec(t, "20.00")) {
		t.Fatalf("TotalCost = %s, want 20.00", stored.TotalCost)
	}
	if !stored.CostPerPortion.Equal(dec(t, "2.00")) {
		t.Fatalf("CostPerPortion = %s, want 2.00", stored.CostPerPortion)
	}

	// Recomputing with unchanged inputs must store the same totals.
	if err := RecomputeRecipe(ctx, db, recipe.ID); err != nil {
		t.Fatalf("second RecomputeRecipe: %v", err)
	}
	var again models.Recipe
	if err := db.First(&again, recipe.ID).Error; err != nil {
		t.Fatalf("reload recipe: %v", err)
	}
	if !again.TotalCost.Equal(stored.TotalCost) || !again.CostPerPortion.Equal(stored.CostPerPortion) {
		t.Fatalf("recompute was not idempotent: %s/%s vs %s/%s",
			again.TotalCost, again.CostPerPortion, stored.TotalCost, stored.CostPerPortion)
	}
}
