package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"padoca/models"
)

// ErrAmbiguousLineItem is returned when the gross weight is zero while a net
// weight or correction factor was supplied, leaving no way to tell which
// value the user meant to anchor the line on.
var ErrAmbiguousLineItem = errors.New("gross weight is zero but net weight or correction factor was supplied")

// ValidationError flags a malformed numeric input on a recipe line.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LineInput carries the user-entered values for one recipe line. Nil pointers
// mean the value was not supplied.
type LineInput struct {
	GrossWeight      decimal.Decimal
	NetWeight        *decimal.Decimal
	CorrectionFactor *decimal.Decimal
	UnitPrice        *decimal.Decimal
}

// ReconciledLine holds the resolved weights, factor and cost for a line.
type ReconciledLine struct {
	GrossWeight      decimal.Decimal
	NetWeight        decimal.Decimal
	CorrectionFactor decimal.Decimal
	UnitPrice        decimal.Decimal
	LineCost         decimal.Decimal
}

// Reconcile resolves the dependent member of {net weight, correction factor}
// from the gross weight, defaults the unit price from the ingredient and
// computes the line cost. Weights and factors are rounded to three decimal
// places, money to two.
func Reconcile(in LineInput, ingredientPrice decimal.Decimal) (ReconciledLine, error) {
	gross := in.GrossWeight
	if gross.IsNegative() {
		return ReconciledLine{}, &ValidationError{Field: "gross_weight", Reason: "must not be negative"}
	}
	if in.NetWeight != nil && in.NetWeight.IsNegative() {
		return ReconciledLine{}, &ValidationError{Field: "net_weight", Reason: "must not be negative"}
	}
	if in.CorrectionFactor != nil && !in.CorrectionFactor.IsPositive() {
		return ReconciledLine{}, &ValidationError{Field: "correction_factor", Reason: "must be greater than zero"}
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return ReconciledLine{}, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}

	if gross.IsZero() && (in.NetWeight != nil || in.CorrectionFactor != nil) {
		return ReconciledLine{}, ErrAmbiguousLineItem
	}

	line := ReconciledLine{GrossWeight: gross.Round(3)}

	switch {
	case in.NetWeight != nil && in.NetWeight.IsPositive():
		line.NetWeight = in.NetWeight.Round(3)
		line.CorrectionFactor = gross.Div(*in.NetWeight).Round(3)
	case in.CorrectionFactor != nil && in.CorrectionFactor.IsPositive():
		line.CorrectionFactor = in.CorrectionFactor.Round(3)
		line.NetWeight = gross.Div(*in.CorrectionFactor).Round(3)
	default:
		line.NetWeight = gross.Round(3)
		line.CorrectionFactor = decimal.New(1, 0)
	}

	line.UnitPrice = ingredientPrice
	if in.UnitPrice != nil {
		line.UnitPrice = *in.UnitPrice
	}
	line.UnitPrice = line.UnitPrice.Round(2)
	line.LineCost = line.NetWeight.Mul(line.UnitPrice).Round(2)

	return line, nil
}

// Totals aggregates the line costs into the recipe's derived fields. The
// per-portion cost is zero whenever the yield is not positive.
func Totals(items []models.RecipeItem, yield int) (total, perPortion decimal.Decimal) {
	total = decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineCost)
	}
	total = total.Round(2)
	if yield <= 0 {
		return total, decimal.Zero
	}
	return total, total.Div(decimal.NewFromInt(int64(yield))).Round(2)
}

// RecomputeRecipe reloads the recipe's items and stores the derived cost
// fields. It is idempotent: recomputing with unchanged inputs stores the same
// totals. Callers invoke it explicitly after persisting raw item or yield
// changes.
func RecomputeRecipe(ctx context.Context, tx *gorm.DB, recipeID uint) error {
	var recipe models.Recipe
	if err := tx.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return fmt.Errorf("load recipe %d: %w", recipeID, err)
	}

	var items []models.RecipeItem
	if err := tx.WithContext(ctx).Where("recipe_id = ?", recipeID).Find(&items).Error; err != nil {
		return fmt.Errorf("load recipe items for %d: %w", recipeID, err)
	}

	total, perPortion := Totals(items, recipe.Yield)

	updates := map[string]any{
		"total_cost":       total,
		"cost_per_portion": perPortion,
	}
	if err := tx.WithContext(ctx).Model(&recipe).Updates(updates).Error; err != nil {
		return fmt.Errorf("store recipe totals for %d: %w", recipeID, err)
	}
	return nil
}
