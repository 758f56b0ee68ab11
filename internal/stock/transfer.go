package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "padoca/internal/log"
	"padoca/models"
)

// ErrNoExecutions is returned when a batch is applied with fewer than one
// recipe execution.
var ErrNoExecutions = errors.New("batch must run the recipe at least once")

// ErrEmptyRecipe is returned when a batch references a recipe without items.
var ErrEmptyRecipe = errors.New("recipe has no items to consume")

// InsufficientStockError reports a debit that would drive a stock quantity
// negative. Entity names the ingredient or product involved.
type InsufficientStockError struct {
	Entity    string
	Unit      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("insufficient stock for %s: available %s %s, required %s %s",
			e.Entity, e.Available, e.Unit, e.Required, e.Unit)
	}
	return fmt.Sprintf("insufficient stock for %s: available %s, required %s",
		e.Entity, e.Available, e.Required)
}

// Apply transfers stock for a batch: each recipe item's net weight ×
// executions is debited from its ingredient, the generated product is
// resolved or created by recipe name and credited with executions × yield.
// The exact debits and the produced quantity are snapshotted on the batch so
// a later reversal never depends on the recipe's current items. Apply must
// run inside a transaction; on error nothing observable is committed.
func Apply(ctx context.Context, tx *gorm.DB, batch *models.Batch) error {
	if batch.Executions < 1 {
		return ErrNoExecutions
	}

	var recipe models.Recipe
	if err := tx.WithContext(ctx).Preload("Items").First(&recipe, batch.RecipeID).Error; err != nil {
		return fmt.Errorf("load recipe %d: %w", batch.RecipeID, err)
	}
	if len(recipe.Items) == 0 {
		return ErrEmptyRecipe
	}

	executions := decimal.NewFromInt(int64(batch.Executions))

	consumptions := make([]models.BatchConsumption, 0, len(recipe.Items))
	for _, item := range recipe.Items {
		var ingredient models.Ingredient
		if err := tx.WithContext(ctx).First(&ingredient, item.IngredientID).Error; err != nil {
			return fmt.Errorf("load ingredient %d: %w", item.IngredientID, err)
		}

		required := item.NetWeight.Mul(executions).Round(3)
		if ingredient.StockQuantity.LessThan(required) {
			return &InsufficientStockError{
				Entity:    ingredient.Name,
				Unit:      ingredient.Unit,
				Required:  required,
				Available: ingredient.StockQuantity,
			}
		}

		remaining := ingredient.StockQuantity.Sub(required)
		if err := tx.WithContext(ctx).Model(&ingredient).Update("stock_quantity", remaining).Error; err != nil {
			return fmt.Errorf("debit ingredient %s: %w", ingredient.Name, err)
		}

		consumptions = append(consumptions, models.BatchConsumption{
			IngredientID: ingredient.ID,
			Quantity:     required,
		})
	}

	product, err := resolveProduct(ctx, tx, recipe)
	if err != nil {
		return err
	}

	produced := executions.Mul(decimal.NewFromInt(int64(recipe.Yield))).Round(3)
	credited := product.StockQuantity.Add(produced)
	if err := tx.WithContext(ctx).Model(product).Update("stock_quantity", credited).Error; err != nil {
		return fmt.Errorf("credit product %s: %w", product.Name, err)
	}

	batch.ProductID = &product.ID
	batch.UnitsProduced = produced
	// The batch may arrive with stale preloaded associations; saving them would
	// overwrite the foreign keys just assigned for this apply.
	if err := tx.WithContext(ctx).Omit(clause.Associations).Save(batch).Error; err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}

	for i := range consumptions {
		consumptions[i].BatchID = batch.ID
		if err := tx.WithContext(ctx).Create(&consumptions[i]).Error; err != nil {
			return fmt.Errorf("record batch consumption: %w", err)
		}
	}

	applog.Debug(ctx, "batch stock applied",
		"batch", batch.ID, "recipe", recipe.Name, "executions", batch.Executions, "produced", produced.String())

	return nil
}

// Reverse undoes a batch's recorded effect: the generated product is debited
// by the snapshotted produced quantity and every snapshotted ingredient debit
// is credited back. It fails without mutating anything when the product no
// longer holds enough stock to give back. Reverse must run inside a
// transaction.
func Reverse(ctx context.Context, tx *gorm.DB, batch *models.Batch) error {
	if batch.ProductID != nil && batch.UnitsProduced.IsPositive() {
		var product models.Product
		if err := tx.WithContext(ctx).First(&product, *batch.ProductID).Error; err != nil {
			return fmt.Errorf("load product %d: %w", *batch.ProductID, err)
		}
		if product.StockQuantity.LessThan(batch.UnitsProduced) {
			return &InsufficientStockError{
				Entity:    product.Name,
				Required:  batch.UnitsProduced,
				Available: product.StockQuantity,
			}
		}
		remaining := product.StockQuantity.Sub(batch.UnitsProduced)
		if err := tx.WithContext(ctx).Model(&product).Update("stock_quantity", remaining).Error; err != nil {
			return fmt.Errorf("debit product %s: %w", product.Name, err)
		}
	}

	var consumptions []models.BatchConsumption
	if err := tx.WithContext(ctx).Where("batch_id = ?", batch.ID).Find(&consumptions).Error; err != nil {
		return fmt.Errorf("load batch consumptions: %w", err)
	}

	for _, consumption := range consumptions {
		var ingredient models.Ingredient
		if err := tx.WithContext(ctx).First(&ingredient, consumption.IngredientID).Error; err != nil {
			return fmt.Errorf("load ingredient %d: %w", consumption.IngredientID, err)
		}
		restored := ingredient.StockQuantity.Add(consumption.Quantity)
		if err := tx.WithContext(ctx).Model(&ingredient).Update("stock_quantity", restored).Error; err != nil {
			return fmt.Errorf("credit ingredient %s: %w", ingredient.Name, err)
		}
	}

	if err := tx.WithContext(ctx).Where("batch_id = ?", batch.ID).Delete(&models.BatchConsumption{}).Error; err != nil {
		return fmt.Errorf("clear batch consumptions: %w", err)
	}

	batch.UnitsProduced = decimal.Zero
	if err := tx.WithContext(ctx).Model(batch).Update("units_produced", decimal.Zero).Error; err != nil {
		return fmt.Errorf("reset batch produced quantity: %w", err)
	}

	applog.Debug(ctx, "batch stock reversed", "batch", batch.ID)

	return nil
}

// Create runs Apply for a new batch inside one transaction.
func Create(ctx context.Context, db *gorm.DB, batch *models.Batch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Apply(ctx, tx, batch)
	})
}

// Update reverses the batch's previous effect and applies it again with the
// new recipe and execution count, all inside one transaction.
func Update(ctx context.Context, db *gorm.DB, batch *models.Batch, recipeID uint, executions int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := Reverse(ctx, tx, batch); err != nil {
			return err
		}
		batch.RecipeID = recipeID
		batch.Executions = executions
		return Apply(ctx, tx, batch)
	})
}

// Delete reverses the batch's effect and removes the record, all inside one
// transaction. The deletion aborts when the reversal cannot be completed.
func Delete(ctx context.Context, db *gorm.DB, batch *models.Batch) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := Reverse(ctx, tx, batch); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Delete(batch).Error; err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		return nil
	})
}

func resolveProduct(ctx context.Context, tx *gorm.DB, recipe models.Recipe) (*models.Product, error) {
	var product models.Product
	err := tx.WithContext(ctx).Where("name = ?", recipe.Name).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("resolve product for %s: %w", recipe.Name, err)
	}

	product = models.Product{
		Name:          recipe.Name,
		StockQuantity: decimal.Zero,
		SalePrice:     recipe.CostPerPortion,
	}
	if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product for %s: %w", recipe.Name, err)
	}
	return &product, nil
}
