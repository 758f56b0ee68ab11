package mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "padoca/internal/log"
	"padoca/models"
)

// New returns an in-memory sqlite database seeded with representative bakery data.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:padoca-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Address{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Product{},
		&models.Batch{},
		&models.BatchConsumption{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Purchase{},
		&models.Expense{},
		&models.Asset{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("fermento"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Dona Marta",
		Email:        "marta@padoca.app",
		PasswordHash: string(password),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	flour := models.Ingredient{
		Name:          "Wheat Flour",
		Unit:          models.UnitGram,
		StockQuantity: decimal.NewFromInt(25000),
		MinimumStock:  decimal.NewFromInt(5000),
		UnitPrice:     decimal.RequireFromString("0.01"),
	}

	butter := models.Ingredient{
		Name:          "Butter",
		Unit:          models.UnitGram,
		StockQuantity: decimal.NewFromInt(4000),
		MinimumStock:  decimal.NewFromInt(1000),
		UnitPrice:     decimal.RequireFromString("0.05"),
	}

	sugar := models.Ingredient{
		Name:          "Refined Sugar",
		Unit:          models.UnitGram,
		StockQuantity: decimal.NewFromInt(12000),
		MinimumStock:  decimal.NewFromInt(3000),
		UnitPrice:     decimal.RequireFromString("0.008"),
	}

	ingredients := []*models.Ingredient{&flour, &butter, &sugar}
	for _, ingredient := range ingredients {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	croissant := models.Recipe{
		Name:         "Croissant",
		Author:       "Dona Marta",
		Instructions: "Laminate the dough with butter.\nProof overnight.\nBake at 200C.",
		Yield:        24,
	}

	poundCake := models.Recipe{
		Name:         "Pound Cake",
		Author:       "Dona Marta",
		Instructions: "Cream butter and sugar.\nFold in flour.\nBake at 180C.",
		Yield:        12,
	}

	if err := db.WithContext(ctx).Create(&croissant).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&poundCake).Error; err != nil {
		return err
	}

	items := []models.RecipeItem{
		{
			RecipeID:         croissant.ID,
			IngredientID:     flour.ID,
			Unit:             models.UnitGram,
			GrossWeight:      decimal.NewFromInt(1000),
			NetWeight:        decimal.NewFromInt(1000),
			CorrectionFactor: decimal.NewFromInt(1),
			UnitPrice:        flour.UnitPrice,
			LineCost:         decimal.RequireFromString("10.00"),
		},
		{
			RecipeID:         croissant.ID,
			IngredientID:     butter.ID,
			Unit:             models.UnitGram,
			GrossWeight:      decimal.NewFromInt(550),
			NetWeight:        decimal.NewFromInt(500),
			CorrectionFactor: decimal.RequireFromString("1.100"),
			UnitPrice:        butter.UnitPrice,
			LineCost:         decimal.RequireFromString("25.00"),
		},
		{
			RecipeID:         poundCake.ID,
			IngredientID:     sugar.ID,
			Unit:             models.UnitGram,
			GrossWeight:      decimal.NewFromInt(400),
			NetWeight:        decimal.NewFromInt(400),
			CorrectionFactor: decimal.NewFromInt(1),
			UnitPrice:        sugar.UnitPrice,
			LineCost:         decimal.RequireFromString("3.20"),
		},
	}

	for _, item := range items {
		itemCopy := item
		if err := db.WithContext(ctx).Create(&itemCopy).Error; err != nil {
			return err
		}
	}

	customer := models.Customer{
		Name:     "Seu Jorge",
		Nickname: "Jorginho",
		Phone:    "11988887777",
		Active:   true,
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return err
	}

	oven := models.Asset{
		Name:      "Deck Oven",
		Quantity:  1,
		UnitValue: decimal.RequireFromString("18500.00"),
		Condition: models.AssetConditionGood,
	}
	if err := db.WithContext(ctx).Create(&oven).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
