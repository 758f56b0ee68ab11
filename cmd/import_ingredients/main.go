package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"padoca/internal/config"
	"padoca/internal/db"
	"padoca/models"
)

var cleanWhitespace = regexp.MustCompile(`\s+`)

func main() {
	csvPath := "ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			ingredient, err := buildIngredient(record)
			if err != nil {
				return err
			}

			var existing models.Ingredient
			err = tx.Where("lower(name) = ?", strings.ToLower(ingredient.Name)).First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"unit":          ingredient.Unit,
					"minimum_stock": ingredient.MinimumStock,
					"unit_price":    ingredient.UnitPrice,
				}
				if !ingredient.StockQuantity.IsZero() {
					updates["stock_quantity"] = ingredient.StockQuantity
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update ingredient %q: %w", ingredient.Name, err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&ingredient).Error; err != nil {
					return fmt.Errorf("create ingredient %q: %w", ingredient.Name, err)
				}
			default:
				return fmt.Errorf("find ingredient %q: %w", ingredient.Name, err)
			}

			return nil
		}); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record["Name"], err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(csvPath))
	return nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildIngredient(row map[string]string) (models.Ingredient, error) {
	name := normalizeText(row["Name"])
	if name == "" {
		return models.Ingredient{}, errors.New("ingredient name must not be empty")
	}

	unit, err := normalizeUnit(row["Unit"])
	if err != nil {
		return models.Ingredient{}, err
	}

	stock, err := parseAmount(row["Stock"], 3)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("parse stock: %w", err)
	}

	minimum, err := parseAmount(row["Minimum Stock"], 3)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("parse minimum stock: %w", err)
	}

	price, err := parseAmount(row["Unit Price"], 2)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("parse unit price: %w", err)
	}

	return models.Ingredient{
		Name:          name,
		Unit:          unit,
		StockQuantity: stock,
		MinimumStock:  minimum,
		UnitPrice:     price,
	}, nil
}

func normalizeText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	return strings.TrimSpace(cleanWhitespace.ReplaceAllString(value, " "))
}

func normalizeUnit(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "g", "gram", "grams", "grama", "gramas":
		return models.UnitGram, nil
	case "kg", "kilo", "kilogram", "quilo":
		return models.UnitKilogram, nil
	case "ml", "milliliter", "mililitro":
		return models.UnitMilliliter, nil
	case "l", "liter", "litro":
		return models.UnitLiter, nil
	case "un", "unit", "units", "piece", "unidade":
		return models.UnitPiece, nil
	}
	return "", fmt.Errorf("unrecognized unit %q", value)
}

// parseAmount accepts both dot and comma decimal separators and tolerates a
// currency prefix, since supplier spreadsheets mix both conventions.
func parseAmount(value string, places int32) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimSpace(strings.TrimPrefix(value, "R$"))
	if value == "" {
		return decimal.Zero, nil
	}

	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", value)
	}
	return parsed.Round(places), nil
}
