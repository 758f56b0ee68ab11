package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/internal/reports"
	"padoca/internal/views/pages"
	"padoca/models"
)

var (
	errReportRecipeNotFound = errors.New("reports: recipe not found")
	nowFunc                 = time.Now
)

// ShoppingListPDF streams a printable restocking list of every ingredient at
// or below its minimum stock.
func ShoppingListPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		http.Error(w, "Reporting is unavailable because no database connection is configured.", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	var ingredients []models.Ingredient
	if err := database.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to load ingredients for shopping list", "error", err)
		http.Error(w, "We were unable to generate the shopping list. Please try again.", http.StatusInternalServerError)
		return
	}

	list := reports.BuildShoppingList(ingredients, nowFunc().UTC())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping-list.pdf"`)
	if err := reports.WriteShoppingListPDF(w, list); err != nil {
		applog.Error(ctx, "failed to render shopping list pdf", "error", err)
	}
}

// AssetRegisterPDF streams a printable inventory of the registered equipment.
func AssetRegisterPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		http.Error(w, "Reporting is unavailable because no database connection is configured.", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	var assets []models.Asset
	if err := database.WithContext(ctx).Order("name asc").Find(&assets).Error; err != nil {
		applog.Error(ctx, "failed to load assets for register", "error", err)
		http.Error(w, "We were unable to generate the asset register. Please try again.", http.StatusInternalServerError)
		return
	}

	register := reports.BuildAssetRegister(assets, nowFunc().UTC())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="asset-register.pdf"`)
	if err := reports.WriteAssetRegisterPDF(w, register); err != nil {
		applog.Error(ctx, "failed to render asset register pdf", "error", err)
	}
}

// SalesWorkbook streams the sales ledger as an xlsx spreadsheet. Optional
// `from` and `to` query parameters (YYYY-MM-DD) bound the period.
func SalesWorkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		http.Error(w, "Reporting is unavailable because no database connection is configured.", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	query := database.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Order("sold_at asc")

	if from, ok := parseReportDate(r.URL.Query().Get("from")); ok {
		query = query.Where("sold_at >= ?", from)
	}
	if to, ok := parseReportDate(r.URL.Query().Get("to")); ok {
		query = query.Where("sold_at < ?", to.AddDate(0, 0, 1))
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		applog.Error(ctx, "failed to load sales for workbook", "error", err)
		http.Error(w, "We were unable to generate the sales report. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.xlsx"`)
	if err := reports.WriteSalesWorkbook(w, sales); err != nil {
		applog.Error(ctx, "failed to render sales workbook", "error", err)
	}
}

// GenerateRecipeCostReport renders a printable cost breakdown for the
// selected recipe.
func GenerateRecipeCostReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid submission.", http.StatusBadRequest)
		return
	}

	recipeID := pages.ParseUint(r.FormValue("recipe_id"))
	if recipeID == 0 {
		http.Error(w, "Select a recipe before running the report.", http.StatusBadRequest)
		return
	}

	report, err := buildRecipeCostReportData(r.Context(), recipeID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrInvalidDB):
			http.Error(w, "Reporting is unavailable because no database connection is configured.", http.StatusServiceUnavailable)
		case errors.Is(err, errReportRecipeNotFound):
			http.Error(w, "The selected recipe no longer exists.", http.StatusNotFound)
		default:
			applog.Error(r.Context(), "failed to build recipe cost report", "error", err, "recipeID", recipeID)
			http.Error(w, "We were unable to generate the cost report. Please try again.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.RecipeCostReport(report).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render recipe cost report", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func buildRecipeCostReportData(ctx context.Context, recipeID uint) (pages.RecipeCostReportData, error) {
	if database == nil {
		return pages.RecipeCostReportData{}, gorm.ErrInvalidDB
	}

	var recipe models.Recipe
	err := database.WithContext(ctx).
		Preload("Items").
		Preload("Items.Ingredient").
		First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pages.RecipeCostReportData{}, errReportRecipeNotFound
		}
		return pages.RecipeCostReportData{}, err
	}

	lines := make([]pages.RecipeCostReportLine, 0, len(recipe.Items))
	for _, item := range recipe.Items {
		line := pages.RecipeCostReportLine{
			Unit:             item.Unit,
			GrossWeight:      item.GrossWeight,
			NetWeight:        item.NetWeight,
			CorrectionFactor: item.CorrectionFactor,
			UnitPrice:        item.UnitPrice,
			LineCost:         item.LineCost,
		}
		if item.Ingredient != nil {
			line.IngredientName = item.Ingredient.Name
		}
		lines = append(lines, line)
	}

	return pages.RecipeCostReportData{
		RecipeName:     recipe.Name,
		Yield:          recipe.Yield,
		TotalCost:      recipe.TotalCost,
		CostPerPortion: recipe.CostPerPortion,
		GeneratedAt:    nowFunc().UTC(),
		Lines:          lines,
	}, nil
}

func parseReportDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
