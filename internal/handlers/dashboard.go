package handlers

import (
	"fmt"
	"net/http"
	"time"

	templpkg "github.com/a-h/templ"
	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/internal/views/components"
	"padoca/internal/views/pages"
	"padoca/models"
)

// Dashboard renders the main workspace overview once a user is authenticated.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := buildDashboardData(r)

	var component templpkg.Component
	if isHTMX(r) {
		component = pages.DashboardPartial(data)
	} else {
		component = pages.Dashboard(data)
	}

	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func buildDashboardData(r *http.Request) pages.DashboardData {
	data := pages.DashboardData{Theme: loadCurrentUserTheme(r)}
	if sessionManager != nil {
		data.UserName = sessionManager.GetString(r.Context(), sessionUserNameKey)
	}
	if database == nil {
		return data
	}

	ctx := r.Context()
	db := database.WithContext(ctx)

	var sales []models.Sale
	if err := db.Find(&sales).Error; err == nil {
		for _, sale := range sales {
			data.TotalSales = data.TotalSales.Add(sale.TotalValue)
		}
	} else {
		applog.Error(ctx, "failed to load sales for dashboard", "error", err)
	}

	var purchases []models.Purchase
	if err := db.Find(&purchases).Error; err == nil {
		for _, purchase := range purchases {
			data.TotalPurchases = data.TotalPurchases.Add(purchase.TotalValue())
		}
	} else {
		applog.Error(ctx, "failed to load purchases for dashboard", "error", err)
	}

	var expenses []models.Expense
	if err := db.Where("paid_at IS NOT NULL").Find(&expenses).Error; err == nil {
		for _, expense := range expenses {
			data.TotalExpenses = data.TotalExpenses.Add(expense.Value)
		}
	} else {
		applog.Error(ctx, "failed to load expenses for dashboard", "error", err)
	}

	data.CashBalance = data.TotalSales.Sub(data.TotalPurchases).Sub(data.TotalExpenses)

	data.IngredientCount = countRows(db, &models.Ingredient{})
	data.RecipeCount = countRows(db, &models.Recipe{})
	data.ProductCount = countRows(db, &models.Product{})
	data.CustomerCount = countRows(db, &models.Customer{})

	var ingredients []models.Ingredient
	if err := db.Find(&ingredients).Error; err == nil {
		for _, ingredient := range ingredients {
			if ingredient.BelowMinimum() {
				data.LowStockCount++
			}
		}
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var todayCount int64
	if err := db.Model(&models.Batch{}).Where("created_at >= ?", startOfDay).Count(&todayCount).Error; err == nil {
		data.BatchesToday = int(todayCount)
	}

	var batches []models.Batch
	if err := db.Preload("Recipe").Order("created_at desc").Limit(5).Find(&batches).Error; err == nil {
		for _, batch := range batches {
			entry := components.ActivityEntry{
				Reference: fmt.Sprintf("#%d", batch.ID),
				Quantity:  fmt.Sprintf("%s units", batch.UnitsProduced),
				Progress:  fmt.Sprintf("x%d", batch.Executions),
				UpdatedAt: batch.UpdatedAt.Format("02 Jan 15:04"),
				Status:    "Completed",
			}
			if batch.Recipe != nil {
				entry.Name = batch.Recipe.Name
			}
			data.RecentBatches = append(data.RecentBatches, entry)
		}
	} else {
		applog.Error(ctx, "failed to load recent batches for dashboard", "error", err)
	}

	return data
}

func countRows(db *gorm.DB, model any) int {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return 0
	}
	return int(count)
}
