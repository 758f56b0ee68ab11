package pages

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"padoca/internal/views/components"
	"padoca/internal/views/layout"
)

// DashboardData aggregates the metrics shown on the workspace home screen.
type DashboardData struct {
	UserName        string
	Theme           string
	CashBalance     decimal.Decimal
	TotalSales      decimal.Decimal
	TotalPurchases  decimal.Decimal
	TotalExpenses   decimal.Decimal
	IngredientCount int
	LowStockCount   int
	RecipeCount     int
	ProductCount    int
	CustomerCount   int
	BatchesToday    int
	RecentBatches   []components.ActivityEntry
}

var sidebarLinks = []components.SidebarLink{
	{Label: "Overview", Path: "/app", Section: "overview"},
	{Label: "Ingredients", Path: "/app/ingredients", Section: "ingredients"},
	{Label: "Recipes", Path: "/app/recipes", Section: "recipes"},
	{Label: "Batches", Path: "/app/batches", Section: "batches"},
	{Label: "Products", Path: "/app/products", Section: "products"},
	{Label: "Customers", Path: "/app/customers", Section: "customers"},
	{Label: "Finance", Path: "/app/finance", Section: "finance"},
}

// Dashboard renders the full workspace home page.
func Dashboard(data DashboardData) templ.Component {
	sidebar := components.Sidebar(components.SidebarData{Active: "overview", Features: sidebarLinks})
	return layout.Layout("Padoca — Overview", sidebar, dashboardContent(data), true, layout.ThemeByID(data.Theme))
}

// DashboardPartial renders only the metrics region for HTMX swaps.
func DashboardPartial(data DashboardData) templ.Component {
	return dashboardContent(data)
}

func dashboardContent(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<section class=\"dashboard\" id=\"dashboard\">")
		if data.UserName != "" {
			b.WriteString("<h1>Good morning, ")
			b.WriteString(templ.EscapeString(data.UserName))
			b.WriteString("</h1>")
		}
		b.WriteString("<div class=\"stat-grid\">")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		cards := []templ.Component{
			components.StatCard("Cash balance", FormatMoney(data.CashBalance), "", "Sales minus purchases and expenses"),
			components.StatCard("Batches today", strconv.Itoa(data.BatchesToday), "", ""),
			components.StatCard("Low stock", strconv.Itoa(data.LowStockCount), "", "Ingredients at or below minimum"),
			components.StatCard("Recipes", strconv.Itoa(data.RecipeCount), "", ""),
			components.StatCard("Products", strconv.Itoa(data.ProductCount), "", ""),
			components.StatCard("Customers", strconv.Itoa(data.CustomerCount), "", ""),
		}
		for _, card := range cards {
			if err := card.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div><h2>Recent batches</h2>"); err != nil {
			return err
		}
		if err := components.ActivityTable(data.RecentBatches).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</section>")
		return err
	})
}
