package server

import (
	"context"
	"net/http"

	"padoca/internal/handlers"
	applog "padoca/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)

	protected := func(h http.HandlerFunc) http.Handler {
		return handlers.RequireAuthentication(h)
	}

	mux.Handle("/app", protected(handlers.Dashboard))
	mux.Handle("/app/preferences/update", protected(handlers.UpdatePreferences))

	mux.Handle("/app/api/ingredients", protected(handlers.IngredientResource))
	mux.Handle("/app/api/ingredients/", protected(handlers.IngredientResource))
	mux.Handle("/app/api/recipes", protected(handlers.RecipeResource))
	mux.Handle("/app/api/recipes/", protected(handlers.RecipeResource))
	mux.Handle("/app/api/recipe-items", protected(handlers.RecipeItemResource))
	mux.Handle("/app/api/recipe-items/", protected(handlers.RecipeItemResource))
	mux.Handle("/app/api/batches", protected(handlers.BatchResource))
	mux.Handle("/app/api/batches/", protected(handlers.BatchResource))
	mux.Handle("/app/api/products", protected(handlers.ProductResource))
	mux.Handle("/app/api/products/", protected(handlers.ProductResource))
	mux.Handle("/app/api/customers", protected(handlers.CustomerResource))
	mux.Handle("/app/api/customers/", protected(handlers.CustomerResource))
	mux.Handle("/app/api/sales", protected(handlers.SaleResource))
	mux.Handle("/app/api/sales/", protected(handlers.SaleResource))
	mux.Handle("/app/api/purchases", protected(handlers.PurchaseResource))
	mux.Handle("/app/api/purchases/", protected(handlers.PurchaseResource))
	mux.Handle("/app/api/expenses", protected(handlers.ExpenseResource))
	mux.Handle("/app/api/expenses/", protected(handlers.ExpenseResource))
	mux.Handle("/app/api/assets", protected(handlers.AssetResource))
	mux.Handle("/app/api/assets/", protected(handlers.AssetResource))

	mux.Handle("/app/api/users", handlers.RequireAdmin(http.HandlerFunc(handlers.UserResource)))
	mux.Handle("/app/api/users/", handlers.RequireAdmin(http.HandlerFunc(handlers.UserResource)))

	mux.Handle("/app/reports/shopping-list.pdf", protected(handlers.ShoppingListPDF))
	mux.Handle("/app/reports/sales.xlsx", protected(handlers.SalesWorkbook))
	mux.Handle("/app/reports/asset-register.pdf", protected(handlers.AssetRegisterPDF))
	mux.Handle("/app/reports/recipe-cost", protected(handlers.GenerateRecipeCostReport))
	mux.Handle("/app/tools/import-prices", protected(handlers.ToolsImportPrices))

	mux.Handle("/app/", protected(handlers.Dashboard))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/app", http.StatusSeeOther)
	})

	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir("web/static"))))

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
