// Package reports produces the downloadable documents offered by the
// application: the restocking shopping list as PDF and the sales ledger as a
// spreadsheet.
package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"padoca/models"
)

// ShoppingLine is one ingredient that needs restocking. SuggestedQuantity is
// a flat two times the minimum stock, matching how the bakery actually buys.
type ShoppingLine struct {
	Ingredient        string
	Unit              string
	StockQuantity     decimal.Decimal
	MinimumStock      decimal.Decimal
	SuggestedQuantity decimal.Decimal
	EstimatedCost     decimal.Decimal
}

// ShoppingList aggregates everything below its reorder threshold.
type ShoppingList struct {
	GeneratedAt time.Time
	Lines       []ShoppingLine
	Total       decimal.Decimal
}

// BuildShoppingList selects the low-stock ingredients and computes suggested
// purchase quantities and their estimated cost.
func BuildShoppingList(ingredients []models.Ingredient, now time.Time) ShoppingList {
	list := ShoppingList{GeneratedAt: now}
	for _, ingredient := range ingredients {
		if !ingredient.BelowMinimum() {
			continue
		}
		two := decimal.NewFromInt(2)
		suggested := ingredient.MinimumStock.Mul(two).Round(3)
		if !suggested.IsPositive() {
			continue
		}
		cost := suggested.Mul(ingredient.UnitPrice).Round(2)
		list.Lines = append(list.Lines, ShoppingLine{
			Ingredient:        ingredient.Name,
			Unit:              ingredient.Unit,
			StockQuantity:     ingredient.StockQuantity,
			MinimumStock:      ingredient.MinimumStock,
			SuggestedQuantity: suggested,
			EstimatedCost:     cost,
		})
		list.Total = list.Total.Add(cost)
	}
	return list
}

// WriteShoppingListPDF renders the shopping list as a printable PDF document.
func WriteShoppingListPDF(w io.Writer, list ShoppingList) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Shopping List", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Restocking Shopping List")
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 8, fmt.Sprintf("Generated %s", list.GeneratedAt.Format("02 Jan 2006 15:04")))
	doc.Ln(12)

	if len(list.Lines) == 0 {
		doc.SetFont("Helvetica", "I", 11)
		doc.Cell(0, 8, "All ingredients are above their minimum stock.")
		return doc.Output(w)
	}

	colWidths := []float64{60, 25, 25, 30, 30}
	headers := []string{"Ingredient", "In stock", "Minimum", "Buy", "Est. cost"}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(235, 229, 217)
	for i, header := range headers {
		doc.CellFormat(colWidths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, line := range list.Lines {
		doc.CellFormat(colWidths[0], 7, line.Ingredient, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], 7, fmt.Sprintf("%s %s", line.StockQuantity, line.Unit), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[2], 7, fmt.Sprintf("%s %s", line.MinimumStock, line.Unit), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[3], 7, fmt.Sprintf("%s %s", line.SuggestedQuantity, line.Unit), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[4], 7, fmt.Sprintf("R$ %s", line.EstimatedCost.StringFixed(2)), "1", 0, "R", false, 0, "")
		doc.Ln(-1)
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(colWidths[0]+colWidths[1]+colWidths[2]+colWidths[3], 8, "Estimated total", "1", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[4], 8, fmt.Sprintf("R$ %s", list.Total.StringFixed(2)), "1", 0, "R", false, 0, "")
	doc.Ln(-1)

	return doc.Output(w)
}
