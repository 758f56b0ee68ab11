package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"padoca/models"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildShoppingListSelectsLowStock(t *testing.T) {
	ingredients := []models.Ingredient{
		{Name: "Wheat Flour", Unit: models.UnitGram, StockQuantity: dec("500"), MinimumStock: dec("1000"), UnitPrice: dec("0.01")},
		{Name: "Butter", Unit: models.UnitGram, StockQuantity: dec("5000"), MinimumStock: dec("1000"), UnitPrice: dec("0.05")},
		{Name: "Salt", Unit: models.UnitGram, StockQuantity: dec("200"), MinimumStock: dec("200"), UnitPrice: dec("0.002")},
	}

	list := BuildShoppingList(ingredients, time.Now())

	if len(list.Lines) != 2 {
		t.Fatalf("expected 2 shopping lines, got %d", len(list.Lines))
	}

	flour := list.Lines[0]
	if flour.Ingredient != "Wheat Flour" {
		t.Fatalf("expected first line to be Wheat Flour, got %s", flour.Ingredient)
	}
	// flat two times the minimum, regardless of remaining stock
	if !flour.SuggestedQuantity.Equal(dec("2000")) {
		t.Fatalf("expected suggested quantity 2000, got %s", flour.SuggestedQuantity)
	}
	if !flour.EstimatedCost.Equal(dec("20.00")) {
		t.Fatalf("expected estimated cost 20.00, got %s", flour.EstimatedCost)
	}

	salt := list.Lines[1]
	if !salt.SuggestedQuantity.Equal(dec("400")) {
		t.Fatalf("expected suggested quantity 400 for at-minimum stock, got %s", salt.SuggestedQuantity)
	}

	expectedTotal := dec("20.00").Add(dec("0.80"))
	if !list.Total.Equal(expectedTotal) {
		t.Fatalf("expected total %s, got %s", expectedTotal, list.Total)
	}
}

func TestWriteShoppingListPDFProducesDocument(t *testing.T) {
	list := BuildShoppingList([]models.Ingredient{
		{Name: "Refined Sugar", Unit: models.UnitGram, StockQuantity: dec("100"), MinimumStock: dec("500"), UnitPrice: dec("0.004")},
	}, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	if err := WriteShoppingListPDF(&buf, list); err != nil {
		t.Fatalf("WriteShoppingListPDF returned error: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("expected PDF output, got prefix %q", buf.String()[:8])
	}
}

func TestWriteShoppingListPDFHandlesEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShoppingListPDF(&buf, ShoppingList{GeneratedAt: time.Now()}); err != nil {
		t.Fatalf("WriteShoppingListPDF returned error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a document even with no lines")
	}
}

func TestBuildAssetRegisterTotals(t *testing.T) {
	assets := []models.Asset{
		{Name: "Deck Oven", Quantity: 1, UnitValue: dec("18500.00"), Condition: models.AssetConditionGood},
		{Name: "Spiral Mixer", Quantity: 2, UnitValue: dec("3200.00"), Condition: models.AssetConditionWorn},
	}

	register := BuildAssetRegister(assets, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))

	if len(register.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(register.Assets))
	}
	// 18500 + 2 × 3200
	if !register.TotalValue.Equal(dec("24900.00")) {
		t.Fatalf("expected total value 24900.00, got %s", register.TotalValue)
	}
}

func TestWriteAssetRegisterPDFProducesDocument(t *testing.T) {
	register := BuildAssetRegister([]models.Asset{
		{Name: "Display Case", Quantity: 1, UnitValue: dec("4100.00"), Condition: models.AssetConditionNew},
	}, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	if err := WriteAssetRegisterPDF(&buf, register); err != nil {
		t.Fatalf("WriteAssetRegisterPDF returned error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("expected PDF output, got prefix %q", buf.String()[:8])
	}
}

func TestWriteAssetRegisterPDFHandlesEmptyRegister(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAssetRegisterPDF(&buf, AssetRegister{GeneratedAt: time.Now()}); err != nil {
		t.Fatalf("WriteAssetRegisterPDF returned error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a document even with no assets")
	}
}

func TestWriteSalesWorkbookRoundTrips(t *testing.T) {
	customer := &models.Customer{Name: "Dona Rosa"}
	sales := []models.Sale{
		{
			Reference:     "ref-1",
			SoldAt:        time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
			PaymentMethod: models.PaymentPix,
			Customer:      customer,
			Discount:      dec("1.00"),
			TotalValue:    dec("23.50"),
			Items:         []models.SaleItem{{Quantity: 3}, {Quantity: 2}},
		},
		{
			Reference:     "ref-2",
			SoldAt:        time.Date(2026, 2, 2, 16, 0, 0, 0, time.UTC),
			PaymentMethod: models.PaymentCash,
			TotalValue:    dec("10.00"),
			Items:         []models.SaleItem{{Quantity: 1}},
		},
	}

	var buf bytes.Buffer
	if err := WriteSalesWorkbook(&buf, sales); err != nil {
		t.Fatalf("WriteSalesWorkbook returned error: %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(salesSheetName)
	if err != nil {
		t.Fatalf("failed to read sheet rows: %v", err)
	}

	// header + 2 sales + totals
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[1][0] != "ref-1" {
		t.Fatalf("expected first sale reference ref-1, got %q", rows[1][0])
	}
	if rows[1][2] != "Dona Rosa" {
		t.Fatalf("expected customer name on first row, got %q", rows[1][2])
	}
	if rows[3][6] != "33.5" {
		t.Fatalf("expected total 33.5, got %q", rows[3][6])
	}
}
