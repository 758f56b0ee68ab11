package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"padoca/models"
)

// AssetRegister is the printable inventory of owned equipment.
type AssetRegister struct {
	GeneratedAt time.Time
	Assets      []models.Asset
	TotalValue  decimal.Decimal
}

// BuildAssetRegister totals the estimated worth of every registered asset.
func BuildAssetRegister(assets []models.Asset, now time.Time) AssetRegister {
	register := AssetRegister{GeneratedAt: now, Assets: assets}
	for _, asset := range assets {
		register.TotalValue = register.TotalValue.Add(asset.TotalValue())
	}
	return register
}

// WriteAssetRegisterPDF renders the equipment register as a printable PDF.
func WriteAssetRegisterPDF(w io.Writer, register AssetRegister) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Asset Register", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Asset Register")
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 8, fmt.Sprintf("Generated %s", register.GeneratedAt.Format("02 Jan 2006 15:04")))
	doc.Ln(12)

	if len(register.Assets) == 0 {
		doc.SetFont("Helvetica", "I", 11)
		doc.Cell(0, 8, "No assets registered.")
		return doc.Output(w)
	}

	colWidths := []float64{75, 15, 30, 30, 25}
	headers := []string{"Asset", "Qty", "Unit value", "Total value", "Condition"}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(235, 229, 217)
	for i, header := range headers {
		doc.CellFormat(colWidths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, asset := range register.Assets {
		doc.CellFormat(colWidths[0], 7, asset.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(colWidths[1], 7, fmt.Sprintf("%d", asset.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[2], 7, fmt.Sprintf("R$ %s", asset.UnitValue.StringFixed(2)), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[3], 7, fmt.Sprintf("R$ %s", asset.TotalValue().StringFixed(2)), "1", 0, "R", false, 0, "")
		doc.CellFormat(colWidths[4], 7, asset.Condition, "1", 0, "L", false, 0, "")
		doc.Ln(-1)
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 8,
		fmt.Sprintf("%d assets", len(register.Assets)), "1", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[3], 8, fmt.Sprintf("R$ %s", register.TotalValue.StringFixed(2)), "1", 0, "R", false, 0, "")
	doc.CellFormat(colWidths[4], 8, "", "1", 0, "L", false, 0, "")
	doc.Ln(-1)

	return doc.Output(w)
}
