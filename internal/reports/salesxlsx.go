package reports

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"padoca/models"
)

const salesSheetName = "Sales"

// WriteSalesWorkbook renders the sales ledger as an xlsx workbook, one row
// per sale with a totals row at the bottom. Items and Customer must be
// preloaded on the sales passed in.
func WriteSalesWorkbook(w io.Writer, sales []models.Sale) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet, err := book.NewSheet(salesSheetName)
	if err != nil {
		return err
	}
	book.SetActiveSheet(sheet)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headers := []string{"Reference", "Sold at", "Customer", "Payment", "Items", "Discount", "Total"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := book.SetCellValue(salesSheetName, cell, header); err != nil {
			return err
		}
	}

	total := decimal.Zero
	for idx, sale := range sales {
		row := idx + 2

		customer := ""
		if sale.Customer != nil {
			customer = sale.Customer.Name
		}
		itemCount := 0
		for _, item := range sale.Items {
			itemCount += item.Quantity
		}

		values := []any{
			sale.Reference,
			sale.SoldAt.Format("2006-01-02 15:04"),
			customer,
			sale.PaymentMethod,
			itemCount,
			sale.Discount.InexactFloat64(),
			sale.TotalValue.InexactFloat64(),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := book.SetCellValue(salesSheetName, cell, value); err != nil {
				return err
			}
		}
		total = total.Add(sale.TotalValue)
	}

	totalRow := len(sales) + 2
	labelCell := fmt.Sprintf("F%d", totalRow)
	valueCell := fmt.Sprintf("G%d", totalRow)
	if err := book.SetCellValue(salesSheetName, labelCell, "Total"); err != nil {
		return err
	}
	if err := book.SetCellValue(salesSheetName, valueCell, total.InexactFloat64()); err != nil {
		return err
	}

	return book.Write(w)
}
