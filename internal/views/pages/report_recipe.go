package pages

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"padoca/internal/views/layout"
)

// RecipeCostReportLine holds one priced ingredient row of the cost report.
type RecipeCostReportLine struct {
	IngredientName   string
	Unit             string
	GrossWeight      decimal.Decimal
	NetWeight        decimal.Decimal
	CorrectionFactor decimal.Decimal
	UnitPrice        decimal.Decimal
	LineCost         decimal.Decimal
}

// RecipeCostReportData aggregates everything needed to render the cost report.
type RecipeCostReportData struct {
	RecipeName     string
	Yield          int
	TotalCost      decimal.Decimal
	CostPerPortion decimal.Decimal
	GeneratedAt    time.Time
	Lines          []RecipeCostReportLine
}

// RecipeCostReport renders a printable cost breakdown for one recipe.
func RecipeCostReport(data RecipeCostReportData) templ.Component {
	return layout.Layout("Recipe cost — "+data.RecipeName, nil, recipeCostContent(data), false, layout.ThemeByID(""))
}

func recipeCostContent(data RecipeCostReportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<article class=\"report\"><h1>")
		b.WriteString(templ.EscapeString(data.RecipeName))
		b.WriteString("</h1><p class=\"report-meta\">Generated ")
		b.WriteString(templ.EscapeString(FormatReportDate(data.GeneratedAt)))
		b.WriteString("</p>")
		b.WriteString("<table class=\"report-table\"><thead><tr><th>Ingredient</th><th>Gross</th><th>Net</th><th>Factor</th><th>Unit price</th><th>Cost</th></tr></thead><tbody>")
		for _, line := range data.Lines {
			b.WriteString("<tr><td>")
			b.WriteString(templ.EscapeString(line.IngredientName))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(FormatQuantity(line.GrossWeight, line.Unit)))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(FormatQuantity(line.NetWeight, line.Unit)))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(line.CorrectionFactor.Round(3).String()))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(FormatMoney(line.UnitPrice)))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(FormatMoney(line.LineCost)))
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody><tfoot><tr><td colspan=\"5\">Total</td><td>")
		b.WriteString(templ.EscapeString(FormatMoney(data.TotalCost)))
		b.WriteString("</td></tr><tr><td colspan=\"5\">Cost per portion (yield ")
		b.WriteString(templ.EscapeString(strconv.Itoa(data.Yield)))
		b.WriteString(")</td><td>")
		b.WriteString(templ.EscapeString(FormatMoney(data.CostPerPortion)))
		b.WriteString("</td></tr></tfoot></table></article>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
