// Package report prints sales histories and forecasts as console tables.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/you/go-dish-demand/internal/service"
)

type Console struct {
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter writes to w instead of stdout (tests).
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintHistory prints one row per dish and one column per period, plus totals.
func (c *Console) PrintHistory(snap service.Snapshot) {
	report := snap.Report
	fmt.Fprintf(c.out, "\nSimulated sales, snapshot %s (%s)\n", snap.ID, snap.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(report.ByYear) == 0 {
		fmt.Fprintln(c.out, "  (no history)")
		return
	}

	header := []any{"Dish"}
	for _, yr := range report.ByYear {
		header = append(header, strconv.Itoa(yr.Year))
	}
	header = append(header, "Total")

	table := tablewriter.NewWriter(c.out)
	table.Header(header...)

	first := report.ByYear[0].SalesByDish
	for i, rec := range first {
		row := []any{rec.Dish}
		total := 0
		for _, yr := range report.ByYear {
			units := yr.SalesByDish[i].Units
			total += units
			row = append(row, strconv.Itoa(units))
		}
		row = append(row, strconv.Itoa(total))
		table.Append(row...)
	}
	table.Render()

	fmt.Fprintf(c.out, "  Total units simulated: %d\n", report.TotalUnits)
}

// PrintForecasts prints the fitted trend and projection of each dish.
func (c *Console) PrintForecasts(results []service.ForecastResult) {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "  (no forecasts)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Dish", "Points", "Slope/yr", "Period", "Predicted")
	for _, res := range results {
		table.Append(
			res.Dish,
			strconv.Itoa(len(res.HistorySeries)),
			fmt.Sprintf("%+.1f", res.Slope),
			strconv.Itoa(res.PredictedYear),
			strconv.Itoa(res.PredictedUnits),
		)
	}
	table.Render()
}
