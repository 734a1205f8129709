package style

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// SummaryRow is one task in the closing summary table
type SummaryRow struct {
	ID        string
	Name      string
	Status    Status
	Completed int
	Total     int
	Elapsed   time.Duration
	Rate      float64
	Retries   int
	Error     string
}

var summaryHeader = []string{"Task", "Name", "Status", "Progress", "Elapsed", "Rate", "Retries", "Error"}

// RenderSummary renders rows as a table. With color off every cell is
// plain text.
func RenderSummary(rows []SummaryRow, color bool) (string, error) {
	if len(rows) == 0 {
		return "No tasks\n", nil
	}

	data := pterm.TableData{summaryHeader}
	for _, r := range rows {
		status := string(r.Status)
		if color {
			status = r.Status.PtermStyle().Sprint(status)
		}
		data = append(data, []string{
			r.ID,
			r.Name,
			status,
			progressCell(r.Completed, r.Total),
			r.Elapsed.Round(time.Millisecond).String(),
			rateCell(r.Rate),
			strconv.Itoa(r.Retries),
			r.Error,
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !color {
		plain := pterm.NewStyle()
		table = table.WithStyle(plain).WithHeaderStyle(plain).WithSeparatorStyle(plain)
	}
	return table.Srender()
}

// rateCell rounds to two decimals and drops trailing zeros
func rateCell(rate float64) string {
	return humanize.Commaf(math.Round(rate*100)/100) + "/s"
}

func progressCell(completed, total int) string {
	if total <= 0 {
		return humanize.Comma(int64(completed))
	}
	return fmt.Sprintf("%s/%s (%d%%)",
		humanize.Comma(int64(completed)),
		humanize.Comma(int64(total)),
		completed*100/total)
}
