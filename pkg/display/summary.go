package display

import (
	"context"
	"strconv"

	"github.com/arthur-debert/tasklines/pkg/coordinator"
	"github.com/arthur-debert/tasklines/pkg/style"
)

func statusFor(l coordinator.Lifecycle) style.Status {
	switch l {
	case coordinator.Completed:
		return style.StatusCompleted
	case coordinator.Failed:
		return style.StatusFailed
	case coordinator.Paused:
		return style.StatusPaused
	default:
		return style.StatusRunning
	}
}

// SummaryRows converts reports into rows for the closing table
func SummaryRows(reports []coordinator.TaskReport) []style.SummaryRow {
	rows := make([]style.SummaryRow, 0, len(reports))
	for _, r := range reports {
		name := r.Title
		if name == "" {
			name = r.Mode
		}
		rows = append(rows, style.SummaryRow{
			ID:        strconv.FormatUint(uint64(r.ID), 10),
			Name:      name,
			Status:    statusFor(r.Lifecycle),
			Completed: r.Report.CompletedJobs,
			Total:     r.Report.TotalJobs,
			Elapsed:   r.Report.Elapsed,
			Rate:      r.Report.JobsPerSecond,
			Retries:   r.Report.Retries,
			Error:     r.Report.LastError,
		})
	}
	return rows
}

// Status aggregates the state of every reported task: failed if any
// failed, completed once all completed, running otherwise
func (d *Display) Status(ctx context.Context) (style.Status, error) {
	reports, err := d.Reports(ctx)
	if err != nil {
		return style.StatusRunning, err
	}
	statuses := make([]style.Status, len(reports))
	for i, r := range reports {
		statuses[i] = statusFor(r.Lifecycle)
	}
	return style.Aggregate(statuses), nil
}

// Summary renders the statistics table. Call it before Close; the
// coordinator stops answering once closed.
func (d *Display) Summary(ctx context.Context) (string, error) {
	reports, err := d.Reports(ctx)
	if err != nil {
		return "", err
	}
	return style.RenderSummary(SummaryRows(reports), d.caps.SupportsColor)
}
