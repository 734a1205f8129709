package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Report summarises a task's statistics at a point in time
type Report struct {
	Status        JobStatus
	TotalJobs     int
	CompletedJobs int
	Percent       float64
	Elapsed       time.Duration
	ETA           time.Duration
	HasETA        bool
	JobsPerSecond float64
	Failures      int
	Retries       int
	MaxRetries    int
	Children      int
	LastError     string
}

// Report computes statistics for b at now
func (b *BaseConfig) Report(now time.Time) Report {
	r := Report{
		Status:        b.Status,
		TotalJobs:     b.TotalJobs,
		CompletedJobs: b.CompletedJobs,
		Percent:       b.Progress() * 100,
		Failures:      b.FailureCount,
		Retries:       b.RetryCount,
		MaxRetries:    b.MaxRetries,
		Children:      len(b.children),
		LastError:     b.LastError,
	}
	if !b.StartTime.IsZero() && now.After(b.StartTime) {
		r.Elapsed = now.Sub(b.StartTime)
	}
	if secs := r.Elapsed.Seconds(); secs > 0 {
		r.JobsPerSecond = float64(b.CompletedJobs) / secs
	}
	if r.JobsPerSecond > 0 && b.CompletedJobs < b.TotalJobs {
		remaining := float64(b.TotalJobs-b.CompletedJobs) / r.JobsPerSecond
		r.ETA = time.Duration(remaining * float64(time.Second))
		r.HasETA = true
	}
	return r
}

// String renders the report as a multi-line summary
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", r.Status)
	fmt.Fprintf(&sb, "Progress: %.1f%% (%s/%s)\n", r.Percent,
		humanize.Comma(int64(r.CompletedJobs)), humanize.Comma(int64(r.TotalJobs)))
	fmt.Fprintf(&sb, "Elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	if r.HasETA {
		fmt.Fprintf(&sb, "ETA: %s\n", r.ETA.Round(time.Second))
	}
	fmt.Fprintf(&sb, "Speed: %s jobs/s\n", humanize.FormatFloat("#,###.##", r.JobsPerSecond))
	fmt.Fprintf(&sb, "Failures: %d\n", r.Failures)
	fmt.Fprintf(&sb, "Retries: %d/%d", r.Retries, r.MaxRetries)
	if r.Children > 0 {
		fmt.Fprintf(&sb, "\nChildren: %d", r.Children)
	}
	if r.LastError != "" {
		fmt.Fprintf(&sb, "\nLast error: %s", r.LastError)
	}
	return sb.String()
}
