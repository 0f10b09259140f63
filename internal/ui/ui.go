// Package ui renders the server's HTML pages as templ components.
// The components are written against the templ runtime directly; the
// dashboard is a single job table, too small to warrant generated
// templates.
package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// JobListItem is the view model for one row of the job table.
type JobListItem struct {
	ID           string
	State        string
	Objective    string
	Dim          int
	Iters        int
	Iterations   int
	BestScore    float64
	InitialScore float64
	StartTime    time.Time
	EndTime      *time.Time
	Error        string
}

// JobList renders the index page listing all jobs.
func JobList(jobs []JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHeader); err != nil {
			return err
		}

		if len(jobs) == 0 {
			if _, err := io.WriteString(w, `<p class="empty">No jobs yet. Create one with POST /api/v1/jobs.</p>`); err != nil {
				return err
			}
			_, err := io.WriteString(w, pageFooter)
			return err
		}

		if _, err := io.WriteString(w,
			`<table><thead><tr><th>Job</th><th>State</th><th>Objective</th><th>Progress</th><th>Score</th><th>Started</th></tr></thead><tbody>`); err != nil {
			return err
		}

		for _, job := range jobs {
			if err := jobRow(job).Render(ctx, w); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFooter)
		return err
	})
}

// jobRow renders a single table row.
func jobRow(job JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := job.ID
		if len(id) > 8 {
			id = id[:8]
		}

		score := fmt.Sprintf("%.6g &rarr; %.6g", job.InitialScore, job.BestScore)
		if job.Iterations == 0 {
			score = "&mdash;"
		}

		detail := fmt.Sprintf("%s d=%d", templ.EscapeString(job.Objective), job.Dim)
		if job.Error != "" {
			detail += fmt.Sprintf(` <span class="error">%s</span>`, templ.EscapeString(job.Error))
		}

		_, err := fmt.Fprintf(w,
			`<tr class="state-%s"><td><a href="/api/v1/jobs/%s/status"><code>%s</code></a></td><td>%s</td><td>%s</td><td>%d/%d</td><td>%s</td><td>%s</td></tr>`,
			templ.EscapeString(job.State),
			templ.EscapeString(job.ID),
			templ.EscapeString(id),
			templ.EscapeString(job.State),
			detail,
			job.Iterations, job.Iters,
			score,
			job.StartTime.Format("2006-01-02 15:04:05"),
		)
		return err
	})
}

const pageHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>nesopt jobs</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; }
tr.state-running td { background: #fffbe6; }
tr.state-failed td { background: #fff0f0; }
.error { color: #b00; }
.empty { color: #666; }
</style>
</head>
<body>
<h1>Optimization jobs</h1>
`

const pageFooter = `</body>
</html>
`
