package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sitehawk/sitehawk/internal/report"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// RenderAuditSummary renders a styled terminal summary of a finished audit.
func RenderAuditSummary(r *report.Results, styles Styles) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("🦅 Audit Complete"))
	b.WriteString("\n\n")

	b.WriteString(styles.Muted.Render("Target:   ") + styles.Subtitle.Render(r.Target) + "\n")
	b.WriteString(styles.Muted.Render("Session:  ") + r.SessionID + "\n")
	b.WriteString(styles.Muted.Render("Pages:    ") + fmt.Sprintf("%d", len(r.Pages)) + "\n")
	b.WriteString(styles.Muted.Render("Duration: ") + r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String() + "\n\n")

	var counts []string
	for _, status := range []session.Status{
		session.StatusPassed,
		session.StatusWarning,
		session.StatusFailed,
		session.StatusError,
		session.StatusSkipped,
	} {
		n := r.Summary[string(status)]
		if n == 0 {
			continue
		}
		line := fmt.Sprintf("%d %s", n, status)
		switch status {
		case session.StatusPassed:
			line = styles.Success.Render(line)
		case session.StatusWarning:
			line = styles.Warning.Render(line)
		case session.StatusFailed, session.StatusError:
			line = styles.Error.Render(line)
		default:
			line = styles.Muted.Render(line)
		}
		counts = append(counts, line)
	}
	b.WriteString(styles.Border.Render(strings.Join(counts, "  ")))
	b.WriteString("\n")

	return b.String()
}

// RenderStrategy renders an execution strategy as a per-phase breakdown
// for the plan command.
func RenderStrategy(strategy *schedule.ExecutionStrategy, sched *schedule.Scheduler, styles Styles) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("🦅 Execution Plan"))
	b.WriteString("\n\n")

	for _, plan := range strategy.Phases {
		selection := append(append([]string{}, plan.SessionTests...), plan.PageTests...)
		name := fmt.Sprintf("Phase %d", plan.Phase)
		if summary, ok := sched.Summary(plan.Phase, selection); ok {
			name = fmt.Sprintf("Phase %d · %s", plan.Phase, summary.Name)
		}

		b.WriteString(styles.Key.Render(name))
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  (concurrency %d, ~%s)", plan.MaxConcurrency, plan.EstimatedDuration)))
		b.WriteString("\n")

		for _, id := range plan.SessionTests {
			b.WriteString("  " + styles.Subtitle.Render(id) + styles.Muted.Render("  session") + "\n")
		}
		for _, id := range plan.PageTests {
			b.WriteString("  " + styles.Subtitle.Render(id) + styles.Muted.Render("  per page") + "\n")
		}
		b.WriteString("\n")
	}

	mode := "sequential pages"
	if strategy.ParallelPages {
		mode = fmt.Sprintf("up to %d pages in parallel", strategy.MaxConcurrentPages)
	}
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Total estimate: ~%s, %s", strategy.TotalEstimatedDuration, mode)))
	b.WriteString("\n")

	return b.String()
}
