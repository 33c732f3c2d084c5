package report

import (
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/session"
)

const markdownTemplate = `# Site Audit Report

- **Target:** {{.Target}}
- **Session:** {{.SessionID}}
- **Started:** {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}
- **Duration:** {{.Duration}}
- **Pages audited:** {{len .Pages}}

## Summary

| Status | Count |
|--------|-------|
{{- range .SummaryRows}}
| {{.Status}} | {{.Count}} |
{{- end}}

## Results by Test
{{range .Tests}}
### {{.TestID}}
{{range .Results}}
- {{statusIcon .Status}} {{if .PageURL}}{{.PageURL}} {{end}}({{.Status}}{{if .Error}}: {{.Error}}{{end}})
{{- end}}
{{end -}}
`

type summaryRow struct {
	Status string
	Count  int
}

type testSection struct {
	TestID  string
	Results []session.Result
}

type markdownData struct {
	*Results
	Duration    time.Duration
	SummaryRows []summaryRow
	Tests       []testSection
}

func statusIcon(s session.Status) string {
	switch s {
	case session.StatusPassed:
		return "✅"
	case session.StatusWarning:
		return "⚠️"
	case session.StatusSkipped:
		return "⏭️"
	default:
		return "❌"
	}
}

// RenderMarkdown renders the results document as a markdown report.
func RenderMarkdown(r *Results) (string, error) {
	tmpl, err := template.New("report").
		Funcs(template.FuncMap{"statusIcon": statusIcon}).
		Parse(markdownTemplate)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to parse report template", err)
	}

	data := markdownData{
		Results:     r,
		Duration:    r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond),
		SummaryRows: summaryRows(r.Summary),
		Tests:       testSections(r.Results),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to render report", err)
	}

	return b.String(), nil
}

// WriteMarkdown renders and writes the markdown report.
func WriteMarkdown(r *Results, path string) error {
	out, err := RenderMarkdown(r)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}

func summaryRows(summary map[string]int) []summaryRow {
	rows := make([]summaryRow, 0, len(summary))
	for status, count := range summary {
		rows = append(rows, summaryRow{Status: status, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Status < rows[j].Status })
	return rows
}

// testSections groups results by test id, keeping the sorted order the
// store produced.
func testSections(results []session.Result) []testSection {
	var sections []testSection
	for _, r := range results {
		if len(sections) == 0 || sections[len(sections)-1].TestID != r.TestID {
			sections = append(sections, testSection{TestID: r.TestID})
		}
		last := &sections[len(sections)-1]
		last.Results = append(last.Results, r)
	}
	return sections
}
