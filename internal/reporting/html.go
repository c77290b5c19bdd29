package reporting

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/codewithboateng/diguard/internal/model"
)

// WriteHTML writes <outDir>/<runID>.html and returns its path.
func WriteHTML(runID, outDir string, run *model.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := RenderHTML(f, run); err != nil {
		return "", err
	}
	return path, nil
}

func RenderHTML(w io.Writer, run *model.Run) error {
	ew := &errWriter{w: w}
	rep := run.Report

	ew.printf("<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(run.ID))
	ew.print("<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .BLOCKING{color:#b00020;font-weight:bold}</style>")
	ew.print("</head><body>")

	ew.printf("<h1>diguard report – <span class='mono'>%s</span></h1>", html.EscapeString(run.ID))
	status := "PASSED"
	if rep.HasFailures() {
		status = "FAILED"
	}
	ew.printf("<p><b>%s</b> &nbsp; Classes: %d &nbsp; Violations: %d &nbsp; Blocking: %d &nbsp; Waived: %d</p>",
		status, len(run.Classes), len(rep.Violations), rep.Blocking(), rep.Waived)

	ew.printf("<p class='dim'>Source: %s &nbsp; Minimum severity: %s", html.EscapeString(run.Source), html.EscapeString(run.Context.MinSeverity))
	if n := len(run.Context.DisabledRules); n > 0 {
		ew.printf(" &nbsp; Disabled rules: %d", n)
	}
	ew.print("</p>")

	if counts := rep.ByRule(); len(counts) > 0 {
		ids := make([]string, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		ew.print("<h2>By Rule</h2><table><tr><th>Rule</th><th>Violations</th><th>Rationale</th></tr>")
		for _, id := range ids {
			ew.printf("<tr><td class='mono'>%s</td><td>%d</td><td>%s</td></tr>",
				html.EscapeString(id), counts[id], html.EscapeString(rationale(run.Context.Rules, id)))
		}
		ew.print("</table>")
	}

	if rep.Blocking() > 0 {
		ew.print("<h2>Blocking</h2><table><tr><th>Rule</th><th>Class</th><th>Subject</th><th>Message</th></tr>")
		for _, v := range rep.Violations {
			if v.Severity != model.SeverityBlocking {
				continue
			}
			ew.printf("<tr><td>%s</td><td class='mono'>%s</td><td class='mono'>%s</td><td>%s</td></tr>",
				html.EscapeString(v.RuleID), html.EscapeString(v.Class), html.EscapeString(v.Subject), html.EscapeString(v.Message))
		}
		ew.print("</table>")
	}

	if len(rep.Violations) > 0 {
		ew.print("<h2>All Violations</h2><table><tr><th>Severity</th><th>Rule</th><th>Class</th><th>Subject</th><th>Kind</th><th>Message</th></tr>")
		for _, v := range rep.Violations {
			ew.printf("<tr><td class='%s'>%s</td><td>%s</td><td class='mono'>%s</td><td class='mono'>%s</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(string(v.Severity)), html.EscapeString(string(v.Severity)),
				html.EscapeString(v.RuleID), html.EscapeString(v.Class), html.EscapeString(v.Subject),
				html.EscapeString(string(v.Kind)), html.EscapeString(v.Message))
		}
		ew.print("</table>")
	} else {
		ew.print("<h2>All Violations</h2><p class='dim'>No violations at or above the configured severity.</p>")
	}

	ew.print("</body></html>")
	return ew.err
}

func rationale(infos []model.RuleInfo, id string) string {
	for _, ri := range infos {
		if ri.ID == id {
			return ri.Rationale
		}
	}
	return ""
}

// errWriter keeps the first write error so rendering code can stay flat.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}

func (e *errWriter) print(s string) {
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}
