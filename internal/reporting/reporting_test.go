package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/diguard/internal/model"
)

func sampleRun(id string, vs ...model.Violation) *model.Run {
	return &model.Run{
		ID:      id,
		Source:  "src",
		Classes: []model.Class{{Name: "BookService", Package: "p"}},
		Context: model.Context{
			MinSeverity: "INFO",
			Rules:       []model.RuleInfo{{ID: "DI-CONSTRUCTOR-INJECTION", Rationale: "keep <collaborators> final"}},
		},
		Report: model.Report{Violations: vs},
	}
}

var injected = model.Violation{
	ID: "DI-CONSTRUCTOR-INJECTION-1", RuleID: "DI-CONSTRUCTOR-INJECTION", Class: "p.BookService",
	Subject: "autowiredService", Kind: model.KindField, Severity: model.SeverityBlocking,
	Message: "field must not be injection-marked",
}

var suffix = model.Violation{
	ID: "DI-COMPONENT-SUFFIX-1", RuleID: "DI-COMPONENT-SUFFIX", Class: "p.Cat",
	Subject: "Cat", Kind: model.KindClass, Severity: model.SeverityBlocking,
	Message: `class name must end with "Service"`,
}

func TestWriteJSONAndHTML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	run := sampleRun("run-1", injected)

	jp, err := WriteJSON(run.ID, dir, run)
	require.NoError(t, err)
	b, err := os.ReadFile(jp)
	require.NoError(t, err)
	var back model.Run
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, run.Report, back.Report)

	hp, err := WriteHTML(run.ID, dir, run)
	require.NoError(t, err)
	h, err := os.ReadFile(hp)
	require.NoError(t, err)
	assert.Contains(t, string(h), "<b>FAILED</b>")
	assert.Contains(t, string(h), "autowiredService")
	assert.Contains(t, string(h), "keep &lt;collaborators&gt; final")
}

func TestRenderHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, sampleRun("run-2")))
	assert.Contains(t, buf.String(), "<b>PASSED</b>")
	assert.Contains(t, buf.String(), "No violations")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleRun("run-3", injected)))
	out := buf.String()
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "field must not be injection-marked")
	assert.Contains(t, out, "FAILED: run=run-3 classes=1 violations=1 blocking=1 waived=0")
}

func TestDiff(t *testing.T) {
	changedHead := injected
	changedHead.Severity = model.SeverityInfo

	base := sampleRun("base", injected)
	head := sampleRun("head", changedHead, suffix)

	d := Diff(base, head)
	assert.Equal(t, DiffSummary{NewCount: 1, RemovedCount: 0, ChangedCount: 1}, d.Summary)
	assert.Equal(t, "DI-COMPONENT-SUFFIX", d.New[0].RuleID)
	assert.Equal(t, []string{"severity"}, d.Changed[0].Changed)

	rev := Diff(head, base)
	assert.Equal(t, 1, rev.Summary.RemovedCount)

	path, _, err := WriteDiffJSON(t.TempDir(), base, head)
	require.NoError(t, err)
	assert.Equal(t, "diff_base__head.json", filepath.Base(path))
}

func TestDiff_RepeatedKeys(t *testing.T) {
	base := sampleRun("base", injected)
	head := sampleRun("head", injected, injected)
	d := Diff(base, head)
	assert.Equal(t, 1, d.Summary.NewCount)
}
