package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/diguard/internal/metrics"
	"github.com/codewithboateng/diguard/internal/model"
	"github.com/codewithboateng/diguard/internal/rules"
	"github.com/codewithboateng/diguard/internal/shared"
)

const bookServiceYAML = `classes:
  - name: BookService
    package: com.example.archunit.service
    markers: [{name: Service}]
    fields:
      - {name: catService, type: CatService, modifiers: [private, final]}
      - {name: dogService, type: DogService, modifiers: [private, final]}
      - {name: autowiredService, type: AutowiredService, modifiers: [private], markers: [{name: Autowired}]}
    constructors:
      - parameters: [CatService, DogService]
  - name: Helper
    package: com.example.archunit.util
`

type memStore struct {
	runs    []model.Run
	waivers []model.Waiver
	saveErr error
}

func (s *memStore) SaveRun(run *model.Run) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *memStore) ListWaivers(bool) ([]model.Waiver, error) { return s.waivers, nil }

func testConfig(t *testing.T) shared.Config {
	t.Helper()
	cfg := shared.DefaultConfig()
	cfg.Conventions = rules.Conventions{
		ComponentMarker:     "Service",
		NameSuffix:          "Service",
		Package:             "com.example.archunit.service",
		InjectedFieldMarker: "Autowired",
	}
	cfg.Reporting.OutDir = filepath.Join(t.TempDir(), "reports")
	return cfg
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), []byte(content), 0o644))
	return dir
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
}

func TestAnalyze_BookService(t *testing.T) {
	store := &memStore{}
	m := metrics.New()
	p, err := New(testConfig(t), store, m)
	require.NoError(t, err)
	p.Now = fixedClock()
	p.NewID = func() string { return "run-test" }

	res, err := p.Analyze(context.Background(), writeSource(t, bookServiceYAML))
	require.NoError(t, err)

	assert.Equal(t, "run-test", res.Run.ID)
	require.Len(t, res.Run.Report.Violations, 1)
	assert.Equal(t, "autowiredService", res.Run.Report.Violations[0].Subject)
	assert.True(t, res.Run.Report.HasFailures())
	assert.Len(t, res.Run.Context.Rules, 3)

	require.Len(t, store.runs, 1)
	assert.FileExists(t, res.JSONPath)
	assert.FileExists(t, res.HTMLPath)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.StatusFailed)))
}

func TestAnalyze_WaiverAndSeverity(t *testing.T) {
	store := &memStore{waivers: []model.Waiver{{
		RuleID: rules.IDConstructorInjection, Subject: "autowiredService",
		ExpiresAt: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	p, err := New(testConfig(t), store, nil)
	require.NoError(t, err)
	p.Now = fixedClock()
	p.OutDir = ""

	res, err := p.Analyze(context.Background(), writeSource(t, bookServiceYAML))
	require.NoError(t, err)
	assert.Empty(t, res.Run.Report.Violations)
	assert.Equal(t, 1, res.Run.Report.Waived)
	assert.False(t, res.Run.Report.HasFailures())
	assert.Empty(t, res.JSONPath)
}

func TestAnalyze_DisabledRule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rules.Disabled = []string{rules.IDConstructorInjection}
	p, err := New(cfg, nil, nil)
	require.NoError(t, err)

	res, err := p.Analyze(context.Background(), writeSource(t, bookServiceYAML))
	require.NoError(t, err)
	assert.Empty(t, res.Run.Report.Violations)
	assert.Equal(t, []string{rules.IDConstructorInjection}, res.Run.Context.DisabledRules)
}

func TestAnalyze_ModelError(t *testing.T) {
	m := metrics.New()
	p, err := New(testConfig(t), nil, m)
	require.NoError(t, err)

	_, err = p.Analyze(context.Background(), writeSource(t, "classes:\n  - name: X\n"))
	var me *model.ModelError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.StatusError)))
}

func TestAnalyze_SaveError(t *testing.T) {
	p, err := New(testConfig(t), &memStore{saveErr: errors.New("readonly")}, nil)
	require.NoError(t, err)

	_, err = p.Analyze(context.Background(), writeSource(t, bookServiceYAML))
	assert.ErrorContains(t, err, "save run: readonly")
}

func TestNew_RequiresConventions(t *testing.T) {
	_, err := New(shared.DefaultConfig(), nil, nil)
	assert.ErrorContains(t, err, "conventions.")
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	assert.Regexp(t, `^run-[0-9a-f-]{36}$`, id)
	assert.NotEqual(t, id, NewRunID())
}
