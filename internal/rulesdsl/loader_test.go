package rulesdsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/diguard/internal/model"
	"github.com/codewithboateng/diguard/internal/rules"
)

const pack = `rules:
  - id: REPO-SUFFIX
    summary: Repositories end with Repository
    priority: medium
    severity: info
    where: { marker: Repository }
    should:
      name_suffix: Repository
  - id: LEGACY-NO-AUTOWIRE
    where: { package_regex: '^com\.example\.legacy(\.|$)', name_regex: 'Service$' }
    should:
      forbid_field_injection: { injected_marker: Inject }
      forbid_marker: Deprecated
`

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(p, []byte(pack), 0o644))

	rs, err := Load(p)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "REPO-SUFFIX", rs[0].ID)
	assert.Equal(t, "MEDIUM", rs[0].Priority)
	assert.Equal(t, model.SeverityInfo, rs[0].Severity)
	assert.Len(t, rs[1].Should, 2)

	classes := []model.Class{
		{Name: "CatRepo", Package: "com.example.repo", Markers: []model.Marker{{Name: "Repository"}}},
		{
			Name: "OldService", Package: "com.example.legacy",
			Markers: []model.Marker{{Name: "Deprecated"}},
			Fields:  []model.Field{{Name: "x", Markers: []model.Marker{{Name: "Inject"}}}},
		},
		{Name: "NewService", Package: "com.example.legacyx"},
	}
	report, err := rules.Run(rs, classes)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"REPO-SUFFIX": 1, "LEGACY-NO-AUTOWIRE": 2}, report.ByRule())
	assert.Equal(t, model.SeverityInfo, report.Violations[0].Severity)
	assert.Equal(t, model.SeverityBlocking, report.Violations[1].Severity)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no id", "rules: [{should: {name_suffix: X}}]", "missing required field id"},
		{"no conditions", "rules: [{id: A}]", "no should conditions"},
		{"bad regex", "rules: [{id: A, where: {name_regex: '('}, should: {name_suffix: X}}]", "name_regex"},
		{"bad severity", "rules: [{id: A, severity: HIGH, should: {name_suffix: X}}]", "unknown severity"},
		{"duplicate", "rules: [{id: A, should: {name_suffix: X}}, {id: a, should: {name_suffix: Y}}]", "duplicate rule id"},
		{"injection marker", "rules: [{id: A, should: {forbid_field_injection: {}}}]", "injected_marker"},
		{"not yaml", "rules: [", "parse yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read rules pack")
}

func TestLoad_ShippedPack(t *testing.T) {
	rs, err := Load(filepath.Join("..", "..", "configs", "rules-pack.yaml"))
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, "REPO-SUFFIX", rs[0].ID)
	assert.Equal(t, model.SeverityInfo, rs[0].Severity)
	assert.Equal(t, "HIGH", rs[1].Priority)
}
