package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
)

const sampleYAML = `
tests:
  - name: Hemoglobin
    aliases: [Hgb, Hb]
    unit: g/dL
    category: Blood Counts
    low: 12.0
    high: 16.0
    optimal_low: 12.5
    ranges:
      - age: Adult
        gender: Male
        low: 13.2
        high: 16.6
  - name: Glucose
    unit: mg/dL
    low: 70
    high: 100
`

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(sampleYAML), nil)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	hgb, ok := table.Resolve("hgb")
	require.True(t, ok)
	assert.Equal(t, "Hemoglobin", hgb.Name)
	assert.Equal(t, domain.CategoryBloodCounts, hgb.Category)
	require.NotNil(t, hgb.OptimalLow)
	assert.Equal(t, 12.5, *hgb.OptimalLow)
	require.Len(t, hgb.Bands, 1)
	assert.Equal(t, domain.GenderMale, hgb.Bands[0].Gender)

	glu, ok := table.Resolve("Glucose")
	require.True(t, ok)
	// Category defaults to Other, gender on omitted bands to Unisex.
	assert.Equal(t, domain.CategoryOther, glu.Category)
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errText string
	}{
		{
			name:    "not yaml",
			yaml:    "tests: [}",
			errText: "unmarshal yaml",
		},
		{
			name:    "no tests",
			yaml:    "tests: []",
			errText: "declares no tests",
		},
		{
			name: "bad category",
			yaml: "tests:\n  - name: Glucose\n    category: Sugar\n    low: 70\n    high: 100\n",
			errText: "unknown category",
		},
		{
			name: "bad band gender",
			yaml: "tests:\n  - name: Glucose\n    low: 70\n    high: 100\n    ranges:\n      - age: Adult\n        gender: X\n        low: 1\n        high: 2\n",
			errText: "unknown gender",
		},
		{
			name: "inverted bounds surface from table validation",
			yaml: "tests:\n  - name: Glucose\n    low: 100\n    high: 70\n",
			errText: "exceeds high bound",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tc.yaml), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	table, err := LoadTable(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read reference file")
}
