package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/adapters/logger"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/reference"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	ex, err := NewExtractor(DefaultConfig(), reference.DefaultTable(), logger.NewNopLogger())
	require.NoError(t, err)
	return ex
}

func names(records []domain.LabRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.TestName
	}
	return out
}

func TestExtractPairsAliasesWithValues(t *testing.T) {
	ex := newTestExtractor(t)

	text := "WBC 12.5 10^3/uL, Hemoglobin 11.0 g/dL"
	records := ex.Extract(context.Background(), text)
	require.Len(t, records, 2)

	assert.Equal(t, "WBC", records[0].TestName)
	assert.Equal(t, 12.5, records[0].Value)
	assert.Equal(t, "10^3/uL", records[0].Unit)
	assert.Equal(t, 0, records[0].Offset)

	assert.Equal(t, "Hemoglobin", records[1].TestName)
	assert.Equal(t, 11.0, records[1].Value)
	assert.Equal(t, "g/dL", records[1].Unit)
	assert.Equal(t, strings.Index(text, "Hemoglobin"), records[1].Offset)
}

func TestExtractFullReportInDocumentOrder(t *testing.T) {
	ex := newTestExtractor(t)

	text := "CBC: WBC 8.2, RBC 4.5, Hgb 14.2, Hct 42%, Platelets 250\n" +
		"Chemistry: Glucose 110, Creatinine 1.1, BUN 18, ALT 25, AST 22"
	records := ex.Extract(context.Background(), text)

	assert.Equal(t, []string{
		"WBC", "RBC", "Hemoglobin", "Hematocrit", "Platelets",
		"Glucose", "Creatinine", "BUN", "ALT", "AST",
	}, names(records))

	// Aliases resolve to canonical names but keep the matched spelling.
	assert.Equal(t, "Hgb", records[2].Matched)
	assert.Equal(t, 14.2, records[2].Value)

	// Fused percent values split into value and unit.
	assert.Equal(t, 42.0, records[3].Value)
	assert.Equal(t, "%", records[3].Unit)
}

func TestExtractValueForms(t *testing.T) {
	ex := newTestExtractor(t)

	tests := []struct {
		name  string
		text  string
		test  string
		value float64
		unit  string
	}{
		{"colon separator", "Platelets: 250", "Platelets", 250, ""},
		{"equals separator", "Hgb = 13.5", "Hemoglobin", 13.5, ""},
		{"decimal comma", "Hemoglobin 12,5", "Hemoglobin", 12.5, ""},
		{"thousands grouping", "Platelets 250,000", "Platelets", 250000, ""},
		{"scientific notation", "WBC 1.13e1", "WBC", 11.3, ""},
		{"fused unit", "Hct 42%", "Hematocrit", 42, "%"},
		{"trailing period", "Glucose was 110.", "Glucose", 110, ""},
		{"parenthesized value", "Sodium (138)", "Sodium", 138, ""},
		{"dotted alias", "S.G.P.T 30", "ALT", 30, ""},
		{"case folds", "hemoglobin 13.1", "Hemoglobin", 13.1, ""},
		{"letter unit matching reference", "MCV 88 fL", "MCV", 88, "fL"},
		{"interval note is not a unit", "WBC 8.2 (4.0-11.0)", "WBC", 8.2, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := ex.Extract(context.Background(), tc.text)
			require.Len(t, records, 1, "text %q", tc.text)
			assert.Equal(t, tc.test, records[0].TestName)
			assert.Equal(t, tc.value, records[0].Value)
			assert.Equal(t, tc.unit, records[0].Unit)
		})
	}
}

func TestExtractSkipsMalformedMentions(t *testing.T) {
	ex := newTestExtractor(t)

	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"whitespace only", "   \n\t  "},
		{"no mentions", "Patient fasting overnight, sample drawn at 8am."},
		{"no value in window", "Hemoglobin N/A sample hemolyzed please redraw today"},
		{"alias inside larger word", "CWBC 5.0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := ex.Extract(context.Background(), tc.text)
			assert.Empty(t, records, "text %q", tc.text)
		})
	}
}

func TestExtractFirstParseableMentionWins(t *testing.T) {
	ex := newTestExtractor(t)

	t.Run("repeat mentions", func(t *testing.T) {
		records := ex.Extract(context.Background(), "Glucose 110 mg/dL. Repeat Glucose 200 mg/dL.")
		require.Len(t, records, 1)
		assert.Equal(t, 110.0, records[0].Value)
	})

	t.Run("value-less first mention defers to the second", func(t *testing.T) {
		records := ex.Extract(context.Background(), "WBC pending from morning draw run; WBC 8.2 on repeat")
		require.Len(t, records, 1)
		assert.Equal(t, 8.2, records[0].Value)
	})
}

func TestExtractStopsAtNextMention(t *testing.T) {
	ex := newTestExtractor(t)

	// Hemoglobin has no value of its own; it must not steal 8.2 from WBC.
	records := ex.Extract(context.Background(), "Hemoglobin: WBC 8.2")
	require.Len(t, records, 1)
	assert.Equal(t, "WBC", records[0].TestName)
	assert.Equal(t, 8.2, records[0].Value)
}

func TestExtractPrefersLongerAliasOnOverlap(t *testing.T) {
	ex := newTestExtractor(t)

	records := ex.Extract(context.Background(), "Total Cholesterol 185, LDL 110, HDL 45")
	assert.Equal(t, []string{"Total Cholesterol", "LDL Cholesterol", "HDL Cholesterol"}, names(records))

	records = ex.Extract(context.Background(), "LDL Cholesterol 110")
	require.Len(t, records, 1)
	assert.Equal(t, "LDL Cholesterol", records[0].TestName)
	assert.Equal(t, "LDL Cholesterol", records[0].Matched)
}

func TestExtractDoesNotTakeProseForAUnit(t *testing.T) {
	ex := newTestExtractor(t)

	records := ex.Extract(context.Background(), "Glucose 110 while fasting")
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Unit)
}

func TestExtractTokenWindow(t *testing.T) {
	table := reference.DefaultTable()

	t.Run("value past the window is not found", func(t *testing.T) {
		ex, err := NewExtractor(Config{TokenWindow: 2}, table, logger.NewNopLogger())
		require.NoError(t, err)
		records := ex.Extract(context.Background(), "WBC result came back 8.2")
		assert.Empty(t, records)
	})

	t.Run("punctuation does not consume the window", func(t *testing.T) {
		ex, err := NewExtractor(Config{TokenWindow: 1}, table, logger.NewNopLogger())
		require.NoError(t, err)
		records := ex.Extract(context.Background(), "WBC : = 8.2")
		require.Len(t, records, 1)
		assert.Equal(t, 8.2, records[0].Value)
	})
}

func TestExtractCancelledContext(t *testing.T) {
	ex := newTestExtractor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := ex.Extract(ctx, "WBC 8.2")
	assert.Empty(t, records)
}

func TestNewExtractorValidation(t *testing.T) {
	table := reference.DefaultTable()

	_, err := NewExtractor(Config{TokenWindow: 0}, table, logger.NewNopLogger())
	assert.Error(t, err)

	_, err = NewExtractor(DefaultConfig(), nil, logger.NewNopLogger())
	assert.Error(t, err)
}
