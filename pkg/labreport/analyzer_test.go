package labreport_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadawaislaal/go_lab_analysis/pkg/labreport"
	"github.com/muhammadawaislaal/go_lab_analysis/pkg/reference"
)

// cbcTable builds a two-test table so the behavior of tests missing from
// the reference is observable.
func cbcTable(t *testing.T) *reference.Table {
	t.Helper()
	table, err := reference.NewTable([]reference.Entry{
		{Name: "WBC", Unit: "10^3/uL", Category: reference.CategoryBloodCounts, Low: 4.0, High: 11.0},
		{Name: "Hemoglobin", Aliases: []string{"Hgb", "Hb"}, Unit: "g/dL",
			Category: reference.CategoryBloodCounts, Low: 12.0, High: 16.0},
	})
	require.NoError(t, err)
	return table
}

func TestAnalyzeGradesAgainstTheTable(t *testing.T) {
	a, err := labreport.New(labreport.WithTable(cbcTable(t)))
	require.NoError(t, err)

	report := a.Analyze(context.Background(), "WBC 12.5 10^3/uL, Hemoglobin 11.0 g/dL", nil)
	require.Len(t, report.Results, 2)

	wbc := report.Results[0]
	assert.Equal(t, "WBC", wbc.Record.TestName)
	assert.Equal(t, labreport.StatusHigh, wbc.Status)
	assert.Equal(t, 1.5, wbc.Deviation)
	require.NotNil(t, wbc.Range)

	hgb := report.Results[1]
	assert.Equal(t, "Hemoglobin", hgb.Record.TestName)
	assert.Equal(t, labreport.StatusLow, hgb.Status)
	assert.Equal(t, -1.0, hgb.Deviation)

	assert.Equal(t, 2, report.Summary.Abnormal)
	assert.Equal(t, labreport.UrgencyMedium, report.Summary.Urgency)
}

func TestAnalyzeUnknownTest(t *testing.T) {
	a, err := labreport.New(labreport.WithTable(cbcTable(t)))
	require.NoError(t, err)

	report := a.Analyze(context.Background(), "Platelets: 250", nil)
	require.Len(t, report.Results, 1)

	result := report.Results[0]
	assert.Equal(t, "Platelets", result.Record.TestName)
	assert.Equal(t, 250.0, result.Record.Value)
	assert.Equal(t, labreport.StatusUnknown, result.Status)
	assert.Nil(t, result.Range)

	assert.Equal(t, 1, report.Summary.Unknown)
	assert.Equal(t, labreport.UrgencyLow, report.Summary.Urgency)
}

func TestAnalyzeRecognitionWiderThanTable(t *testing.T) {
	a, err := labreport.New(labreport.WithTable(cbcTable(t)))
	require.NoError(t, err)

	report := a.Analyze(context.Background(), "WBC 8.2, Glucose 95 mg/dL", nil)
	require.Len(t, report.Results, 2)

	assert.Equal(t, "WBC", report.Results[0].Record.TestName)
	assert.Equal(t, labreport.StatusNormal, report.Results[0].Status)

	// Glucose is outside the two-test table but still recognized; it
	// surfaces ungraded instead of vanishing.
	glucose := report.Results[1]
	assert.Equal(t, "Glucose", glucose.Record.TestName)
	assert.Equal(t, 95.0, glucose.Record.Value)
	assert.Equal(t, labreport.StatusUnknown, glucose.Status)
	assert.Nil(t, glucose.Range)
	assert.Equal(t, 1, report.Summary.Unknown)
}

func TestAnalyzeWithExtraAliases(t *testing.T) {
	a, err := labreport.New(labreport.WithAliases(map[string][]string{
		"Glucose":   {"Blood Sugar"},
		"Uric Acid": {"UA"},
	}))
	require.NoError(t, err)

	report := a.Analyze(context.Background(), "Blood Sugar 104 mg/dL, UA 5.1", nil)
	require.Len(t, report.Results, 2)

	assert.Equal(t, "Glucose", report.Results[0].Record.TestName)
	assert.Equal(t, labreport.StatusHigh, report.Results[0].Status)

	ua := report.Results[1]
	assert.Equal(t, "Uric Acid", ua.Record.TestName)
	assert.Equal(t, 5.1, ua.Record.Value)
	assert.Equal(t, labreport.StatusUnknown, ua.Status)
	assert.Nil(t, ua.Range)
}

func TestAnalyzeFullPanelWithDefaultCatalog(t *testing.T) {
	a, err := labreport.New()
	require.NoError(t, err)

	text := "CBC: WBC 8.2, RBC 4.5, Hgb 14.2, Hct 42%, Platelets 250\n" +
		"Chemistry: Glucose 110, Creatinine 1.1, BUN 18, ALT 25, AST 22\n" +
		"Lipid Panel: Total Cholesterol 185, LDL 110, HDL 45, Triglycerides 150\n"
	report := a.Analyze(context.Background(), text, nil)
	require.Len(t, report.Results, 14)

	byName := make(map[string]labreport.ClassifiedResult, len(report.Results))
	for _, r := range report.Results {
		byName[r.Record.TestName] = r
	}

	assert.Equal(t, labreport.StatusHigh, byName["Glucose"].Status)
	assert.Equal(t, 10.0, byName["Glucose"].Deviation)
	assert.Equal(t, labreport.StatusHigh, byName["LDL Cholesterol"].Status)
	// 150 sits exactly on the triglyceride high bound: inclusive, NORMAL.
	assert.Equal(t, labreport.StatusNormal, byName["Triglycerides"].Status)
	assert.Equal(t, labreport.StatusNormal, byName["WBC"].Status)
	assert.Equal(t, labreport.StatusNormal, byName["Hematocrit"].Status)

	assert.Equal(t, 14, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Abnormal)
	assert.Equal(t, labreport.UrgencyMedium, report.Summary.Urgency)

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Nil(t, report.Patient)
}

func TestAnalyzeAppliesPatientDemographics(t *testing.T) {
	a, err := labreport.New()
	require.NoError(t, err)

	age := 40
	patient := &labreport.Patient{ID: "P-7", Age: &age, Gender: labreport.GenderMale}
	report := a.Analyze(context.Background(), "Hemoglobin 13.0 g/dL", patient)
	require.Len(t, report.Results, 1)

	result := report.Results[0]
	assert.Equal(t, labreport.StatusLow, result.Status)
	require.NotNil(t, result.Range)
	assert.Equal(t, labreport.GenderMale, result.Range.Gender)
	assert.Same(t, patient, report.Patient)
}

func TestAnalyzeReaderMatchesAnalyze(t *testing.T) {
	a, err := labreport.New()
	require.NoError(t, err)

	text := "WBC 8.2\nHgb 14.2\nGlucose 110\n"
	fromText := a.Analyze(context.Background(), text, nil)
	fromStream, err := a.AnalyzeReader(context.Background(), strings.NewReader(text), nil)
	require.NoError(t, err)

	require.Len(t, fromStream.Results, len(fromText.Results))
	for i := range fromText.Results {
		assert.Equal(t, fromText.Results[i].Record, fromStream.Results[i].Record)
		assert.Equal(t, fromText.Results[i].Status, fromStream.Results[i].Status)
	}
	assert.Equal(t, fromText.Summary, fromStream.Summary)
}

func TestAnalyzerOptions(t *testing.T) {
	t.Run("token window bounds the value search", func(t *testing.T) {
		a, err := labreport.New(labreport.WithTokenWindow(1))
		require.NoError(t, err)
		records := a.Extract(context.Background(), "WBC count was 8.2")
		assert.Empty(t, records)
	})

	t.Run("precision rounds reported deviations", func(t *testing.T) {
		a, err := labreport.New(labreport.WithPrecision(0))
		require.NoError(t, err)
		report := a.Analyze(context.Background(), "Glucose 110.4", nil)
		require.Len(t, report.Results, 1)
		assert.Equal(t, 10.0, report.Results[0].Deviation)
	})

	t.Run("normalizer strategies agree", func(t *testing.T) {
		text := "Hgb 14.2 g/dL, M.C.V 88 fL"
		def, err := labreport.New()
		require.NoError(t, err)
		fast, err := labreport.New(labreport.WithFastNormalizer())
		require.NoError(t, err)
		opt, err := labreport.New(labreport.WithOptimizedNormalizer())
		require.NoError(t, err)

		want := def.Extract(context.Background(), text)
		assert.Equal(t, want, fast.Extract(context.Background(), text))
		assert.Equal(t, want, opt.Extract(context.Background(), text))
	})

	t.Run("invalid configuration is rejected", func(t *testing.T) {
		_, err := labreport.New(labreport.WithTokenWindow(-1))
		assert.Error(t, err)
		_, err = labreport.New(labreport.WithPrecision(-2))
		assert.Error(t, err)
		_, err = labreport.New(labreport.WithAliases(map[string][]string{"Glucose": {"Hgb"}}))
		assert.Error(t, err)
	})
}

func TestRenderMarkdown(t *testing.T) {
	a, err := labreport.New()
	require.NoError(t, err)

	report := a.Analyze(context.Background(), "Hemoglobin 11.0 g/dL", nil)
	md := a.RenderMarkdown(report)

	assert.Contains(t, md, "# Lab Report Analysis")
	assert.Contains(t, md, "| Hemoglobin | 11 | g/dL | 12-16 | LOW |")
}
