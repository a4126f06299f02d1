package render

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
)

func TestMarkdownReport(t *testing.T) {
	age := 34
	report := domain.Report{
		ID:          uuid.MustParse("a2b4c6d8-0000-4000-8000-000000000001"),
		GeneratedAt: time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC),
		Patient: &domain.Patient{
			ID:     "P-1001",
			Name:   "A. Sample",
			Age:    &age,
			Gender: domain.GenderFemale,
		},
		Results: []domain.ClassifiedResult{
			{
				Record: domain.LabRecord{TestName: "Hemoglobin", Value: 11, Unit: "g/dL"},
				Range:  &domain.ReferenceRange{TestName: "Hemoglobin", Unit: "g/dL", Low: 11.6, High: 15},
				Status: domain.StatusLow, Deviation: -0.6,
			},
			{
				Record: domain.LabRecord{TestName: "Platelets", Value: 250},
				Status: domain.StatusUnknown,
			},
		},
		Summary: domain.Summary{
			Total: 2, Abnormal: 1, Unknown: 1, Score: 2,
			Urgency: domain.UrgencyLow,
			Flags: []domain.Flag{
				{TestName: "Hemoglobin", Severity: domain.SeverityWarning,
					Message: "Hemoglobin 11 g/dL is below the reference interval 11.6-15 g/dL"},
			},
		},
	}

	md := Markdown(report)

	for _, want := range []string{
		"# Lab Report Analysis",
		"a2b4c6d8-0000-4000-8000-000000000001",
		"2025-03-14 09:26",
		"**Patient:** A. Sample",
		"**Age:** 34 (Adult)",
		"| Hemoglobin | 11 | g/dL | 11.6-15 | LOW |",
		"| Platelets | 250 |  | n/a | UNKNOWN |",
		"**Urgency:** LOW",
		"below the reference interval",
		"Not medical advice",
	} {
		assert.Contains(t, md, want)
	}
}

func TestMarkdownWithoutPatientOrResults(t *testing.T) {
	md := Markdown(domain.Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now(),
		Summary:     domain.Summary{Urgency: domain.UrgencyLow},
	})

	assert.Contains(t, md, "No recognized lab values.")
	assert.NotContains(t, md, "**Patient:**")
	assert.NotContains(t, md, "### Flags")
	// Tables render only when there is something to tabulate.
	assert.Equal(t, 1, strings.Count(md, "## Summary"))
}
