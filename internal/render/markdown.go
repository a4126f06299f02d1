// Package render produces human-readable views of analysis reports.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
)

// Markdown renders a report as a markdown document: patient header, one
// results table row per classified result in analysis order, then the
// summary with its flags.
func Markdown(report domain.Report) string {
	var b strings.Builder

	b.WriteString("# Lab Report Analysis\n\n")
	fmt.Fprintf(&b, "- **Report ID:** %s\n", report.ID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	writePatient(&b, report.Patient)
	b.WriteString("\n")

	writeResults(&b, report.Results)
	writeSummary(&b, report.Summary)

	b.WriteString("---\n")
	b.WriteString("*Automated range analysis. Not medical advice.*\n")
	return b.String()
}

func writePatient(b *strings.Builder, p *domain.Patient) {
	if p == nil {
		return
	}
	if p.Name != "" {
		fmt.Fprintf(b, "- **Patient:** %s\n", p.Name)
	}
	if p.ID != "" {
		fmt.Fprintf(b, "- **Patient ID:** %s\n", p.ID)
	}
	if p.Age != nil {
		fmt.Fprintf(b, "- **Age:** %d (%s)\n", *p.Age, p.AgeRange())
	}
	if p.Gender != "" && p.Gender != domain.GenderUnisex {
		fmt.Fprintf(b, "- **Gender:** %s\n", p.Gender)
	}
}

func writeResults(b *strings.Builder, results []domain.ClassifiedResult) {
	b.WriteString("## Results\n\n")
	if len(results) == 0 {
		b.WriteString("No recognized lab values.\n\n")
		return
	}

	b.WriteString("| Test | Value | Unit | Reference | Status |\n")
	b.WriteString("|------|-------|------|-----------|--------|\n")
	for _, r := range results {
		unit := r.Record.Unit
		ref := "n/a"
		if r.Range != nil {
			ref = fmt.Sprintf("%s-%s", num(r.Range.Low), num(r.Range.High))
			if unit == "" {
				unit = r.Range.Unit
			}
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			r.Record.TestName, num(r.Record.Value), unit, ref, r.Status)
	}
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, s domain.Summary) {
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "- **Tests analyzed:** %d (%d normal, %d abnormal, %d ungraded)\n",
		s.Total, s.Normal, s.Abnormal, s.Unknown)
	fmt.Fprintf(b, "- **Urgency:** %s\n", s.Urgency)

	if len(s.Flags) > 0 {
		b.WriteString("\n### Flags\n\n")
		for _, f := range s.Flags {
			fmt.Fprintf(b, "- **%s:** %s\n", f.Severity, f.Message)
		}
	}
	b.WriteString("\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
