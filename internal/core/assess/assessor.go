// Package assess rolls classified results up into a report summary: counts,
// an urgency grade and per-result flags.
package assess

import (
	"fmt"
	"math"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

// Score weights and urgency cutoffs. Every abnormal result adds weight;
// results far outside their interval add more.
const (
	abnormalWeight = 2
	markedWeight   = 4

	highUrgencyScore   = 8
	mediumUrgencyScore = 4
)

// Assessor summarizes classified results.
type Assessor struct {
	logger ports.Logger
}

// NewAssessor creates an assessor.
func NewAssessor(logger ports.Logger) *Assessor {
	return &Assessor{logger: logger}
}

// Assess walks the results in order and produces the summary. A result
// counts as marked when its deviation reaches half the reference interval's
// width; marked results weigh double and escalate their flag to danger.
func (a *Assessor) Assess(results []domain.ClassifiedResult) domain.Summary {
	s := domain.Summary{
		Total:   len(results),
		Urgency: domain.UrgencyLow,
	}

	for _, r := range results {
		switch r.Status {
		case domain.StatusLow, domain.StatusHigh:
			s.Abnormal++
			marked := isMarked(r)
			if marked {
				s.Score += abnormalWeight + markedWeight
			} else {
				s.Score += abnormalWeight
			}
			s.Flags = append(s.Flags, abnormalFlag(r, marked))
		case domain.StatusUnknown:
			s.Unknown++
			s.Flags = append(s.Flags, domain.Flag{
				TestName: r.Record.TestName,
				Severity: domain.SeverityInfo,
				Message:  fmt.Sprintf("no reference range for %q; value %s not graded", r.Record.TestName, formatValue(r)),
			})
		default:
			s.Normal++
			if r.WithinOptimal != nil && !*r.WithinOptimal {
				s.Flags = append(s.Flags, domain.Flag{
					TestName: r.Record.TestName,
					Severity: domain.SeverityInfo,
					Message:  fmt.Sprintf("%s %s is within reference but outside the optimal interval", r.Record.TestName, formatValue(r)),
				})
			}
		}

		if r.UnitMismatch && r.Range != nil {
			s.Flags = append(s.Flags, domain.Flag{
				TestName: r.Record.TestName,
				Severity: domain.SeverityInfo,
				Message: fmt.Sprintf("%s reported in %q but the reference interval is in %q",
					r.Record.TestName, r.Record.Unit, r.Range.Unit),
			})
		}
	}

	switch {
	case s.Score >= highUrgencyScore:
		s.Urgency = domain.UrgencyHigh
	case s.Score >= mediumUrgencyScore:
		s.Urgency = domain.UrgencyMedium
	}

	a.logger.Debug("Assessment complete",
		"total", s.Total,
		"abnormal", s.Abnormal,
		"unknown", s.Unknown,
		"score", s.Score,
		"urgency", s.Urgency,
	)
	return s
}

// isMarked reports whether the deviation reaches half the interval width.
// Point intervals (low == high) mark on any deviation.
func isMarked(r domain.ClassifiedResult) bool {
	if r.Range == nil {
		return false
	}
	width := r.Range.High - r.Range.Low
	if width <= 0 {
		return r.Deviation != 0
	}
	return math.Abs(r.Deviation) >= width/2
}

func abnormalFlag(r domain.ClassifiedResult, marked bool) domain.Flag {
	direction := "above"
	if r.Status == domain.StatusLow {
		direction = "below"
	}
	qualifier := ""
	if marked {
		qualifier = "markedly "
	}

	severity := domain.SeverityWarning
	if marked {
		severity = domain.SeverityDanger
	}

	return domain.Flag{
		TestName: r.Record.TestName,
		Severity: severity,
		Message: fmt.Sprintf("%s %s is %s%s the reference interval %s",
			r.Record.TestName, formatValue(r), qualifier, direction, formatInterval(r.Range)),
	}
}

func formatValue(r domain.ClassifiedResult) string {
	if r.Record.Unit != "" {
		return fmt.Sprintf("%g %s", r.Record.Value, r.Record.Unit)
	}
	return fmt.Sprintf("%g", r.Record.Value)
}

func formatInterval(rr *domain.ReferenceRange) string {
	if rr == nil {
		return "?"
	}
	if rr.Unit != "" {
		return fmt.Sprintf("%g-%g %s", rr.Low, rr.High, rr.Unit)
	}
	return fmt.Sprintf("%g-%g", rr.Low, rr.High)
}
