package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status grades a measured value against its reference range.
type Status string

// Status values for a classified lab value.
const (
	StatusLow     Status = "LOW"
	StatusNormal  Status = "NORMAL"
	StatusHigh    Status = "HIGH"
	StatusUnknown Status = "UNKNOWN"
)

// Gender represents biological sex for reference-range selection.
type Gender string

// Gender values represent supported biological-sex categories.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderUnisex Gender = "Unisex" // For ranges that don't vary by gender
)

// AgeRange represents age-based categorization for reference ranges.
type AgeRange string

// AgeRange values represent supported age groups for lab ranges.
const (
	AgePediatric AgeRange = "Pediatric" // 0-17
	AgeAdult     AgeRange = "Adult"     // 18-49
	AgeMiddleAge AgeRange = "MiddleAge" // 50-64
	AgeSenior    AgeRange = "Senior"    // 65+
)

// AgeRangeOf returns the age range category for a given age in years.
func AgeRangeOf(age int) AgeRange {
	switch {
	case age <= 17:
		return AgePediatric
	case age <= 49:
		return AgeAdult
	case age <= 64:
		return AgeMiddleAge
	default:
		return AgeSenior
	}
}

// Category buckets lab tests by panel.
type Category string

// Category values represent supported lab test buckets.
const (
	CategoryBloodCounts   Category = "Blood Counts"
	CategoryMetabolic     Category = "Metabolic"
	CategoryLipidPanel    Category = "Lipid Panel"
	CategoryLiverFunction Category = "Liver Function"
	CategoryOther         Category = "Other"
)

// Patient carries optional demographics for an analysis run. A nil Patient
// (or nil Age) falls back to the default bounds of each test.
type Patient struct {
	ID     string
	Name   string
	Age    *int
	Gender Gender
}

// AgeRange returns the patient's age category, defaulting to Adult when the
// age is unknown.
func (p *Patient) AgeRange() AgeRange {
	if p == nil || p.Age == nil {
		return AgeAdult
	}
	return AgeRangeOf(*p.Age)
}

// LabRecord is one measurement extracted from report text. Immutable once
// created; a record is never emitted without a parseable value.
type LabRecord struct {
	// TestName is the canonical test identifier.
	TestName string
	// Matched is the alias text as it appeared in the source.
	Matched string
	// Value is the normalized numeric value.
	Value float64
	// Unit is the unit token found after the value, empty when absent.
	Unit string
	// Offset is the byte offset of the alias match in the source text.
	Offset int
}

// ReferenceRange is the resolved set of bounds a value was graded against.
type ReferenceRange struct {
	TestName string
	Unit     string
	Category Category
	// AgeRange and Gender identify the demographic band the bounds came
	// from; Unisex/Adult for default bounds.
	AgeRange AgeRange
	Gender   Gender
	Low      float64
	High     float64
	// Optimal bounds are advisory and present only for some tests.
	OptimalLow  *float64
	OptimalHigh *float64
}

// ClassifiedResult pairs an extracted record with its range and status.
// Range is nil exactly when Status is StatusUnknown.
type ClassifiedResult struct {
	Record LabRecord
	Range  *ReferenceRange
	Status Status
	// Deviation is the signed distance from the violated bound:
	// value-low when LOW, value-high when HIGH, zero otherwise.
	Deviation float64
	// WithinOptimal is set only for NORMAL results whose range carries
	// optimal bounds.
	WithinOptimal *bool
	// UnitMismatch reports that the extracted unit differs from the
	// reference unit. Classification still uses the raw value.
	UnitMismatch bool
}

// Urgency is the overall attention level of a report.
type Urgency string

// Urgency values, lowest to highest.
const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// FlagSeverity ranks individual findings.
type FlagSeverity string

// FlagSeverity values represent supported finding levels.
const (
	SeverityInfo    FlagSeverity = "info"
	SeverityWarning FlagSeverity = "warning"
	SeverityDanger  FlagSeverity = "danger"
)

// Flag is a single noteworthy finding attached to a summary.
type Flag struct {
	TestName string
	Severity FlagSeverity
	Message  string
}

// Summary aggregates a result set into counts, a score and an urgency level.
type Summary struct {
	Total    int
	Normal   int
	Abnormal int
	Unknown  int
	// Score is the accumulated severity score the urgency is derived from.
	Score   int
	Urgency Urgency
	Flags   []Flag
}

// Report is the full outcome of one analysis run.
type Report struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Patient     *Patient
	Results     []ClassifiedResult
	Summary     Summary
}
