package labreport

import "github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"

// Aliases for the domain types the analyzer consumes and produces, so
// callers construct patients and inspect results without reaching into
// internal packages.
type (
	Patient          = domain.Patient
	Gender           = domain.Gender
	AgeRange         = domain.AgeRange
	LabRecord        = domain.LabRecord
	ReferenceRange   = domain.ReferenceRange
	ClassifiedResult = domain.ClassifiedResult
	Status           = domain.Status
	Report           = domain.Report
	Summary          = domain.Summary
	Flag             = domain.Flag
	FlagSeverity     = domain.FlagSeverity
	Urgency          = domain.Urgency
)

const (
	StatusLow     = domain.StatusLow
	StatusNormal  = domain.StatusNormal
	StatusHigh    = domain.StatusHigh
	StatusUnknown = domain.StatusUnknown

	GenderMale   = domain.GenderMale
	GenderFemale = domain.GenderFemale
	GenderUnisex = domain.GenderUnisex

	UrgencyLow    = domain.UrgencyLow
	UrgencyMedium = domain.UrgencyMedium
	UrgencyHigh   = domain.UrgencyHigh

	SeverityInfo    = domain.SeverityInfo
	SeverityWarning = domain.SeverityWarning
	SeverityDanger  = domain.SeverityDanger
)
