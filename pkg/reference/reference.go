// Package reference exposes the lab reference table: the built-in catalog,
// YAML loading, and construction from entries for callers that curate
// their own ranges.
package reference

import (
	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	ref "github.com/muhammadawaislaal/go_lab_analysis/internal/reference"
)

// Aliases for the table types and the demographic vocabulary entries are
// written in.
type (
	Table    = ref.Table
	Entry    = ref.Entry
	Band     = ref.Band
	Category = domain.Category
	AgeRange = domain.AgeRange
	Gender   = domain.Gender
)

const (
	CategoryBloodCounts   = domain.CategoryBloodCounts
	CategoryMetabolic     = domain.CategoryMetabolic
	CategoryLipidPanel    = domain.CategoryLipidPanel
	CategoryLiverFunction = domain.CategoryLiverFunction
	CategoryOther         = domain.CategoryOther

	AgePediatric = domain.AgePediatric
	AgeAdult     = domain.AgeAdult
	AgeMiddleAge = domain.AgeMiddleAge
	AgeSenior    = domain.AgeSenior

	GenderMale   = domain.GenderMale
	GenderFemale = domain.GenderFemale
	GenderUnisex = domain.GenderUnisex
)

// Default returns the built-in catalog: a common CBC, metabolic, lipid and
// liver panel.
func Default() *Table {
	return ref.DefaultTable()
}

// NewTable compiles a table from entries with the default name folding.
func NewTable(entries []Entry) (*Table, error) {
	return ref.NewTable(entries, nil)
}

// Load reads and compiles a YAML reference file.
func Load(path string) (*Table, error) {
	return ref.LoadTable(path, nil)
}

// Parse compiles a table from YAML bytes.
func Parse(data []byte) (*Table, error) {
	return ref.ParseTable(data, nil)
}

// Float returns a pointer to v, for the optional bounds on entries and
// bands.
func Float(v float64) *float64 {
	return &v
}
