// Package reference implements the immutable lab reference table: canonical
// test names, accepted aliases, units and low/high bounds, with optional
// demographic bands. A table is built once at startup and passed by
// reference into the extractor and classifier; it is never mutated after
// construction.
package reference

import (
	"errors"
	"fmt"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/adapters/normalizer"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

// Band overrides an entry's default bounds for one demographic group.
type Band struct {
	Age         domain.AgeRange
	Gender      domain.Gender
	Low         float64
	High        float64
	OptimalLow  *float64
	OptimalHigh *float64
}

// Entry describes one lab test: its canonical name, accepted aliases, unit,
// default bounds and any demographic bands.
type Entry struct {
	Name     string
	Aliases  []string
	Unit     string
	Category domain.Category
	// Low and High are the default inclusive bounds, used when no band
	// matches the patient demographics.
	Low         float64
	High        float64
	OptimalLow  *float64
	OptimalHigh *float64
	Bands       []Band
}

// Terms returns the scannable surface forms for the entry: the canonical
// name followed by its aliases.
func (e *Entry) Terms() []string {
	terms := make([]string, 0, len(e.Aliases)+1)
	terms = append(terms, e.Name)
	terms = append(terms, e.Aliases...)
	return terms
}

// Table is a compiled reference table with a folded-name index. Safe for
// concurrent use once built.
type Table struct {
	entries []Entry
	byKey   map[string]int
	norm    ports.Normalizer
}

// NewTable compiles a reference table from entries. A nil normalizer selects
// the default folding strategy. Entries are validated: names must be
// non-empty, bounds ordered, and no two tests may claim the same folded
// alias.
func NewTable(entries []Entry, norm ports.Normalizer) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New("reference table needs at least one entry")
	}
	if norm == nil {
		norm = normalizer.NewDefaultNormalizer()
	}

	t := &Table{
		entries: make([]Entry, len(entries)),
		byKey:   make(map[string]int, len(entries)*2),
		norm:    norm,
	}
	copy(t.entries, entries)

	for i := range t.entries {
		e := &t.entries[i]
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Name, err)
		}

		for _, term := range e.Terms() {
			key := norm.Normalize(term)
			if key == "" {
				return nil, fmt.Errorf("entry %q: alias %q folds to nothing", e.Name, term)
			}
			if prev, exists := t.byKey[key]; exists {
				if prev == i {
					// The same entry may spell an alias several
					// ways ("MCV" and "M.C.V").
					continue
				}
				return nil, fmt.Errorf("alias %q is claimed by both %q and %q",
					term, t.entries[prev].Name, e.Name)
			}
			t.byKey[key] = i
		}
	}

	return t, nil
}

func validateEntry(e *Entry) error {
	if e.Name == "" {
		return errors.New("canonical name must not be empty")
	}
	if e.Low > e.High {
		return fmt.Errorf("low bound %v exceeds high bound %v", e.Low, e.High)
	}
	for _, b := range e.Bands {
		if b.Low > b.High {
			return fmt.Errorf("band %s/%s: low bound %v exceeds high bound %v",
				b.Age, b.Gender, b.Low, b.High)
		}
		if !validAgeRange(b.Age) {
			return fmt.Errorf("band has unknown age range %q", b.Age)
		}
		if !validGender(b.Gender) {
			return fmt.Errorf("band has unknown gender %q", b.Gender)
		}
	}
	return nil
}

func validAgeRange(a domain.AgeRange) bool {
	switch a {
	case domain.AgePediatric, domain.AgeAdult, domain.AgeMiddleAge, domain.AgeSenior:
		return true
	}
	return false
}

func validGender(g domain.Gender) bool {
	switch g {
	case domain.GenderMale, domain.GenderFemale, domain.GenderUnisex:
		return true
	}
	return false
}

// Len returns the number of tests in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table's entries in their original order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Fold returns the canonical lookup form of a name or unit label, using the
// same folding the alias index was built with.
func (t *Table) Fold(s string) string {
	return t.norm.Normalize(s)
}

// Resolve looks up a test by canonical name or alias. Lookup is insensitive
// to case, dots and separator punctuation.
func (t *Table) Resolve(name string) (*Entry, bool) {
	i, ok := t.byKey[t.norm.Normalize(name)]
	if !ok {
		return nil, false
	}
	return &t.entries[i], true
}

// RangeFor resolves the bounds to grade a value against for the given
// patient. Band selection follows gender-specific first, then unisex at the
// same age range, then the entry's default bounds. A nil patient selects the
// defaults straight away.
func (t *Table) RangeFor(e *Entry, patient *domain.Patient) domain.ReferenceRange {
	rr := domain.ReferenceRange{
		TestName:    e.Name,
		Unit:        e.Unit,
		Category:    e.Category,
		AgeRange:    domain.AgeAdult,
		Gender:      domain.GenderUnisex,
		Low:         e.Low,
		High:        e.High,
		OptimalLow:  e.OptimalLow,
		OptimalHigh: e.OptimalHigh,
	}
	if patient == nil || len(e.Bands) == 0 {
		return rr
	}

	age := patient.AgeRange()
	gender := patient.Gender
	if gender == "" {
		gender = domain.GenderUnisex
	}

	if gender != domain.GenderUnisex {
		if b := findBand(e.Bands, age, gender); b != nil {
			return bandRange(e, b)
		}
	}
	if b := findBand(e.Bands, age, domain.GenderUnisex); b != nil {
		return bandRange(e, b)
	}
	return rr
}

func findBand(bands []Band, age domain.AgeRange, gender domain.Gender) *Band {
	for i := range bands {
		if bands[i].Age == age && bands[i].Gender == gender {
			return &bands[i]
		}
	}
	return nil
}

func bandRange(e *Entry, b *Band) domain.ReferenceRange {
	return domain.ReferenceRange{
		TestName:    e.Name,
		Unit:        e.Unit,
		Category:    e.Category,
		AgeRange:    b.Age,
		Gender:      b.Gender,
		Low:         b.Low,
		High:        b.High,
		OptimalLow:  b.OptimalLow,
		OptimalHigh: b.OptimalHigh,
	}
}
