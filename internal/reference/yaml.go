package reference

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

// File is the YAML shape of a reference table.
//
//	tests:
//	  - name: Hemoglobin
//	    aliases: [Hgb, Hb]
//	    unit: g/dL
//	    category: Blood Counts
//	    low: 12.0
//	    high: 16.0
//	    ranges:
//	      - age: Adult
//	        gender: Male
//	        low: 13.2
//	        high: 16.6
type File struct {
	Tests []EntrySpec `yaml:"tests"`
}

// EntrySpec is one test in a YAML reference file.
type EntrySpec struct {
	Name        string     `yaml:"name"`
	Aliases     []string   `yaml:"aliases"`
	Unit        string     `yaml:"unit"`
	Category    string     `yaml:"category"`
	Low         float64    `yaml:"low"`
	High        float64    `yaml:"high"`
	OptimalLow  *float64   `yaml:"optimal_low"`
	OptimalHigh *float64   `yaml:"optimal_high"`
	Ranges      []BandSpec `yaml:"ranges"`
}

// BandSpec is one demographic override in a YAML reference file.
type BandSpec struct {
	Age         string   `yaml:"age"`
	Gender      string   `yaml:"gender"`
	Low         float64  `yaml:"low"`
	High        float64  `yaml:"high"`
	OptimalLow  *float64 `yaml:"optimal_low"`
	OptimalHigh *float64 `yaml:"optimal_high"`
}

// LoadTable reads a YAML reference file from disk and compiles it.
func LoadTable(path string, norm ports.Normalizer) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}
	t, err := ParseTable(data, norm)
	if err != nil {
		return nil, fmt.Errorf("parse reference file %s: %w", path, err)
	}
	return t, nil
}

// ParseTable compiles a table from YAML bytes. A nil normalizer selects the
// default folding strategy.
func ParseTable(data []byte, norm ports.Normalizer) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if len(f.Tests) == 0 {
		return nil, fmt.Errorf("reference file declares no tests")
	}

	entries := make([]Entry, 0, len(f.Tests))
	for i, spec := range f.Tests {
		e, err := spec.toEntry()
		if err != nil {
			return nil, fmt.Errorf("test %d (%q): %w", i, spec.Name, err)
		}
		entries = append(entries, e)
	}
	return NewTable(entries, norm)
}

func (s EntrySpec) toEntry() (Entry, error) {
	category, err := parseCategory(s.Category)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Name:        s.Name,
		Aliases:     s.Aliases,
		Unit:        s.Unit,
		Category:    category,
		Low:         s.Low,
		High:        s.High,
		OptimalLow:  s.OptimalLow,
		OptimalHigh: s.OptimalHigh,
	}
	for _, r := range s.Ranges {
		b, err := r.toBand()
		if err != nil {
			return Entry{}, err
		}
		e.Bands = append(e.Bands, b)
	}
	return e, nil
}

func (s BandSpec) toBand() (Band, error) {
	age, err := parseAgeRange(s.Age)
	if err != nil {
		return Band{}, err
	}
	gender, err := parseGender(s.Gender)
	if err != nil {
		return Band{}, err
	}
	return Band{
		Age:         age,
		Gender:      gender,
		Low:         s.Low,
		High:        s.High,
		OptimalLow:  s.OptimalLow,
		OptimalHigh: s.OptimalHigh,
	}, nil
}

func parseCategory(s string) (domain.Category, error) {
	switch s {
	case "":
		return domain.CategoryOther, nil
	case string(domain.CategoryBloodCounts):
		return domain.CategoryBloodCounts, nil
	case string(domain.CategoryMetabolic):
		return domain.CategoryMetabolic, nil
	case string(domain.CategoryLipidPanel):
		return domain.CategoryLipidPanel, nil
	case string(domain.CategoryLiverFunction):
		return domain.CategoryLiverFunction, nil
	case string(domain.CategoryOther):
		return domain.CategoryOther, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func parseAgeRange(s string) (domain.AgeRange, error) {
	switch s {
	case string(domain.AgePediatric):
		return domain.AgePediatric, nil
	case string(domain.AgeAdult):
		return domain.AgeAdult, nil
	case string(domain.AgeMiddleAge):
		return domain.AgeMiddleAge, nil
	case string(domain.AgeSenior):
		return domain.AgeSenior, nil
	}
	return "", fmt.Errorf("unknown age range %q", s)
}

func parseGender(s string) (domain.Gender, error) {
	switch s {
	case "", string(domain.GenderUnisex):
		return domain.GenderUnisex, nil
	case string(domain.GenderMale):
		return domain.GenderMale, nil
	case string(domain.GenderFemale):
		return domain.GenderFemale, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}
