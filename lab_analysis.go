// lab_analysis.go
// Package labanalysis extracts lab test values from free-form report text
// and grades them against reference ranges. Each recognized test mention is
// paired with the nearest following numeric value; a value below the range
// reads LOW, above it HIGH, inside it NORMAL, and tests without a range
// entry come back UNKNOWN.
//
// This package is self-contained and keeps a deliberately small surface:
// Scan over a configurable range table. The pkg/labreport package is the
// full engine, with demographic bands, streaming input and report
// rendering.
package labanalysis

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/baditaflorin/l"
)

// Status grades a value against its reference range.
type Status string

const (
	StatusLow     Status = "LOW"
	StatusNormal  Status = "NORMAL"
	StatusHigh    Status = "HIGH"
	StatusUnknown Status = "UNKNOWN"
)

// Range is an inclusive reference interval for one test.
type Range struct {
	Low  float64
	High float64
	Unit string
}

// Finding is one extracted and graded lab value.
type Finding struct {
	// Test is the canonical test name.
	Test string
	// Value is the extracted numeric value.
	Value float64
	// Unit is the reference unit, empty for UNKNOWN findings.
	Unit string
	// Status grades Value against the test's range.
	Status Status
	// Deviation is the distance past the violated bound, zero when the
	// value is inside the range, rounded to two decimals.
	Deviation float64
	// Offset is the byte position of the test mention in the text.
	Offset int
}

// DefaultRanges returns the built-in range table: a routine CBC and basic
// chemistry.
func DefaultRanges() map[string]Range {
	return map[string]Range{
		"WBC":        {Low: 4.0, High: 11.0, Unit: "10^3/uL"},
		"RBC":        {Low: 4.2, High: 5.8, Unit: "10^6/uL"},
		"Hemoglobin": {Low: 12.0, High: 16.0, Unit: "g/dL"},
		"Platelets":  {Low: 150, High: 450, Unit: "10^3/uL"},
		"Glucose":    {Low: 70, High: 100, Unit: "mg/dL"},
		"Creatinine": {Low: 0.6, High: 1.3, Unit: "mg/dL"},
	}
}

// knownAliases maps canonical test names to the other spellings reports
// use. Tests listed here are recognized even without a range entry, so
// their values surface as UNKNOWN instead of disappearing.
var knownAliases = map[string][]string{
	"WBC":        {"White Blood Cells", "Leukocytes"},
	"RBC":        {"Red Blood Cells", "Erythrocytes"},
	"Hemoglobin": {"Hgb", "Hb"},
	"Hematocrit": {"Hct"},
	"Platelets":  {"Platelet Count", "PLT"},
	"Glucose":    {"FBS"},
	"Creatinine": {"Creat"},
	"BUN":        {"Blood Urea Nitrogen"},
	"ALT":        {"SGPT"},
	"AST":        {"SGOT"},
}

// Config holds configuration options for the report scanner.
type Config struct {
	// Ranges maps canonical test names to their reference intervals.
	Ranges map[string]Range
	// Aliases maps canonical test names to extra spellings, merged with
	// the built-in alias table.
	Aliases map[string][]string
	// Logger for tracing scan steps.
	Logger l.Logger
}

// Option defines a functional option for configuring the scanner.
type Option func(*Config)

// WithRanges sets a custom range table.
func WithRanges(ranges map[string]Range) Option {
	return func(cfg *Config) {
		cfg.Ranges = ranges
	}
}

// WithAliases adds extra spellings for canonical test names. A test that
// only appears here is still recognized; its values come back UNKNOWN.
func WithAliases(aliases map[string][]string) Option {
	return func(cfg *Config) {
		cfg.Aliases = aliases
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger l.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// testPattern pairs a canonical test name with the pattern locating its
// mentions and value.
type testPattern struct {
	test string
	re   *regexp.Regexp
}

// ReportScanner extracts and grades lab values using configurable ranges.
type ReportScanner struct {
	config   Config
	patterns []testPattern
}

// New creates a new ReportScanner with the provided functional options.
// If no logger is provided, a default logger is created.
func New(opts ...Option) *ReportScanner {
	cfg := Config{
		Ranges: DefaultRanges(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	// If no logger is set, create a default logger.
	if cfg.Logger == nil {
		logger, err := createDefaultLogger()
		if err != nil {
			panic(err)
		}
		cfg.Logger = logger
	}

	return &ReportScanner{
		config:   cfg,
		patterns: buildPatterns(cfg.Ranges, cfg.Aliases),
	}
}

// buildPatterns compiles one pattern per recognized test: any of its
// spellings, then at most a short stretch of non-numeric text on the same
// line, then the value. Tests are ordered by name so scans are
// deterministic.
func buildPatterns(ranges map[string]Range, extra map[string][]string) []testPattern {
	tests := make(map[string]bool, len(ranges)+len(knownAliases)+len(extra))
	for name := range ranges {
		tests[name] = true
	}
	for name := range knownAliases {
		tests[name] = true
	}
	for name := range extra {
		tests[name] = true
	}

	names := make([]string, 0, len(tests))
	for name := range tests {
		names = append(names, name)
	}
	sort.Strings(names)

	patterns := make([]testPattern, 0, len(names))
	for _, name := range names {
		terms := append([]string{name}, knownAliases[name]...)
		terms = append(terms, extra[name]...)
		// Longer spellings first so the alternation prefers them.
		sort.SliceStable(terms, func(i, j int) bool {
			return len(terms[i]) > len(terms[j])
		})
		for i, term := range terms {
			terms[i] = regexp.QuoteMeta(term)
		}
		expr := `(?i)\b(?:` + strings.Join(terms, "|") + `)\b[^0-9\n]{0,40}?([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]+)?|[0-9]+(?:[.,][0-9]+)?)`
		patterns = append(patterns, testPattern{
			test: name,
			re:   regexp.MustCompile(expr),
		})
	}
	return patterns
}

// ScanWithDefaults scans the text with the default ranges and logger.
func ScanWithDefaults(text string) []Finding {
	return New().Scan(text)
}

// Scan extracts every recognized lab value from the text and grades it.
// Mentions are handled in document order; the first mention of each test
// with a readable value wins. Text without recognizable values yields an
// empty result, never an error.
func (rs *ReportScanner) Scan(text string) []Finding {
	rs.config.Logger.Info("Starting report scan",
		"bytes", len(text),
		"tests", len(rs.patterns),
	)

	type mention struct {
		test   string
		offset int
		value  float64
	}

	var mentions []mention
	for _, tp := range rs.patterns {
		for _, m := range tp.re.FindAllStringSubmatchIndex(text, -1) {
			raw := text[m[2]:m[3]]
			value, ok := parseValue(raw)
			if !ok {
				rs.config.Logger.Info("Skipping unreadable value",
					"test", tp.test,
					"raw", raw,
				)
				continue
			}
			mentions = append(mentions, mention{
				test:   tp.test,
				offset: m[0],
				value:  value,
			})
		}
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].offset != mentions[j].offset {
			return mentions[i].offset < mentions[j].offset
		}
		return mentions[i].test < mentions[j].test
	})

	seen := make(map[string]bool, len(mentions))
	findings := make([]Finding, 0, len(mentions))
	for _, m := range mentions {
		if seen[m.test] {
			continue
		}
		seen[m.test] = true
		findings = append(findings, rs.grade(m.test, m.value, m.offset))
	}

	rs.config.Logger.Info("Report scan complete",
		"mentions", len(mentions),
		"findings", len(findings),
	)
	return findings
}

// grade compares a value against the test's range. Bounds are inclusive on
// both ends.
func (rs *ReportScanner) grade(test string, value float64, offset int) Finding {
	f := Finding{
		Test:   test,
		Value:  value,
		Offset: offset,
	}

	r, ok := rs.config.Ranges[test]
	if !ok {
		f.Status = StatusUnknown
		return f
	}

	f.Unit = r.Unit
	switch {
	case value < r.Low:
		f.Status = StatusLow
		f.Deviation = round2(value - r.Low)
	case value > r.High:
		f.Status = StatusHigh
		f.Deviation = round2(value - r.High)
	default:
		f.Status = StatusNormal
	}
	return f
}

// thousandsGrouped matches a number whose commas separate groups of exactly
// three digits, optionally with a decimal part.
var thousandsGrouped = regexp.MustCompile(`^[0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]+)?$`)

// parseValue reads a captured number. Commas between groups of exactly
// three digits are thousands grouping and are stripped; any other single
// comma is a decimal comma.
func parseValue(raw string) (float64, bool) {
	if strings.ContainsRune(raw, ',') {
		if thousandsGrouped.MatchString(raw) {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.Replace(raw, ",", ".", 1)
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
