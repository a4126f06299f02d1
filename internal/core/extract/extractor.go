// Package extract implements lab value extraction from free-form report
// text. Known test names and aliases are located with word-bounded
// patterns, overlapping mentions are resolved positionally, and each
// surviving mention is paired with the first numeric value inside a bounded
// token window to its right.
package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/reference"
)

// Config holds configuration for the extractor.
type Config struct {
	// TokenWindow is how many tokens after an alias are searched for a
	// value before the mention is abandoned. Tokens that are pure
	// punctuation do not consume the window.
	TokenWindow int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		TokenWindow: 5,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.TokenWindow <= 0 {
		return errors.New("token window must be greater than 0")
	}
	return nil
}

// matcher pairs one reference entry with its compiled alias pattern.
type matcher struct {
	entry   reference.Entry
	re      *regexp.Regexp
	unitKey string
}

// Extractor locates known lab tests and their values in report text.
type Extractor struct {
	config   Config
	logger   ports.Logger
	matchers []matcher
	fold     func(string) string
}

// candidate is one alias occurrence in the text.
type candidate struct {
	m     *matcher
	start int
	end   int
}

// NewExtractor compiles alias patterns for every entry in the reference
// table.
func NewExtractor(config Config, table *reference.Table, logger ports.Logger) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.New("reference table is required")
	}

	entries := table.Entries()
	matchers := make([]matcher, 0, len(entries))
	for _, e := range entries {
		re, err := compileTerms(e.Terms())
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", e.Name, err)
		}
		matchers = append(matchers, matcher{
			entry:   e,
			re:      re,
			unitKey: table.Fold(e.Unit),
		})
	}

	return &Extractor{
		config:   config,
		logger:   logger,
		matchers: matchers,
		fold:     table.Fold,
	}, nil
}

// Extract scans the text for known test mentions and returns one record per
// test, first parseable mention wins, in document order. Malformed or
// value-less mentions are skipped, never fatal.
func (e *Extractor) Extract(ctx context.Context, text string) []domain.LabRecord {
	e.logger.Debug("Starting lab record extraction", "bytes", len(text))

	if strings.TrimSpace(text) == "" {
		e.logger.Debug("Empty report text, nothing to extract")
		return nil
	}

	// Check for context cancellation before the scan.
	select {
	case <-ctx.Done():
		e.logger.Error("Extraction cancelled", "error", ctx.Err())
		return nil
	default:
	}

	accepted := e.acceptedCandidates(text)

	select {
	case <-ctx.Done():
		e.logger.Error("Extraction cancelled", "error", ctx.Err())
		return nil
	default:
	}

	emitted := make(map[string]bool, len(accepted))
	records := make([]domain.LabRecord, 0, len(accepted))
	for i, c := range accepted {
		if emitted[c.m.entry.Name] {
			continue
		}

		// The value search stops where the next recognized mention
		// begins: values past that point belong to the next clause.
		boundary := len(text)
		if i+1 < len(accepted) {
			boundary = accepted[i+1].start
		}

		value, unit, ok := e.resolveValue(text, c.end, boundary, c.m.unitKey)
		if !ok {
			e.logger.Debug("No parseable value near alias",
				"test", c.m.entry.Name,
				"alias", text[c.start:c.end],
				"offset", c.start,
			)
			continue
		}

		records = append(records, domain.LabRecord{
			TestName: c.m.entry.Name,
			Matched:  text[c.start:c.end],
			Value:    value,
			Unit:     unit,
			Offset:   c.start,
		})
		emitted[c.m.entry.Name] = true
	}

	e.logger.Debug("Extraction complete",
		"mentions", len(accepted),
		"records", len(records),
	)
	return records
}

// acceptedCandidates collects every alias occurrence, then resolves
// overlaps: candidates are ordered by position with longer matches winning
// ties, and any candidate overlapping an already accepted span is dropped.
// This is what keeps "LDL" from firing inside "LDL Cholesterol".
func (e *Extractor) acceptedCandidates(text string) []candidate {
	var cands []candidate
	for i := range e.matchers {
		m := &e.matchers[i]
		for _, loc := range m.re.FindAllStringIndex(text, -1) {
			cands = append(cands, candidate{m: m, start: loc[0], end: loc[1]})
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		li, lj := cands[i].end-cands[i].start, cands[j].end-cands[j].start
		if li != lj {
			return li > lj
		}
		return cands[i].m.entry.Name < cands[j].m.entry.Name
	})

	accepted := cands[:0]
	maxEnd := 0
	for _, c := range cands {
		if c.start < maxEnd {
			continue
		}
		accepted = append(accepted, c)
		maxEnd = c.end
	}
	return accepted
}

// resolveValue searches text[from:until] for the mention's value and an
// optional unit label on the token after it.
func (e *Extractor) resolveValue(text string, from, until int, unitKey string) (float64, string, bool) {
	pos := from
	for seen := 0; seen < e.config.TokenWindow; {
		tok, next, ok := nextToken(text, pos, until)
		if !ok {
			break
		}
		pos = next

		core := cleanToken(tok)
		if core == "" {
			continue
		}
		seen++

		if v, ok := parseNumber(core); ok {
			unit := ""
			if raw, _, ok := nextToken(text, pos, until); ok {
				if u := cleanToken(raw); e.acceptUnit(u, unitKey) {
					unit = u
				}
			}
			return v, unit, true
		}
		if v, u, ok := splitValueUnit(core); ok && e.acceptUnit(u, unitKey) {
			return v, u, true
		}
	}
	return 0, "", false
}

// acceptUnit decides whether a token is a unit label. Tokens with unit
// signal characters qualify on shape alone; pure-letter tokens qualify only
// when they fold to the entry's reference unit, so that prose after a value
// ("110 while fasting") is not taken for a unit.
func (e *Extractor) acceptUnit(core, unitKey string) bool {
	if !plausibleUnit(core) {
		return false
	}
	if unitSignal(core) {
		return true
	}
	return unitKey != "" && e.fold(core) == unitKey
}
