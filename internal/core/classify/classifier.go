// Package classify grades extracted lab records against a reference table.
package classify

import (
	"context"
	"errors"
	"math"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/reference"
)

// Config holds configuration for the classifier.
type Config struct {
	// Precision is the number of decimal places deviations are rounded
	// to for reporting. Rounding never affects the status comparison.
	Precision int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Precision: 2,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Precision < 0 {
		return errors.New("precision must not be negative")
	}
	if c.Precision > 12 {
		return errors.New("precision must not exceed 12")
	}
	return nil
}

// Classifier grades lab records as LOW, NORMAL, HIGH or UNKNOWN.
type Classifier struct {
	config Config
	table  *reference.Table
	logger ports.Logger
}

// NewClassifier creates a classifier against the given reference table.
func NewClassifier(config Config, table *reference.Table, logger ports.Logger) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.New("reference table is required")
	}

	return &Classifier{
		config: config,
		table:  table,
		logger: logger,
	}, nil
}

// Classify grades each record in input order. Bounds are inclusive: a value
// exactly on the low or high bound is NORMAL. Records whose test has no
// reference entry come back UNKNOWN with a nil range. The input is never
// mutated and classifying the same records twice gives identical results.
func (c *Classifier) Classify(ctx context.Context, records []domain.LabRecord, patient *domain.Patient) []domain.ClassifiedResult {
	c.logger.Debug("Starting classification",
		"records", len(records),
		"demographics", patient != nil,
	)

	results := make([]domain.ClassifiedResult, 0, len(records))
	for _, rec := range records {
		// Check for context cancellation between records.
		select {
		case <-ctx.Done():
			c.logger.Error("Classification cancelled",
				"error", ctx.Err(),
				"classified", len(results),
			)
			return results
		default:
		}
		results = append(results, c.classifyOne(rec, patient))
	}

	c.logger.Debug("Classification complete", "results", len(results))
	return results
}

func (c *Classifier) classifyOne(rec domain.LabRecord, patient *domain.Patient) domain.ClassifiedResult {
	entry, ok := c.table.Resolve(rec.TestName)
	if !ok {
		c.logger.Debug("No reference entry for test", "test", rec.TestName)
		return domain.ClassifiedResult{
			Record: rec,
			Status: domain.StatusUnknown,
		}
	}

	rr := c.table.RangeFor(entry, patient)
	result := domain.ClassifiedResult{
		Record: rec,
		Range:  &rr,
		Status: domain.StatusNormal,
	}

	switch {
	case rec.Value < rr.Low:
		result.Status = domain.StatusLow
		result.Deviation = c.round(rec.Value - rr.Low)
	case rec.Value > rr.High:
		result.Status = domain.StatusHigh
		result.Deviation = c.round(rec.Value - rr.High)
	default:
		if rr.OptimalLow != nil || rr.OptimalHigh != nil {
			within := withinOptimal(rec.Value, rr)
			result.WithinOptimal = &within
		}
	}

	if rec.Unit != "" && rr.Unit != "" && c.table.Fold(rec.Unit) != c.table.Fold(rr.Unit) {
		result.UnitMismatch = true
		c.logger.Debug("Reported unit differs from reference unit",
			"test", entry.Name,
			"reported", rec.Unit,
			"reference", rr.Unit,
		)
	}

	return result
}

// withinOptimal checks the tighter optimal interval; a missing bound falls
// back to the reference bound on that side.
func withinOptimal(value float64, rr domain.ReferenceRange) bool {
	lo, hi := rr.Low, rr.High
	if rr.OptimalLow != nil {
		lo = *rr.OptimalLow
	}
	if rr.OptimalHigh != nil {
		hi = *rr.OptimalHigh
	}
	return value >= lo && value <= hi
}

func (c *Classifier) round(v float64) float64 {
	scale := math.Pow10(c.config.Precision)
	return math.Round(v*scale) / scale
}
