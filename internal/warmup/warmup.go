// Package warmup primes the extraction pipeline before serving traffic:
// regex engines, pools and branch predictors all settle on synthetic
// reports so first requests do not pay the cost.
package warmup

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

// WarmupConfig defines configuration for warming up the system.
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of lines in the synthetic report
	SampleLines int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration.
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  500,
		SampleLines: 50,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations.
type Manager struct {
	logger      ports.Logger
	extractors  []ports.RecordExtractor
	classifiers []ports.ResultClassifier
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager.
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterExtractor adds an extractor to be warmed up.
func (wm *Manager) RegisterExtractor(ex ports.RecordExtractor) {
	wm.extractors = append(wm.extractors, ex)
}

// RegisterClassifier adds a classifier to be warmed up.
func (wm *Manager) RegisterClassifier(c ports.ResultClassifier) {
	wm.classifiers = append(wm.classifiers, c)
}

// RegisterNormalizer adds a normalizer to be warmed up.
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components.
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.extractors)+len(wm.classifiers)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	var warmupCtx context.Context
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	} else {
		warmupCtx = ctx
	}

	wm.warmUpNormalizers(warmupCtx)
	wm.warmUpExtractors(warmupCtx)
	wm.warmUpClassifiers(warmupCtx)

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

func (wm *Manager) warmUpNormalizers(ctx context.Context) {
	if len(wm.normalizers) == 0 {
		return
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))

	labels := sampleLabels()

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				for _, normalizer := range wm.normalizers {
					_ = normalizer.Normalize(labels[j%len(labels)])
				}
			}
		}()
	}

	wg.Wait()
}

func (wm *Manager) warmUpExtractors(ctx context.Context) {
	if len(wm.extractors) == 0 {
		return
	}

	wm.logger.Debug("Warming up extractors", "count", len(wm.extractors))

	// Three report shapes: clean one-test-per-line, dense single-line
	// panels, and prose with few values.
	lined := GenerateSampleReport(wm.config.SampleLines)
	dense := strings.ReplaceAll(lined, "\n", ", ")
	sparse := "Specimen received intact. " + lined[:len(lined)/4] + " No further values reported."

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				for _, extractor := range wm.extractors {
					if j%3 == 0 {
						_ = extractor.Extract(ctx, lined)
					} else if j%3 == 1 {
						_ = extractor.Extract(ctx, dense)
					} else {
						_ = extractor.Extract(ctx, sparse)
					}
				}
			}
		}()
	}

	wg.Wait()
}

func (wm *Manager) warmUpClassifiers(ctx context.Context) {
	if len(wm.classifiers) == 0 {
		return
	}

	wm.logger.Debug("Warming up classifiers", "count", len(wm.classifiers))

	records := GenerateSampleRecords(wm.config.SampleLines)
	age := 40
	patient := &domain.Patient{Age: &age, Gender: domain.GenderFemale}

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				for _, classifier := range wm.classifiers {
					if j%2 == 0 {
						_ = classifier.Classify(ctx, records, nil)
					} else {
						_ = classifier.Classify(ctx, records, patient)
					}
				}
			}
		}()
	}

	wg.Wait()
}

// Synthetic sample data. Names and units mirror a routine CBC and
// chemistry panel; values sweep through normal and abnormal territory so
// every classification branch is exercised.

type sampleTest struct {
	name string
	unit string
	base float64
	step float64
}

var sampleTests = []sampleTest{
	{"WBC", "10^3/uL", 4.0, 1.3},
	{"RBC", "10^6/uL", 3.9, 0.4},
	{"Hemoglobin", "g/dL", 10.5, 1.1},
	{"Hematocrit", "%", 33.0, 3.0},
	{"Platelets", "10^3/uL", 120.0, 60.0},
	{"Glucose", "mg/dL", 60.0, 15.0},
	{"Creatinine", "mg/dL", 0.5, 0.2},
	{"BUN", "mg/dL", 6.0, 4.0},
	{"ALT", "IU/L", 5.0, 12.0},
	{"AST", "IU/L", 8.0, 9.0},
}

func sampleLabels() []string {
	labels := make([]string, 0, len(sampleTests)*2)
	for _, st := range sampleTests {
		labels = append(labels, st.name, st.unit)
	}
	return labels
}

// GenerateSampleReport builds a line-oriented report of the given length.
// Also used by the benchmarks.
func GenerateSampleReport(lines int) string {
	var sb strings.Builder
	for i := 0; i < lines; i++ {
		st := sampleTests[i%len(sampleTests)]
		value := st.base + float64(i%5)*st.step
		fmt.Fprintf(&sb, "%s: %.1f %s\n", st.name, value, st.unit)
	}
	return sb.String()
}

// GenerateSampleRecords builds extracted records directly, bypassing the
// text stage.
func GenerateSampleRecords(n int) []domain.LabRecord {
	records := make([]domain.LabRecord, 0, n)
	for i := 0; i < n; i++ {
		st := sampleTests[i%len(sampleTests)]
		rec := domain.LabRecord{
			TestName: st.name,
			Matched:  st.name,
			Value:    st.base + float64(i%5)*st.step,
			Unit:     st.unit,
		}
		if i%7 == 0 {
			// An off-catalog test keeps the UNKNOWN path warm.
			rec.TestName = "Ferritin"
			rec.Matched = "Ferritin"
		}
		records = append(records, rec)
	}
	return records
}
