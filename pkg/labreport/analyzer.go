// Package labreport is the high-level entry point for lab report analysis:
// extraction of test values from free text, grading against a reference
// table, and report assembly.
package labreport

import (
	"context"
	"io"
	"time"

	"github.com/baditaflorin/l"
	"github.com/google/uuid"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/adapters/logger"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/adapters/normalizer"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/adapters/stream"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/assess"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/classify"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/extract"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/reference"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/render"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/warmup"
)

// Analyzer provides methods to extract, classify and report on lab values.
type Analyzer struct {
	extractor  ports.RecordExtractor
	streamer   ports.StreamExtractor
	classifier ports.ResultClassifier
	assessor   *assess.Assessor
	table      *reference.Table
	logger     ports.Logger
	normalizer ports.Normalizer
	warmed     bool
}

// AnalyzerOption defines a functional option for configuring an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	TokenWindow  int
	Precision    int
	Table        *reference.Table
	Aliases      map[string][]string
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithTokenWindow sets how many tokens after a test mention are searched
// for its value.
func WithTokenWindow(n int) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.TokenWindow = n
	}
}

// WithPrecision sets the number of decimal places deviations are rounded to.
func WithPrecision(p int) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Precision = p
	}
}

// WithTable sets a custom reference table. Build one with the reference
// package, from YAML or from entries. A custom table narrows grading, not
// recognition: built-in catalog tests it does not cover are still extracted
// and their values grade UNKNOWN.
func WithTable(t *reference.Table) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Table = t
	}
}

// WithAliases adds extra recognized spellings per canonical test name. A
// name the reference table does not cover is still extracted under the
// given spelling and its values grade UNKNOWN.
func WithAliases(aliases map[string][]string) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Aliases = aliases
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(lg l.Logger) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithQuietLogging silences the analyzer's internal logging. Intended for
// command-line use where stdout carries the rendered output.
func WithQuietLogging() AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Logger = logger.NewNopLogger()
	}
}

// WithNormalizer sets a custom name and unit folding strategy.
func WithNormalizer(norm ports.Normalizer) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.Normalizer = norm
	}
}

// WithFastNormalizer selects the precomputed-table folding strategy.
func WithFastNormalizer() AnalyzerOption {
	return func(cfg *analyzerConfig) {
		normFactory := normalizer.NewNormalizerFactory()
		cfg.Normalizer = normFactory.CreateNormalizer(normalizer.FastNormalizerType)
	}
}

// WithOptimizedNormalizer selects the pooled-buffer folding strategy.
func WithOptimizedNormalizer() AnalyzerOption {
	return func(cfg *analyzerConfig) {
		normFactory := normalizer.NewNormalizerFactory()
		cfg.Normalizer = normFactory.CreateNormalizer(normalizer.OptimizedNormalizerType)
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) AnalyzerOption {
	return func(cfg *analyzerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Analyzer instance. Without options it folds names with
// the default strategy and grades against the built-in reference catalog.
func New(opts ...AnalyzerOption) (*Analyzer, error) {
	extractDefaults := extract.DefaultConfig()
	classifyDefaults := classify.DefaultConfig()

	config := &analyzerConfig{
		TokenWindow:  extractDefaults.TokenWindow,
		Precision:    classifyDefaults.Precision,
		WarmUp:       false,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewDefaultNormalizer()
	}

	if config.Table == nil {
		table, err := reference.NewTable(reference.DefaultEntries(), config.Normalizer)
		if err != nil {
			return nil, err
		}
		config.Table = table
	}

	// The extractor scans with a lexicon wider than the grading table, so
	// tests a curated table does not cover still surface as UNKNOWN.
	lexicon, err := reference.NewLexicon(config.Table, config.Aliases, reference.DefaultEntries())
	if err != nil {
		return nil, err
	}

	extractor, err := extract.NewExtractor(extract.Config{TokenWindow: config.TokenWindow}, lexicon, config.Logger)
	if err != nil {
		return nil, err
	}

	classifier, err := classify.NewClassifier(classify.Config{Precision: config.Precision}, config.Table, config.Logger)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		extractor:  extractor,
		streamer:   stream.NewScanner(extractor, config.Logger),
		classifier: classifier,
		assessor:   assess.NewAssessor(config.Logger),
		table:      config.Table,
		logger:     config.Logger,
		normalizer: config.Normalizer,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		a.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return a, nil
}

// Extract scans report text and returns one record per recognized test, in
// document order.
func (a *Analyzer) Extract(ctx context.Context, text string) []LabRecord {
	return a.extractor.Extract(ctx, text)
}

// Classify grades records against the reference table. Patient may be nil;
// demographics refine the reference intervals when present.
func (a *Analyzer) Classify(ctx context.Context, records []LabRecord, patient *Patient) []ClassifiedResult {
	return a.classifier.Classify(ctx, records, patient)
}

// Summarize aggregates classified results into counts, flags and an urgency
// level without assembling a full report.
func (a *Analyzer) Summarize(results []ClassifiedResult) Summary {
	return a.assessor.Assess(results)
}

// Analyze runs extraction, classification and assessment over report text
// and assembles the report.
func (a *Analyzer) Analyze(ctx context.Context, text string, patient *Patient) Report {
	records := a.extractor.Extract(ctx, text)
	results := a.classifier.Classify(ctx, records, patient)
	return a.buildReport(results, patient)
}

// AnalyzeReader is Analyze over a stream, for reports too large to hold as
// one string.
func (a *Analyzer) AnalyzeReader(ctx context.Context, r io.Reader, patient *Patient) (Report, error) {
	records, err := a.streamer.ExtractStream(ctx, r)
	if err != nil {
		return Report{}, err
	}
	results := a.classifier.Classify(ctx, records, patient)
	return a.buildReport(results, patient), nil
}

// RenderMarkdown renders a report as a markdown document.
func (a *Analyzer) RenderMarkdown(report Report) string {
	return render.Markdown(report)
}

// Table returns the reference table the analyzer grades against.
func (a *Analyzer) Table() *reference.Table {
	return a.table
}

// WarmUp performs system warm-up to optimize performance.
func (a *Analyzer) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if a.warmed {
		a.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(a.logger, config)
	warmupMgr.RegisterExtractor(a.extractor)
	warmupMgr.RegisterClassifier(a.classifier)
	warmupMgr.RegisterNormalizer(a.normalizer)

	warmupMgr.WarmUp(ctx)
	a.warmed = true
}

func (a *Analyzer) buildReport(results []ClassifiedResult, patient *Patient) Report {
	return Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Patient:     patient,
		Results:     results,
		Summary:     a.assessor.Assess(results),
	}
}
