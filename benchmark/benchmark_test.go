package benchmark

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/adapters/normalizer"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/warmup"
	"github.com/muhammadawaislaal/go_lab_analysis/pkg/labreport"
)

// BenchmarkNormalizers compares the folding strategies over the kinds of
// strings the engine actually folds: aliases, report lines and whole reports
func BenchmarkNormalizers(b *testing.B) {
	alias := "White Blood Cell Count"
	line := "Hemoglobin: 13.2 g/dL (reference 12-16)"
	report := warmup.GenerateSampleReport(50)

	// Create the normalizer factory
	factory := normalizer.NewNormalizerFactory()

	// Define benchmark cases for each normalizer type
	benchmarks := []struct {
		name     string
		normType normalizer.NormalizerType
		input    string
	}{
		{"Default-Alias", normalizer.DefaultNormalizerType, alias},
		{"Default-Line", normalizer.DefaultNormalizerType, line},
		{"Default-Report", normalizer.DefaultNormalizerType, report},

		{"Optimized-Alias", normalizer.OptimizedNormalizerType, alias},
		{"Optimized-Line", normalizer.OptimizedNormalizerType, line},
		{"Optimized-Report", normalizer.OptimizedNormalizerType, report},

		{"Fast-Alias", normalizer.FastNormalizerType, alias},
		{"Fast-Line", normalizer.FastNormalizerType, line},
		{"Fast-Report", normalizer.FastNormalizerType, report},
	}

	// Run benchmarks
	for _, bm := range benchmarks {
		norm := factory.CreateNormalizer(bm.normType)

		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(bm.input)))

			for i := 0; i < b.N; i++ {
				_ = norm.Normalize(bm.input)
			}
		})
	}
}

// BenchmarkExtract benchmarks record extraction with different configurations
func BenchmarkExtract(b *testing.B) {
	report := warmup.GenerateSampleReport(50)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Benchmark standard configuration
	b.Run("Standard", func(b *testing.B) {
		analyzer, _ := labreport.New(
			labreport.WithQuietLogging(),
		)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = analyzer.Extract(ctx, report)
		}
	})

	// Benchmark with FastNormalizer
	b.Run("FastNormalizer", func(b *testing.B) {
		analyzer, _ := labreport.New(
			labreport.WithQuietLogging(),
			labreport.WithFastNormalizer(),
		)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = analyzer.Extract(ctx, report)
		}
	})

	// Benchmark with WarmUp
	b.Run("WithWarmUp", func(b *testing.B) {
		analyzer, _ := labreport.New(
			labreport.WithQuietLogging(),
			labreport.WithFastNormalizer(),
			labreport.WithWarmUp(true),
		)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = analyzer.Extract(ctx, report)
		}
	})

	// Benchmark different report sizes
	sizes := []struct {
		name  string
		lines int
	}{
		{"Small-5Lines", 5},
		{"Medium-50Lines", 50},
		{"Large-500Lines", 500},
	}

	for _, size := range sizes {
		text := warmup.GenerateSampleReport(size.lines)

		b.Run(size.name, func(b *testing.B) {
			analyzer, _ := labreport.New(
				labreport.WithQuietLogging(),
				labreport.WithFastNormalizer(),
			)
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = analyzer.Extract(ctx, text)
			}
		})
	}
}

// BenchmarkClassify benchmarks grading pre-extracted records
func BenchmarkClassify(b *testing.B) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analyzer, err := labreport.New(
		labreport.WithQuietLogging(),
	)
	if err != nil {
		b.Fatal(err)
	}

	age := 40
	patient := &labreport.Patient{Age: &age, Gender: labreport.GenderMale}

	counts := []struct {
		name string
		n    int
	}{
		{"10Records", 10},
		{"100Records", 100},
		{"1000Records", 1000},
	}

	for _, count := range counts {
		records := warmup.GenerateSampleRecords(count.n)

		b.Run(count.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = analyzer.Classify(ctx, records, nil)
			}
		})

		b.Run(count.name+"-Demographics", func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = analyzer.Classify(ctx, records, patient)
			}
		})
	}
}

// BenchmarkAnalyze benchmarks the full extract-classify-assess pipeline
func BenchmarkAnalyze(b *testing.B) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analyzer, err := labreport.New(
		labreport.WithQuietLogging(),
		labreport.WithFastNormalizer(),
	)
	if err != nil {
		b.Fatal(err)
	}

	sizes := []struct {
		name  string
		lines int
	}{
		{"Small-5Lines", 5},
		{"Medium-50Lines", 50},
		{"Large-500Lines", 500},
	}

	for _, size := range sizes {
		text := warmup.GenerateSampleReport(size.lines)

		b.Run(size.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = analyzer.Analyze(ctx, text, nil)
			}
		})
	}
}

// BenchmarkAnalyzeReader benchmarks the streaming path against the
// whole-text path on the same report
func BenchmarkAnalyzeReader(b *testing.B) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analyzer, err := labreport.New(
		labreport.WithQuietLogging(),
		labreport.WithFastNormalizer(),
	)
	if err != nil {
		b.Fatal(err)
	}

	text := warmup.GenerateSampleReport(500)

	b.Run("WholeText", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(text)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = analyzer.Analyze(ctx, text, nil)
		}
	})

	b.Run("Streaming", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(text)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_, _ = analyzer.AnalyzeReader(ctx, strings.NewReader(text), nil)
		}
	})
}

// BenchmarkRenderMarkdown benchmarks report rendering
func BenchmarkRenderMarkdown(b *testing.B) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analyzer, err := labreport.New(
		labreport.WithQuietLogging(),
	)
	if err != nil {
		b.Fatal(err)
	}

	report := analyzer.Analyze(ctx, warmup.GenerateSampleReport(50), nil)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = analyzer.RenderMarkdown(report)
	}
}
