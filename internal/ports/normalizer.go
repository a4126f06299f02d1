package ports

// Normalizer defines the interface for folding test names and unit labels
// into a canonical lookup form.
type Normalizer interface {
	Normalize(text string) string
}
