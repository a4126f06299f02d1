package normalizer

import (
	"unicode"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/pool"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

// Per-byte folding decisions for the ASCII fast path.
const (
	foldKeep byte = iota
	foldSpace
	foldLower
	foldDrop
)

// OptimizedNormalizer implements the folding strategy with buffer pooling
// and a precomputed ASCII decision table.
type OptimizedNormalizer struct {
	asciiTable [128]byte
	bytePool   *pool.BufferPool
}

// NewOptimizedNormalizer creates a new optimized normalizer.
func NewOptimizedNormalizer() ports.Normalizer {
	n := &OptimizedNormalizer{
		bytePool: pool.NewBufferPool(4096),
	}

	for i := 0; i < 128; i++ {
		r := rune(i)
		switch {
		case r == '.' || r == '\'':
			n.asciiTable[i] = foldDrop
		case unicode.IsUpper(r):
			n.asciiTable[i] = foldLower
		case unicode.IsLower(r) || unicode.IsDigit(r) || r == '%':
			n.asciiTable[i] = foldKeep
		default:
			n.asciiTable[i] = foldSpace
		}
	}

	return n
}

// Normalize folds text into its canonical lookup form. Semantics match
// DefaultNormalizer; only the allocation profile differs.
func (n *OptimizedNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}

	asciiOnly := true
	for i := 0; i < len(text); i++ {
		if text[i] >= 128 {
			asciiOnly = false
			break
		}
	}

	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	if cap(*buffer) < len(text) {
		*buffer = make([]byte, 0, len(text))
	}
	*buffer = (*buffer)[:0]

	pendingSpace := false

	if asciiOnly {
		for i := 0; i < len(text); i++ {
			b := text[i]
			switch n.asciiTable[b] {
			case foldKeep:
				if pendingSpace && len(*buffer) > 0 {
					*buffer = append(*buffer, ' ')
				}
				pendingSpace = false
				*buffer = append(*buffer, b)
			case foldLower:
				if pendingSpace && len(*buffer) > 0 {
					*buffer = append(*buffer, ' ')
				}
				pendingSpace = false
				*buffer = append(*buffer, b+('a'-'A'))
			case foldSpace:
				pendingSpace = true
			case foldDrop:
			}
		}
		return string(*buffer)
	}

	for _, r := range text {
		if r < 128 {
			switch n.asciiTable[r] {
			case foldKeep:
				if pendingSpace && len(*buffer) > 0 {
					*buffer = append(*buffer, ' ')
				}
				pendingSpace = false
				*buffer = append(*buffer, byte(r))
			case foldLower:
				if pendingSpace && len(*buffer) > 0 {
					*buffer = append(*buffer, ' ')
				}
				pendingSpace = false
				*buffer = append(*buffer, byte(r)+('a'-'A'))
			case foldSpace:
				pendingSpace = true
			case foldDrop:
			}
			continue
		}

		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && len(*buffer) > 0 {
				*buffer = append(*buffer, ' ')
			}
			pendingSpace = false
			lower := unicode.ToLower(r)
			*buffer = append(*buffer, []byte(string(lower))...)
		} else {
			pendingSpace = true
		}
	}

	return string(*buffer)
}

// FastNormalizer offers folding with precomputed per-rune decisions for
// ASCII and a pooled builder, optimized for mostly-ASCII report text.
type FastNormalizer struct {
	asciiTable [128]struct {
		action byte
		char   rune
	}
	builderPool *pool.StringBuilderPool
}

// NewFastNormalizer creates a new fast normalizer with precomputed tables.
func NewFastNormalizer() ports.Normalizer {
	n := &FastNormalizer{
		builderPool: pool.NewStringBuilderPool(),
	}

	for i := 0; i < 128; i++ {
		r := rune(i)
		entry := &n.asciiTable[i]
		switch {
		case r == '.' || r == '\'':
			entry.action = foldDrop
		case unicode.IsUpper(r):
			entry.action = foldLower
			entry.char = unicode.ToLower(r)
		case unicode.IsLower(r) || unicode.IsDigit(r) || r == '%':
			entry.action = foldKeep
			entry.char = r
		default:
			entry.action = foldSpace
		}
	}

	return n
}

// Normalize folds text into its canonical lookup form.
func (n *FastNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}

	sb := n.builderPool.Get()
	defer n.builderPool.Put(sb)

	pendingSpace := false
	for _, r := range text {
		if r < 128 {
			entry := n.asciiTable[r]
			switch entry.action {
			case foldKeep, foldLower:
				if pendingSpace && sb.Len() > 0 {
					sb.WriteRune(' ')
				}
				pendingSpace = false
				sb.WriteRune(entry.char)
			case foldSpace:
				pendingSpace = true
			case foldDrop:
			}
			continue
		}

		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
			}
			pendingSpace = false
			sb.WriteRune(unicode.ToLower(r))
		} else {
			pendingSpace = true
		}
	}

	return sb.String()
}

// NormalizerFactory creates the appropriate normalizer based on performance
// requirements.
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory.
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a folding implementation.
type NormalizerType int

const (
	// DefaultNormalizerType is the straightforward implementation.
	DefaultNormalizerType NormalizerType = iota
	// OptimizedNormalizerType uses buffer pooling and an ASCII table.
	OptimizedNormalizerType
	// FastNormalizerType uses precomputed tables and a pooled builder.
	FastNormalizerType
)

// CreateNormalizer creates a normalizer of the specified type.
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case OptimizedNormalizerType:
		return NewOptimizedNormalizer()
	case FastNormalizerType:
		return NewFastNormalizer()
	default:
		return NewDefaultNormalizer()
	}
}
