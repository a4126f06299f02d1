package normalizer

import (
	"strings"
	"unicode"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

// DefaultNormalizer implements the default name-folding strategy.
//
// Folding lowercases the input, deletes dots and apostrophes so dotted
// abbreviations collapse ("M.C.H.C" folds like "MCHC"), keeps letters,
// digits and '%', turns every other rune into a space, and collapses
// whitespace runs. "Non-HDL Cholesterol" and "non hdl  cholesterol" fold to
// the same key.
type DefaultNormalizer struct{}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{}
}

// Normalize folds text into its canonical lookup form.
func (n *DefaultNormalizer) Normalize(text string) string {
	var sb strings.Builder
	pendingSpace := false
	for _, r := range text {
		switch {
		case r == '.' || r == '\'':
			// Dropped so "M.C.V" and "MCV" share a key.
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%':
			if pendingSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
			}
			pendingSpace = false
			sb.WriteRune(unicode.ToLower(r))
		default:
			pendingSpace = true
		}
	}
	return sb.String()
}
