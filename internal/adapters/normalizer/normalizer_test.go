package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

func TestFoldingSemantics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Hemoglobin", "hemoglobin"},
		{"dots dropped", "M.C.H.C", "mchc"},
		{"mixed dots and case", "S.G.P.T (ALT)", "sgpt alt"},
		{"hyphen becomes space", "Non-HDL Cholesterol", "non hdl cholesterol"},
		{"whitespace collapsed", "  Total   Cholesterol ", "total cholesterol"},
		{"percent preserved", "HCT %", "hct %"},
		{"unit slash", "g/dL", "g dl"},
		{"unit caps", "MG/DL", "mg dl"},
		{"empty", "", ""},
		{"only punctuation", "-/:,", ""},
		{"digits kept", "10 3 uL", "10 3 ul"},
		{"unicode letters", "Glucosé", "glucosé"},
	}

	normalizers := map[string]ports.Normalizer{
		"default":   NewDefaultNormalizer(),
		"optimized": NewOptimizedNormalizer(),
		"fast":      NewFastNormalizer(),
	}

	for implName, norm := range normalizers {
		for _, tc := range tests {
			t.Run(implName+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, norm.Normalize(tc.input))
			})
		}
	}
}

func TestImplementationsAgree(t *testing.T) {
	inputs := []string{
		"WBC 12.5 10^3/uL, Hemoglobin 11.0 g/dL",
		"CBC: WBC 8.2, RBC 4.5, Hgb 14.2, Hct 42%, Platelets 250",
		"Alkaline Phosphatase (ALP)  44 IU/L",
		"×10³/μL",
	}

	def := NewDefaultNormalizer()
	opt := NewOptimizedNormalizer()
	fast := NewFastNormalizer()

	for _, in := range inputs {
		want := def.Normalize(in)
		assert.Equal(t, want, opt.Normalize(in), "optimized disagrees on %q", in)
		assert.Equal(t, want, fast.Normalize(in), "fast disagrees on %q", in)
	}
}

func TestFactoryCreatesRequestedType(t *testing.T) {
	factory := NewNormalizerFactory()

	assert.IsType(t, &DefaultNormalizer{}, factory.CreateNormalizer(DefaultNormalizerType))
	assert.IsType(t, &OptimizedNormalizer{}, factory.CreateNormalizer(OptimizedNormalizerType))
	assert.IsType(t, &FastNormalizer{}, factory.CreateNormalizer(FastNormalizerType))
}
