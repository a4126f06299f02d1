package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Separator punctuation tolerated between the parts of an alias, so that
// "M.C.V" also matches "MCV" and "Platelet Count" also matches
// "Platelet-Count".
const sepClass = `[ \t.,\-/']*`

// compileTerms builds one case-insensitive, word-bounded pattern matching
// any of the given surface forms. Longer forms are placed first so the
// alternation prefers "LDL Cholesterol" over "LDL" at the same position.
func compileTerms(terms []string) (*regexp.Regexp, error) {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	alts := make([]string, 0, len(sorted))
	for _, term := range sorted {
		frag, err := termPattern(term)
		if err != nil {
			return nil, err
		}
		alts = append(alts, frag)
	}

	return regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// termPattern turns one alias into a regex fragment: runs of letters and
// digits are matched literally, separator punctuation between them loosely.
func termPattern(term string) (string, error) {
	var runs []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, regexp.QuoteMeta(cur.String()))
			cur.Reset()
		}
	}

	for _, r := range term {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case strings.ContainsRune(" \t.,-/'", r):
			flush()
		default:
			return "", fmt.Errorf("alias %q contains unsupported character %q", term, r)
		}
	}
	flush()

	if len(runs) == 0 {
		return "", fmt.Errorf("alias %q has no letters or digits", term)
	}
	return strings.Join(runs, sepClass), nil
}
