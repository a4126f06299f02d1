package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// 1,234 or 12,345,678.9: comma as thousands separator.
	thousandsRe = regexp.MustCompile(`^[+-]?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	// 12,5: comma as decimal separator.
	decimalCommaRe = regexp.MustCompile(`^[+-]?\d+,\d+$`)
	// Plain or scientific notation after comma normalization. Deliberately
	// narrower than strconv, which also accepts "Inf", "NaN" and hex floats.
	numberRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	// A value with a unit fused onto it, like "42%" or "11.0g/dL".
	fusedRe = regexp.MustCompile(`^([+-]?\d+(?:[.,]\d+)?)([%A-Za-zµμ][0-9A-Za-zµμ%^/.\-×]*)$`)
	// Shape of a plausible unit label.
	unitBodyRe = regexp.MustCompile(`^[0-9A-Za-zµμ%][0-9A-Za-zµμ%^/.\-×]*$`)
	// Characters unit labels carry that interval notes never do. A token of
	// digits and punctuation alone ("4.0-11.0", "120/80") is not a unit.
	unitMarkRe = regexp.MustCompile(`[A-Za-zµμ%^×]`)
)

const (
	leadingJunk  = "([:=<>~"
	trailingJunk = "),;:.!?]*"
	maxUnitLen   = 24
)

// cleanToken strips the punctuation that attaches to tokens in running
// text: a leading "(" or ":=", a trailing comma or sentence period. The
// sign of a negative value and any '%' survive.
func cleanToken(tok string) string {
	tok = strings.TrimLeft(tok, leadingJunk)
	return strings.TrimRight(tok, trailingJunk)
}

// parseNumber parses one cleaned token as a numeric value. Both comma
// conventions are accepted: "1,234.5" reads as thousands grouping, "12,5"
// as a decimal comma. Anything else with a comma, and any token strconv
// would stretch to accept (hex, Inf, NaN), is rejected.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	switch {
	case thousandsRe.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case decimalCommaRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}
	if !numberRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// splitValueUnit splits a token with a unit fused onto the value, like
// "42%" or "11.0g/dL". Called only after parseNumber has rejected the whole
// token, so scientific notation is never mistaken for a unit suffix.
func splitValueUnit(s string) (float64, string, bool) {
	m := fusedRe.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	v, ok := parseNumber(m[1])
	if !ok {
		return 0, "", false
	}
	return v, m[2], true
}

// unitSignal reports whether the token carries a character that only unit
// labels have in running text. Pure-letter words ("while", "fasting") carry
// none and are accepted as units only when they fold to the reference unit.
func unitSignal(s string) bool {
	return strings.ContainsAny(s, "/%^×µμ0123456789")
}

func plausibleUnit(s string) bool {
	if s == "" || len(s) > maxUnitLen {
		return false
	}
	if _, isNumber := parseNumber(s); isNumber {
		return false
	}
	return unitBodyRe.MatchString(s) && unitMarkRe.MatchString(s)
}

// nextToken returns the next whitespace-delimited token in text[from:until]
// and the offset just past it.
func nextToken(text string, from, until int) (string, int, bool) {
	if until > len(text) {
		until = len(text)
	}
	if from < 0 {
		from = 0
	}

	i := from
	for i < until {
		r, size := utf8.DecodeRuneInString(text[i:until])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	if i >= until {
		return "", until, false
	}

	start := i
	for i < until {
		r, size := utf8.DecodeRuneInString(text[i:until])
		if unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return text[start:i], i, true
}
