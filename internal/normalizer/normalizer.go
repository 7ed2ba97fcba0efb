// Package normalizer implements the title-comparison rules shared by the
// Scanner's album grouping and the Discography Service's owned/expected
// matching. All functions are pure.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var editionNoiseTokens = []string{
	"deluxe", "remaster", "remastered", "anniversary", "expanded",
	"special edition", "bonus track", "bonus tracks", "edition",
}

var (
	yearParenRe  = regexp.MustCompile(`\s*[\(\[]\s*(\d{4})\s*[\)\]]\s*$`)
	yearDashRe   = regexp.MustCompile(`\s*[-\x{2013}\x{2014}]\s*(\d{4})\s*$`)
	yearBareRe   = regexp.MustCompile(`^(.*\S)\s+(\d{4})$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

var bareYearExclusions = map[string]bool{
	"live": true,
	"the":  true,
}

// nfkdStripMarks removes combining marks after NFKD decomposition.
var nfkdStripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeTitle projects a title to its canonical comparison form.
//
// Order matters: trailing-year stripping runs on the raw string before any
// other transform, per the rule that "Waiting (1998)" and "Waiting 1998"
// collapse to the same value as plain "Waiting".
func NormalizeTitle(s string) string {
	s = StripTrailingYearSuffix(s)

	decomposed, _, err := transform.String(nfkdStripMarks, s)
	if err == nil {
		s = decomposed
	}

	s = strings.ReplaceAll(s, "‘", "'")
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "“", "\"")
	s = strings.ReplaceAll(s, "”", "\"")

	s = strings.ToLower(s)

	s = strings.ReplaceAll(s, "+", " and ")
	s = strings.ReplaceAll(s, "&", " and ")

	s = replacePunctuationWithSpace(s)

	for _, tok := range editionNoiseTokens {
		s = replaceWholeWord(s, tok, " ")
	}

	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// replacePunctuationWithSpace replaces every Unicode punctuation/symbol rune
// with a single space, leaving letters, digits, and whitespace untouched.
func replacePunctuationWithSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func replaceWholeWord(s, word, repl string) string {
	pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
	re := regexp.MustCompile(pattern)
	return re.ReplaceAllString(s, repl)
}

// StripTrailingYearSuffix removes a trailing " (YYYY)", " [YYYY]", " - YYYY",
// or bare trailing " YYYY" (1900-2099) from s. The bare-trailing form is only
// removed when the remaining prefix, after normalization, is non-empty and
// not in the conservative exclusion set {"live", "the"}.
func StripTrailingYearSuffix(s string) string {
	if m := yearParenRe.FindStringSubmatchIndex(s); m != nil {
		if yearInRange(s[m[2]:m[3]]) {
			return strings.TrimRight(s[:m[0]], " ")
		}
	}
	if m := yearDashRe.FindStringSubmatchIndex(s); m != nil {
		if yearInRange(s[m[2]:m[3]]) {
			return strings.TrimRight(s[:m[0]], " ")
		}
	}
	if m := yearBareRe.FindStringSubmatch(s); m != nil {
		prefix, year := m[1], m[2]
		if yearInRange(year) {
			normalizedPrefix := strings.ToLower(strings.TrimSpace(prefix))
			if normalizedPrefix != "" && !bareYearExclusions[normalizedPrefix] {
				return prefix
			}
		}
	}
	return s
}

func yearInRange(year string) bool {
	if len(year) != 4 {
		return false
	}
	n := 0
	for _, r := range year {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return n >= 1900 && n <= 2099
}

// IsStrongTitleAliasMatch reports whether a and b should be treated as the
// same album title beyond plain equality: true when equal, or when one
// fully contains the other and their space-tokenized sets overlap by at
// least minOverlap, with the smaller set having at least 3 tokens.
func IsStrongTitleAliasMatch(a, b string, minOverlap float64) bool {
	if a == b {
		return true
	}
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return false
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)

	smaller, larger := tokensA, tokensB
	if len(tokensB) < len(tokensA) {
		smaller, larger = tokensB, tokensA
	}
	if len(smaller) < 3 {
		return false
	}

	largerSet := make(map[string]bool, len(larger))
	for _, t := range larger {
		largerSet[t] = true
	}

	overlap := 0
	for _, t := range smaller {
		if largerSet[t] {
			overlap++
		}
	}

	return float64(overlap)/float64(len(smaller)) >= minOverlap
}
