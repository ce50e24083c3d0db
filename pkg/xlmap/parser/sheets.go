package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultSimilarityThreshold is the minimum score for a sheet suggestion.
const DefaultSimilarityThreshold = 0.6

// Match describes how a requested sheet name was resolved.
type Match string

const (
	// MatchExact is a case-sensitive hit.
	MatchExact Match = "exact"
	// MatchNormalized is a hit after folding case and whitespace.
	MatchNormalized Match = "normalized"
	// MatchNone means the sheet is missing.
	MatchNone Match = "none"
)

// Resolution is the decision of ResolveSheet.
type Resolution struct {
	// Sheet is the resolved sheet name; empty when Match is MatchNone.
	Sheet string
	// Match is how the name was found.
	Match Match
	// Suggestion is the closest available name for a missing sheet, if any
	// cleared the threshold.
	Suggestion string
	// Score is the similarity of Suggestion (1 for found sheets).
	Score float64
}

// Found reports whether the sheet exists.
func (r Resolution) Found() bool {
	return r.Match != MatchNone
}

// ResolveSheet finds requested among available using the default threshold.
func ResolveSheet(requested string, available []string) Resolution {
	return ResolveSheetWithThreshold(requested, available, DefaultSimilarityThreshold)
}

// ResolveSheetWithThreshold tries an exact match, then a case and whitespace
// insensitive match. For a missing sheet, the first name that contains the
// requested one or is contained by it is suggested; otherwise every name is
// scored and the closest one above threshold wins. Ties go to the first name
// in workbook order.
func ResolveSheetWithThreshold(requested string, available []string, threshold float64) Resolution {
	for _, name := range available {
		if name == requested {
			return Resolution{Sheet: name, Match: MatchExact, Score: 1}
		}
	}

	want := normalizeSheetName(requested)
	for _, name := range available {
		if normalizeSheetName(name) == want {
			return Resolution{Sheet: name, Match: MatchNormalized, Score: 1}
		}
	}

	if want != "" {
		for _, name := range available {
			have := normalizeSheetName(name)
			if have != "" && (strings.Contains(have, want) || strings.Contains(want, have)) {
				return Resolution{Match: MatchNone, Suggestion: name, Score: SheetSimilarity(requested, name)}
			}
		}
	}

	res := Resolution{Match: MatchNone}
	best := -1.0
	for _, name := range available {
		score := SheetSimilarity(requested, name)
		if score > best {
			best = score
			res.Suggestion = name
			res.Score = score
		}
	}
	if best < threshold {
		res.Suggestion = ""
		res.Score = 0
	}
	return res
}

// SheetSimilarity scores two sheet names in [0, 1]. It is the larger of the
// normalized Levenshtein ratio and the word-token Jaccard overlap.
func SheetSimilarity(a, b string) float64 {
	a, b = normalizeSheetName(a), normalizeSheetName(b)
	if a == b {
		return 1
	}

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	ratio := 0.0
	if longest > 0 {
		ratio = 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
	}

	if j := tokenOverlap(a, b); j > ratio {
		return j
	}
	return ratio
}

func tokenOverlap(a, b string) float64 {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = false
	}
	union := len(set)
	inter := 0
	for _, t := range tb {
		seen, ok := set[t]
		switch {
		case !ok:
			set[t] = true
			union++
		case !seen:
			set[t] = true
			inter++
		}
	}
	return float64(inter) / float64(union)
}

func normalizeSheetName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
