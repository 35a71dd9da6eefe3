package textnorm

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sekitap/kitaplik/internal/turkish"
)

// Ratio computes a character-level sequence similarity in [0,1] between the
// locale-folded forms of a and b (Ratcliff/Obershelp, same measure as the
// validator thresholds are tuned against).
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	left := strings.Split(turkish.Fold(a), "")
	right := strings.Split(turkish.Fold(b), "")
	return difflib.NewMatcher(left, right).Ratio()
}

// TokenContainment returns |tokens(query) ∩ tokens(found)| / |tokens(query)|.
// Measures how much of the query survives in the candidate text, regardless
// of word order or extra words on the candidate side.
func TokenContainment(query, found string) float64 {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	foundSet := Tokenize(found)
	matched := 0
	for tok := range queryTokens {
		if _, ok := foundSet[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// Tokenize folds s and splits it on non-word boundaries into a set.
func Tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(turkish.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
