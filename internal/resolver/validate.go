package resolver

import (
	"regexp"
	"strings"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/textnorm"
	"github.com/sekitap/kitaplik/internal/turkish"
)

var digitsOnlyRe = regexp.MustCompile(`\D`)

// Validator decides whether a candidate returned by the primary catalog is
// actually the book the query asked for. Tuned for high recall: the
// upstream search returns a single top hit, so a borderline accept beats a
// certain miss.
type Validator struct {
	// SimilarityThreshold is the minimum character-level ratio.
	SimilarityThreshold float64

	// TokenMatchThreshold is the minimum token-containment ratio.
	TokenMatchThreshold float64
}

// Accept reports whether candidate matches query.
//
// ISBN queries compare digits exactly. Manual mode (explicit link) always
// accepts. Otherwise a candidate needs a title, and passes on substring
// containment in either direction, or on either fuzzy score clearing its
// threshold.
func (v Validator) Accept(candidate *book.Candidate, query textnorm.Query, manual bool) bool {
	if candidate == nil {
		return false
	}

	if query.IsISBN {
		if book.Has(candidate.ISBN) {
			return digitsOnlyRe.ReplaceAllString(*candidate.ISBN, "") == query.ISBNDigits
		}
		// No ISBN on the candidate page: only a pinned link is evidence
		// enough.
		return manual
	}

	if manual {
		return true
	}

	if !book.Has(candidate.Title) {
		return false
	}

	target := turkish.Fold(strings.TrimSpace(
		book.Value(candidate.Title) + " " + book.Value(candidate.Author)))
	folded := turkish.Fold(query.Canonical)

	if folded == "" || target == "" {
		return false
	}
	if strings.Contains(target, folded) || strings.Contains(folded, target) {
		return true
	}

	if textnorm.Ratio(folded, target) >= v.SimilarityThreshold {
		return true
	}
	return textnorm.TokenContainment(folded, target) >= v.TokenMatchThreshold
}
