// Package textnorm turns raw, noisy book identifiers (file names, free-text
// queries) into canonical search strings and detects ISBN-shaped input.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/sekitap/kitaplik/internal/turkish"
)

// Query is the normalized form of one raw input, produced once per
// resolution call.
type Query struct {
	// Raw is the input exactly as received.
	Raw string

	// Canonical is the noise-stripped, locale-folded search string. Used
	// as the cache key. Empty when the input was pure noise.
	Canonical string

	// IsISBN reports whether the input was ISBN-shaped. ISBN queries skip
	// all further cleaning and bypass the cache.
	IsISBN bool

	// ISBNDigits holds the digit-only ISBN when IsISBN is true.
	ISBNDigits string
}

// NoiseWords are phrases stripped from queries as whole words, optionally
// followed by a trailing number (volume numbers attached to publisher
// names). Mostly Turkish publisher and collection boilerplate.
var NoiseWords = []string{
	"yayınları", "yayınevi", "yayıncılık", "yayın", "kitabevi", "kitaplığı",
	"can yayınları", "can yayın", "remzi kitabevi", "remzi yayınları",
	"bilgi yayınevi", "bilgi yayınları", "dost kitabevi", "dost yayınları",
	"iletişim yayınları", "metis yayınları", "doğan kitap", "yapı kredi",
	"yky yayınları", "yky", "timaş", "pegasus yayınları",
	"bütün eserleri", "toplu eserler", "seçme eserler", "tüm eserleri",
	"bütün öyküleri", "toplu öyküler", "toplu şiirler", "bütün şiirleri",
	"modern klasikler", "dünya klasikleri", "türk klasikleri",
	"bls", "pdf", "epub", "okunmadı", "tam metin", "cilt", "baskı",
}

var (
	nonDigitRe    = regexp.MustCompile(`[^\d]`)
	isbnShapeRe   = regexp.MustCompile(`(?i)^[\d\-\sX]+$`)
	yearRe        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	releaseTagRe  = regexp.MustCompile(`[\[({_\-\s]+(?:cs|ham|bls)(?:[\])}]|\b)`)
	parenGroupRe  = regexp.MustCompile(`\(.*?\)`)
	brackGroupRe  = regexp.MustCompile(`\[.*?\]`)
	kmSuffixRe    = regexp.MustCompile(`-km$`)
	noisePatterns = compileNoisePatterns(NoiseWords)
)

// RE2 has no Unicode-aware \b, so whole-word matching for Turkish phrases
// uses explicit space-or-edge anchors instead.
func compileNoisePatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		p := `(?:^|\s)` + regexp.QuoteMeta(w) + `(?:\s+\d+)?(?:$|\s)`
		patterns = append(patterns, regexp.MustCompile(p))
	}
	return patterns
}

// Normalize converts a raw identifier into a Query. It is total: any input,
// including pure noise, yields a Query (possibly with an empty Canonical).
//
// In manual mode (explicit link or ID given by the caller) the aggressive
// filename heuristics are skipped: extensions, year tokens and the
// hyphen-segment collapse stay untouched.
func Normalize(raw string, manual bool) Query {
	q := Query{Raw: raw}

	digits := nonDigitRe.ReplaceAllString(raw, "")
	if (len(digits) == 10 || len(digits) == 13) && isbnShapeRe.MatchString(strings.TrimSpace(raw)) {
		q.Canonical = digits
		q.IsISBN = true
		q.ISBNDigits = digits
		return q
	}

	s := turkish.Fold(raw)

	if !manual {
		s = strings.ReplaceAll(s, ".pdf", "")
		s = strings.ReplaceAll(s, ".epub", "")
	}

	s = kmSuffixRe.ReplaceAllString(s, "")
	s = releaseTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_okunmadı", "")
	s = strings.ReplaceAll(s, "_okunmadi", "")
	s = parenGroupRe.ReplaceAllString(s, "")
	s = brackGroupRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_", " ")

	if !manual {
		s = yearRe.ReplaceAllString(s, "")
	}

	for _, p := range noisePatterns {
		// The space-or-edge anchors consume the delimiter, so adjacent or
		// repeated phrases survive a single pass. Loop to a fixpoint.
		for {
			next := p.ReplaceAllString(s, " ")
			if next == s {
				break
			}
			s = next
		}
	}

	if !manual {
		// Filenames like "author - series 2 - title" carry the useful
		// parts at the edges; middle segments are series/volume noise.
		parts := strings.Split(s, "-")
		if len(parts) >= 3 {
			s = parts[0] + " " + parts[len(parts)-1]
		} else {
			s = strings.ReplaceAll(s, "-", " ")
		}
	} else {
		s = strings.ReplaceAll(s, "-", " ")
	}

	q.Canonical = strings.Join(strings.Fields(s), " ")
	return q
}
