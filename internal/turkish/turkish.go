// Package turkish provides Turkish-locale text helpers used throughout the
// resolution pipeline. Turkish has a dotless I: upper 'I' lowers to 'ı' and
// 'İ' lowers to 'i', which the default Unicode case mapping gets wrong.
package turkish

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	editionNoteRe = regexp.MustCompile(`(?i)\s*\((?:Karton Kapak|Ciltli|İnce Kapak|Cep Boy)\)`)
	isbnRe        = regexp.MustCompile(`978[\d-]{10,14}`)
)

// Fold lower-cases s using the Turkish alphabet (I→ı, İ→i).
func Fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Lower(language.Turkish).String(s)
}

// UpperFirst upper-cases the first rune of a word with Turkish mapping
// (i→İ, ı→I) and leaves the rest untouched.
func UpperFirst(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(word)
	head := cases.Upper(language.Turkish).String(string(runes[0]))
	return head + string(runes[1:])
}

// TitleWords folds s and then upper-cases the first letter of every word.
// Used for display values (author names, publisher names).
func TitleWords(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Fields(Fold(s))
	for i, w := range words {
		words[i] = UpperFirst(w)
	}
	return strings.Join(words, " ")
}

// CleanText unescapes HTML entities and collapses runs of whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripEditionNote removes parenthesized binding/format notes that catalog
// sites append to titles ("(Karton Kapak)", "(Ciltli)", ...).
func StripEditionNote(title string) string {
	if title == "" {
		return ""
	}
	return strings.TrimSpace(editionNoteRe.ReplaceAllString(title, ""))
}

// DisplayTitle cleans a scraped title for presentation: entity unescape,
// edition-note strip, Turkish title casing.
func DisplayTitle(s string) string {
	if s == "" {
		return ""
	}
	return TitleWords(StripEditionNote(CleanText(s)))
}

// FindISBN scans free text for an ISBN-13 with the 978 bookland prefix and
// returns its digits, or "" when none is present.
func FindISBN(text string) string {
	m := isbnRe.FindString(text)
	if m == "" {
		return ""
	}
	return strings.NewReplacer("-", "", " ", "").Replace(m)
}

// HasTurkishLetter reports whether s contains any letter specific to the
// Turkish alphabet. A cheap signal that a string is already localized.
func HasTurkishLetter(s string) bool {
	return strings.ContainsAny(s, "çğıöşüÇĞİÖŞÜ")
}
