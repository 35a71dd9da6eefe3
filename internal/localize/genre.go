package localize

import (
	"strings"
	"unicode/utf8"

	"github.com/sekitap/kitaplik/internal/turkish"
)

const (
	// maxTags caps the number of genre tags in one record.
	maxTags = 5
	// maxTagLen is the length cap for a single tag; longer tags are noise
	// unless explicitly allowlisted.
	maxTagLen = 12
)

// Genres converts raw catalog genre labels into a space-joined, #-prefixed
// Turkish tag string. Format labels (audiobook and friends) are dropped,
// translations applied, overlong tags filtered, duplicates removed, and the
// result capped at five tags. Returns "" when nothing survives.
func Genres(labels []string) string {
	g, _ := tables()

	var tags []string
	for _, label := range labels {
		raw := strings.TrimSpace(label)
		if raw == "" {
			continue
		}

		if isBanned(raw, g.Banned) {
			continue
		}

		translated, ok := g.Translations[raw]
		if !ok {
			translated, ok = g.Translations[strings.ReplaceAll(raw, " ", "")]
		}
		if !ok {
			translated = raw
		}

		tag := strings.ReplaceAll(translated, " ", "")
		if utf8.RuneCountInString(tag) > maxTagLen && !isAllowedLong(tag, g.LongAllow) {
			continue
		}

		hashTag := "#" + tag
		if tag != "" && !contains(tags, hashTag) {
			tags = append(tags, hashTag)
		}
		if len(tags) >= maxTags {
			break
		}
	}

	return strings.Join(tags, " ")
}

func isBanned(label string, banned []string) bool {
	lower := turkish.Fold(label)
	for _, b := range banned {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}

// Allowlist entries are matched by containment, space-stripped and folded,
// so that the English source form ("historical fiction"), the Turkish tag it
// becomes ("TarihselKurgu") and compound variants carrying an allowlisted
// phrase all pass.
func isAllowedLong(tag string, allow []string) bool {
	folded := turkish.Fold(tag)
	for _, a := range allow {
		if strings.Contains(folded, turkish.Fold(strings.ReplaceAll(a, " ", ""))) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
