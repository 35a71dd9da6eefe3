package localize

import (
	"regexp"
	"strings"

	"github.com/sekitap/kitaplik/internal/turkish"
)

var (
	seriesIndexRe = regexp.MustCompile(`^(.+?)\s*#(\d+)$`)
	quoteStripper = strings.NewReplacer(`'`, "", `"`, "", "“", "", "”", "", "‘", "", "’", "")
	spaceRe       = regexp.MustCompile(`\s+`)
)

// SeriesLabel is a parsed "Name #N" series token.
type SeriesLabel struct {
	RawName string
	Index   string // "" when the label carries no position
}

// ParseSeries splits a series label into name and position.
func ParseSeries(label string) SeriesLabel {
	if m := seriesIndexRe.FindStringSubmatch(label); m != nil {
		return SeriesLabel{RawName: strings.TrimSpace(m[1]), Index: m[2]}
	}
	return SeriesLabel{RawName: strings.TrimSpace(label)}
}

// Series localizes a "Name #N" series label when a known translation
// exists, reattaching the position. Unknown series pass through unchanged.
func Series(label string) string {
	if label == "" {
		return label
	}
	_, s := tables()

	parsed := ParseSeries(label)
	translated, ok := s.Translations[normalizeSeriesName(parsed.RawName)]
	if !ok {
		return label
	}
	if parsed.Index != "" {
		return translated + " #" + parsed.Index
	}
	return translated
}

// PreferSeries arbitrates between the primary source's series label and a
// secondary candidate. A label containing Turkish letters is assumed to be
// already localized and wins; on a tie the primary label takes precedence.
// Empty strings mean "no label".
func PreferSeries(primary, secondary string) string {
	if primary == "" && secondary == "" {
		return ""
	}
	if primary == "" {
		return secondary
	}
	if secondary == "" {
		return primary
	}

	switch {
	case turkish.HasTurkishLetter(primary) && !turkish.HasTurkishLetter(secondary):
		return primary
	case turkish.HasTurkishLetter(secondary) && !turkish.HasTurkishLetter(primary):
		return secondary
	default:
		return primary
	}
}

// Series names are matched case-insensitively with quotes and extra
// whitespace stripped; shorthand like "lotr" resolves through the alias
// table first. Plain ASCII lowering is enough here: the lookup keys are
// English series names.
func normalizeSeriesName(name string) string {
	if name == "" {
		return ""
	}
	n := strings.ToLower(name)
	n = quoteStripper.Replace(n)
	n = strings.TrimSpace(spaceRe.ReplaceAllString(n, " "))

	_, s := tables()
	if alias, ok := s.Aliases[n]; ok {
		return alias
	}
	return n
}
