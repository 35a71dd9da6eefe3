package localize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestGenresTranslation(t *testing.T) {
	got := Genres([]string{"Fantasy", "Horror"})
	assert.Equal(t, "#Fantastik #Korku", got)
}

func TestGenresSpacelessLookup(t *testing.T) {
	// "Science Fiction" matches directly, "ScienceFiction" via the
	// space-stripped key
	assert.Equal(t, "#BilimKurgu", Genres([]string{"Science Fiction"}))
	assert.Equal(t, "#BilimKurgu", Genres([]string{"ScienceFiction"}))
}

func TestGenresBannedLabels(t *testing.T) {
	got := Genres([]string{"Audiobook", "Audible Originals", "Fiction"})
	assert.Equal(t, "#Kurmaca", got)
}

func TestGenresLengthCapWithAllowlist(t *testing.T) {
	// Untranslated overlong label is dropped
	assert.Equal(t, "", Genres([]string{"SomeVeryLongGenreName"}))

	// TarihselKurgu is 13 runes but allowlisted
	assert.Equal(t, "#TarihselKurgu", Genres([]string{"Historical Fiction"}))

	// BüyülüGerçeklik is 15 runes but allowlisted
	assert.Equal(t, "#BüyülüGerçeklik", Genres([]string{"MagicalRealism"}))

	// Containment: a compound tag carrying an allowlisted phrase passes too
	assert.Equal(t, "#ScienceFictionFantasy", Genres([]string{"ScienceFictionFantasy"}))
}

func TestGenresCapAndDedup(t *testing.T) {
	labels := []string{
		"Fantasy", "Fantasy", "Horror", "Mystery", "Thriller", "Crime", "History", "Art",
	}
	got := Genres(labels)
	tags := strings.Fields(got)
	assert.Len(t, tags, 5)

	seen := map[string]bool{}
	for _, tag := range tags {
		assert.True(t, strings.HasPrefix(tag, "#"))
		assert.False(t, seen[tag], "duplicate tag %s", tag)
		seen[tag] = true
	}
}

func TestGenresNeverExceedsLimits(t *testing.T) {
	labels := []string{
		"Fantasy", "SpaceOpera", "Politics", "Psychology", "Classics",
		"Adventure", "Poetry", "Philosophy", "Biography", "Economics",
	}
	got := Genres(labels)
	tags := strings.Fields(got)
	assert.LessOrEqual(t, len(tags), 5)
	for _, tag := range tags {
		bare := strings.TrimPrefix(tag, "#")
		if utf8.RuneCountInString(bare) > 12 {
			assert.True(t, isAllowedLong(bare, mustGenreTables(t).LongAllow),
				"overlong tag %q not allowlisted", bare)
		}
	}
}

func TestGenresEmptyInput(t *testing.T) {
	assert.Equal(t, "", Genres(nil))
	assert.Equal(t, "", Genres([]string{"", "  "}))
}

func mustGenreTables(t *testing.T) genreTables {
	t.Helper()
	g, _ := tables()
	return g
}
