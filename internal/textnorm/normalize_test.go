package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISBNFastPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare isbn13", "9789750719387", "9789750719387"},
		{"hyphenated isbn13", "978-975-07-1938-7", "9789750719387"},
		{"isbn10", "9754700117", "9754700117"},
		{"spaced isbn", "978 9750 719 387", "9789750719387"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Normalize(tt.input, false)
			assert.True(t, q.IsISBN)
			assert.Equal(t, tt.want, q.ISBNDigits)
			assert.Equal(t, tt.want, q.Canonical)
		})
	}

	// 9 digits plus an X check digit projects to 9 digits, not 10
	q := Normalize("975-07-1938-X", false)
	assert.False(t, q.IsISBN)
}

func TestNormalizeNotISBNWhenTextPresent(t *testing.T) {
	// 13 digits buried in text must not trigger the fast path
	q := Normalize("dune 9789750719387 frank herbert", false)
	assert.False(t, q.IsISBN)
}

func TestNormalizeFilename(t *testing.T) {
	q := Normalize("Stephen_King_Karanlığı_Seversin_2019.epub", false)
	assert.False(t, q.IsISBN)
	assert.Equal(t, "stephen king karanlığı seversin", q.Canonical)
}

func TestNormalizeStripsAnnotations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bracket group", "Dune [Tam Sürüm] Frank Herbert", "dune frank herbert"},
		{"paren group", "Körlük (Jose Saramago) roman", "körlük roman"},
		{"release tag", "sefiller_ham.pdf", "sefiller"},
		{"unread marker", "ince_memed_okunmadı.epub", "ince memed"},
		{"km suffix", "tutunamayanlar-km", "tutunamayanlar"},
		{"year stripped", "Fahrenheit 451 Ray Bradbury 2021", "fahrenheit 451 ray bradbury"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input, false).Canonical)
		})
	}
}

func TestNormalizeNoiseWords(t *testing.T) {
	q := Normalize("suç ve ceza can yayınları 12", false)
	for _, w := range NoiseWords {
		assert.NotContains(t, " "+q.Canonical+" ", " "+w+" ")
	}
	assert.Equal(t, "suç ve ceza can", q.Canonical)
}

func TestNormalizeRepeatedNoisePhrases(t *testing.T) {
	// Adjacent occurrences share a delimiting space; all must go
	q := Normalize("dune cilt 1 cilt 2 frank herbert", false)
	assert.Equal(t, "dune frank herbert", q.Canonical)

	q = Normalize("pdf pdf", false)
	assert.Equal(t, "", q.Canonical)
}

func TestNormalizeHyphenCollapse(t *testing.T) {
	// 3+ hyphen segments: keep first and last
	q := Normalize("Sarah J. Maas - Cam Şato 2 - Karanlık Taç.epub", false)
	assert.Equal(t, "sarah j. maas karanlık taç", q.Canonical)

	// under 3 segments: hyphens become spaces
	q = Normalize("dune-mesih", false)
	assert.Equal(t, "dune mesih", q.Canonical)
}

func TestNormalizeManualMode(t *testing.T) {
	// Manual mode keeps extensions and years
	q := Normalize("rapor 2023.pdf", true)
	assert.Equal(t, "rapor 2023.pdf", q.Canonical)
}

func TestNormalizeTotalOnNoise(t *testing.T) {
	q := Normalize("yayınları epub", false)
	assert.Equal(t, "", q.Canonical)
	assert.False(t, q.IsISBN)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Stephen_King_Karanlığı_Seversin_2019.epub",
		"Sarah J. Maas - Cam Şato 2 - Karanlık Taç.epub",
		"suç ve ceza can yayınları",
		"Dune [Tam Sürüm] Frank Herbert",
		"dune cilt 1 cilt 2 frank herbert",
		"pdf pdf",
	}
	for _, in := range inputs {
		once := Normalize(in, false)
		twice := Normalize(once.Canonical, false)
		assert.Equal(t, once.Canonical, twice.Canonical, "input %q", in)
	}
}
