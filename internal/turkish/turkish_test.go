package turkish

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dotted capital folds to plain i", "İstanbul", "istanbul"},
		{"dotless capital folds to dotless i", "ISPARTA", "ısparta"},
		{"mixed", "KARANLIĞI Seversin", "karanlığı seversin"},
		{"ascii untouched", "Stephen King", "stephen king"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.input))
		})
	}
}

func TestTitleWords(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"iletişim yayınları", "İletişim Yayınları"},
		{"ışık doğudan gelir", "Işık Doğudan Gelir"},
		{"can dündar", "Can Dündar"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleWords(tt.input))
	}
}

func TestStripEditionNote(t *testing.T) {
	assert.Equal(t, "Dune", StripEditionNote("Dune (Karton Kapak)"))
	assert.Equal(t, "Körlük", StripEditionNote("Körlük (Ciltli)"))
	assert.Equal(t, "Saatleri Ayarlama Enstitüsü", StripEditionNote("Saatleri Ayarlama Enstitüsü"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n b\t  c "))
	assert.Equal(t, `"quoted"`, CleanText("&quot;quoted&quot;"))
}

func TestFindISBN(t *testing.T) {
	assert.Equal(t, "9789750719387", FindISBN("ISBN: 978-975-07-1938-7 baskı"))
	assert.Equal(t, "", FindISBN("no isbn here"))
}

func TestHasTurkishLetter(t *testing.T) {
	assert.True(t, HasTurkishLetter("Yüzüklerin Efendisi"))
	assert.False(t, HasTurkishLetter("The Lord of the Rings"))
}
