package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCascadeOrder(t *testing.T) {
	got := cascadeVariants("stephen king karanlığı seversin")

	want := []string{
		"stephen king karanlığı seversin",
		"stephen king",
		"stephen king karanlığı",
		"karanlığı seversin",
	}
	assert.Equal(t, want, got)
}

func TestCascadeParenContent(t *testing.T) {
	got := cascadeVariants("yüzüklerin efendisi (the lord of the rings)")

	// Canonical first, then the parenthetical title with 0-2 leading
	// tokens, then the parens-stripped form
	assert.Equal(t, "yüzüklerin efendisi (the lord of the rings)", got[0])
	assert.Equal(t, "the lord of the rings", got[1])
	assert.Equal(t, "yüzüklerin the lord of the rings", got[2])
	assert.Equal(t, "yüzüklerin efendisi the lord of the rings", got[3])
	assert.Equal(t, "yüzüklerin efendisi", got[4])
}

func TestCascadeDigitsRemoved(t *testing.T) {
	got := cascadeVariants("dune 2 frank herbert")

	assert.Contains(t, got, "dune frank herbert")
}

func TestCascadePunctuationRemoved(t *testing.T) {
	got := cascadeVariants("suç & ceza: dostoyevski")

	assert.Contains(t, got, "suç ceza dostoyevski")
}

func TestCascadeSkipsShortVariants(t *testing.T) {
	for _, v := range cascadeVariants("ab") {
		if len([]rune(v)) < minVariantLen {
			t.Errorf("variant %q shorter than the minimum", v)
		}
	}
	assert.Equal(t, 0, len(cascadeVariants("ab")))
}

func TestCascadeDeduplicates(t *testing.T) {
	got := cascadeVariants("dune frank")

	seen := map[string]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("duplicate variant %q", v)
		}
		seen[v] = true
	}
	// Two tokens: slices produce nothing new, everything else collapses
	// to the canonical form
	assert.Equal(t, []string{"dune frank"}, got)
}
