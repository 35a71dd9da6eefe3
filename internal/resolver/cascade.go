package resolver

import (
	"regexp"
	"strings"
)

// The cascade is a data-driven list of rewrites applied to the canonical
// query. Each strategy may emit zero or more variants; the orchestrator
// tries them in order, deduplicated, until one yields a validated
// candidate. Adding a step is a list edit, not new control flow.

const minVariantLen = 3

var (
	firstParenRe  = regexp.MustCompile(`\(([^)]+)\)`)
	allParensRe   = regexp.MustCompile(`\([^)]*\)`)
	digitTokenRe  = regexp.MustCompile(`(?:^|\s)\d+(?:$|\s)`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

type cascadeStrategy struct {
	name  string
	apply func(canonical string) []string
}

var cascadeStrategies = []cascadeStrategy{
	{"canonical", func(q string) []string {
		return []string{q}
	}},

	// Parenthetical content often holds the real title when the query is
	// "LocalTitle (OriginalTitle)"; the leading tokens are usually the
	// author.
	{"paren content", func(q string) []string {
		m := firstParenRe.FindStringSubmatch(q)
		if m == nil {
			return nil
		}
		inner := strings.TrimSpace(m[1])
		if inner == "" {
			return nil
		}
		tokens := strings.Fields(allParensRe.ReplaceAllString(q, ""))
		out := []string{inner}
		if len(tokens) >= 1 {
			out = append(out, tokens[0]+" "+inner)
		}
		if len(tokens) >= 2 {
			out = append(out, tokens[0]+" "+tokens[1]+" "+inner)
		}
		return out
	}},

	{"parens removed", func(q string) []string {
		return []string{collapse(allParensRe.ReplaceAllString(q, " "))}
	}},

	{"digits removed", func(q string) []string {
		s := q
		for digitTokenRe.MatchString(s) {
			s = digitTokenRe.ReplaceAllString(s, " ")
		}
		return []string{collapse(s)}
	}},

	{"punctuation removed", func(q string) []string {
		return []string{collapse(punctuationRe.ReplaceAllString(q, " "))}
	}},

	{"token slices", func(q string) []string {
		tokens := strings.Fields(q)
		var out []string
		if len(tokens) > 2 {
			out = append(out, strings.Join(tokens[:2], " "))
		}
		if len(tokens) > 3 {
			out = append(out, strings.Join(tokens[:3], " "))
		}
		if len(tokens) > 2 {
			out = append(out, strings.Join(tokens[len(tokens)-2:], " "))
		}
		return out
	}},
}

// cascadeVariants expands the canonical query into the ordered, deduplicated
// variant list. Variants shorter than 3 characters are dropped.
func cascadeVariants(canonical string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range cascadeStrategies {
		for _, v := range s.apply(canonical) {
			v = collapse(v)
			if len([]rune(v)) < minVariantLen {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
