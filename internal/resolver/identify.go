package resolver

import (
	"fmt"
	"regexp"
	"strings"
)

// Identification ladder helpers: turning links and product ids embedded in
// the incoming text into direct catalog URLs before any fuzzy search runs.

var (
	markdownLinkRe  = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	kitapyurduURLRe = regexp.MustCompile(`https?://(?:www\.)?kitapyurdu\.com/kitap/[^/\s)]+/\d+\.html`)
	generalURLRe    = regexp.MustCompile(`https?://[^\s)]+`)
	productIDRe     = regexp.MustCompile(`/kitap/[^/\s)]+/(\d+)\.html`)
)

// extractURL pulls the most specific URL out of free text: a markdown link
// target pointing at the primary catalog, then a bare catalog product URL,
// then any URL at all.
func extractURL(text string) string {
	if text == "" {
		return ""
	}
	if m := markdownLinkRe.FindStringSubmatch(text); m != nil {
		url := strings.TrimSpace(m[2])
		if strings.Contains(url, "kitapyurdu.com") {
			return url
		}
	}
	if m := kitapyurduURLRe.FindString(text); m != "" {
		return m
	}
	return generalURLRe.FindString(text)
}

// productID extracts the numeric product id from a catalog product URL,
// or "" when the URL does not carry one.
func productID(url string) string {
	if m := productIDRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// productURL builds a direct catalog URL from a bare product id.
func productURL(id string) string {
	return fmt.Sprintf("https://www.kitapyurdu.com/index.php?route=product/product&product_id=%s", id)
}

// containsURL reports whether text carries any URL at all.
func containsURL(text string) bool {
	return generalURLRe.MatchString(text)
}
