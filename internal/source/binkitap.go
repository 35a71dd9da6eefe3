package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/turkish"
)

const binkitapBaseURL = "https://1000kitap.com"

var (
	// Detail pages live at /kitap/<slug>--<id>
	binkitapBookLinkRe = regexp.MustCompile(`/kitap/[\w-]+--\d+$`)

	// Original titles sometimes carry a trailing "(Series #N)" note
	trailingSeriesRe = regexp.MustCompile(`\s*\(([^)]+#\d+)\)\s*$`)
)

// BinKitap is a secondary adapter for 1000kitap.com, consulted mainly for
// original titles, translators and series data on Turkish editions. The
// site is a Next.js app; book data sits in the __NEXT_DATA__ blob in one
// of two shapes depending on the deployment.
type BinKitap struct {
	fetcher *Fetcher
	baseURL string
}

// NewBinKitap creates the 1000Kitap adapter.
func NewBinKitap(fetcher *Fetcher) *BinKitap {
	return &BinKitap{fetcher: fetcher, baseURL: binkitapBaseURL}
}

// Name returns the adapter's display label.
func (b *BinKitap) Name() string { return "1000Kitap" }

// Search looks up a book by free-text query or direct URL. The site has no
// ISBN endpoint; ISBN queries go through regular search.
func (b *BinKitap) Search(ctx context.Context, req Request) (*book.Candidate, error) {
	pageURL := req.DirectURL
	if pageURL == "" {
		if req.Query == "" {
			return nil, nil
		}
		pageURL = fmt.Sprintf("%s/ara?q=%s&bolum=kitaplar", b.baseURL, url.QueryEscape(req.Query))
	}

	body, err := b.fetcher.Get(ctx, pageURL)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("1000kitap fetch failed: %w", err)
	}

	doc, err := parseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("1000kitap parse failed: %w", err)
	}

	link := pageURL
	if req.DirectURL == "" {
		a := findFirst(doc, func(n *html.Node) bool {
			return n.Data == "a" && binkitapBookLinkRe.MatchString(attrVal(n, "href"))
		})
		if a == nil {
			// Search may have redirected straight to a detail page
			if scriptByID(doc, "__NEXT_DATA__") == "" {
				return nil, nil
			}
		} else {
			link = attrVal(a, "href")
			if !strings.HasPrefix(link, "http") {
				link = b.baseURL + link
			}

			body, err = b.fetcher.Get(ctx, link)
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, fmt.Errorf("1000kitap detail fetch failed: %w", err)
			}
			doc, err = parseHTML(body)
			if err != nil {
				return nil, fmt.Errorf("1000kitap detail parse failed: %w", err)
			}
		}
	}

	return b.parseDetail(doc, link), nil
}

func (b *BinKitap) parseDetail(doc *html.Node, link string) *book.Candidate {
	raw := scriptByID(doc, "__NEXT_DATA__")
	if raw == "" {
		slog.Debug("1000Kitap page has no next-data script", "url", link)
		return nil
	}

	var next struct {
		Props struct {
			PageProps map[string]any `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &next); err != nil {
		slog.Debug("1000Kitap next-data parse failed", "error", err)
		return nil
	}
	props := next.Props.PageProps

	c := &book.Candidate{Link: book.String(link)}

	if kitap := getMap(props, "book"); kitap != nil {
		b.parseNewFormat(kitap, c)
	} else if sonuc := getMap(getMap(props, "response"), "_sonuc"); getMap(sonuc, "kitap") != nil {
		b.parseOldFormat(sonuc, c)
	} else {
		return nil
	}

	if !book.Has(c.Title) {
		return nil
	}
	return c
}

// splitTrailingSeries separates a "(Series #N)" suffix from a title.
func splitTrailingSeries(text string) (clean, series string) {
	m := trailingSeriesRe.FindStringSubmatch(text)
	if m == nil {
		return text, ""
	}
	return strings.TrimSpace(trailingSeriesRe.ReplaceAllString(text, "")), strings.TrimSpace(m[1])
}

// normalizeRate converts a raw rating to the 5-point scale the rest of the
// pipeline uses; the site reports some books on a 10-point scale.
func normalizeRate(rate float64) float64 {
	if rate > 5 {
		return rate / 2
	}
	return rate
}

func joinNames(items []any, key string) string {
	var names []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := turkish.CleanText(getStr(m, key))
		if name == "" {
			continue
		}
		dup := false
		for _, seen := range names {
			if seen == name {
				dup = true
				break
			}
		}
		if !dup {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// parseNewFormat reads the props.pageProps.book shape.
func (b *BinKitap) parseNewFormat(kitap map[string]any, c *book.Candidate) {
	if name := turkish.CleanText(getStr(kitap, "name")); name != "" {
		c.Title = book.String(name)
	}
	if authors := joinNames(getSlice(kitap, "yazarlar"), "name"); authors != "" {
		c.Author = book.String(authors)
	}
	if translators := joinNames(getSlice(kitap, "cevirmenler"), "name"); translators != "" {
		c.Translator = book.String(translators)
	}

	edition := getMap(kitap, "baskiBilgileri")
	if edition != nil {
		if orig := turkish.CleanText(getStr(edition, "orijinalAdi")); orig != "" {
			clean, series := splitTrailingSeries(orig)
			if clean != "" && clean != book.Value(c.Title) {
				c.OriginalTitle = book.String(clean)
			}
			if series != "" && !book.Has(c.Series) {
				c.Series = book.String(series)
			}
		}
		if name := turkish.CleanText(getStr(edition, "seriAdi")); name != "" && !book.Has(c.Series) {
			if no := getStr(edition, "seriNo"); no != "" {
				c.Series = book.String(fmt.Sprintf("%s #%s", name, no))
			} else {
				c.Series = book.String(name)
			}
		}
		if pub := turkish.CleanText(getStr(edition, "yayinEvi")); pub != "" {
			c.Publisher = book.String(turkish.TitleWords(pub))
		}
		if pages, ok := getInt(edition, "sayfaSayisi"); ok && pages > 0 {
			c.PageCount = book.Int(pages)
		}
		if isbn := getStr(edition, "isbn"); isbn != "" {
			c.ISBN = book.String(strings.ReplaceAll(isbn, "-", ""))
		}
		if date := getStr(edition, "basimTarihi"); date != "" {
			c.PublishedDate = book.String(date)
		} else if year := getStr(edition, "baskiYili"); year != "" {
			c.PublishedDate = book.String(year)
		}
	}

	if rate, ok := getFloat(kitap, "rate"); ok && rate > 0 {
		c.Rating = book.Float(normalizeRate(rate))
	}
	if count, ok := getInt(kitap, "rateCount"); ok && count > 0 {
		c.RatingCount = book.Int(count)
	}
	if desc := turkish.CleanText(getStr(kitap, "excerpt")); desc != "" {
		c.Description = book.String(desc)
	}
}

// parseOldFormat reads the props.pageProps.response._sonuc shape.
func (b *BinKitap) parseOldFormat(sonuc map[string]any, c *book.Candidate) {
	kitap := getMap(sonuc, "kitap")

	if name := turkish.CleanText(getStr(kitap, "adi")); name != "" {
		c.Title = book.String(name)
	}
	if isbn := getStr(kitap, "isbn"); isbn != "" {
		c.ISBN = book.String(strings.ReplaceAll(isbn, "-", ""))
	}

	var authors, translators []string
	for _, item := range getSlice(kitap, "yazarlar") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := turkish.CleanText(getStr(m, "adi"))
		if name == "" {
			continue
		}
		if strings.Contains(turkish.Fold(getStr(m, "kitapYazarTurBaslik")), "çevirmen") {
			translators = append(translators, name)
		} else {
			authors = append(authors, name)
		}
	}
	if len(authors) > 0 {
		c.Author = book.String(strings.Join(authors, ", "))
	}
	if len(translators) > 0 {
		c.Translator = book.String(strings.Join(translators, ", "))
	}

	if name := turkish.CleanText(getStr(kitap, "seriAdi")); name != "" {
		if no := getStr(kitap, "seriNo"); no != "" {
			c.Series = book.String(fmt.Sprintf("%s #%s", name, no))
		} else {
			c.Series = book.String(name)
		}
	}

	if count, ok := getInt(kitap, "oySayisi"); ok && count > 0 {
		c.RatingCount = book.Int(count)
		if rate, ok := getFloat(kitap, "puan"); ok && rate > 0 {
			c.Rating = book.Float(normalizeRate(rate))
		}
	}

	// The "about" post carries the description and edition details
	for _, item := range getSlice(sonuc, "gonderiler") {
		post, ok := item.(map[string]any)
		if !ok || getStr(post, "renderTuru") != "kitapHakkinda" {
			continue
		}

		info := getStr(post, "bilgi")
		if len(info) < 5 {
			var parts []string
			for _, p := range getSlice(getMap(post, "bilgiParse"), "parse") {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			info = strings.Join(parts, "\n\n")
		}
		if info != "" {
			c.Description = book.String(turkish.CleanText(info))
		}

		about := getMap(post, "hakkinda")
		edition := getMap(about, "baskiBilgileri")
		if edition != nil {
			if pub := turkish.CleanText(getStr(edition, "yayinevi")); pub != "" {
				c.Publisher = book.String(turkish.TitleWords(pub))
			}
			if pages, ok := getInt(edition, "sayfaSayisi"); ok && pages > 0 {
				c.PageCount = book.Int(pages)
			}
			if date := getStr(edition, "baskiYazi"); date != "" {
				c.PublishedDate = book.String(turkish.CleanText(date))
			} else if year := getStr(edition, "baskiYili"); year != "" {
				c.PublishedDate = book.String(year)
			}
			if orig := turkish.CleanText(getStr(edition, "orijinalAdi")); orig != "" {
				clean, series := splitTrailingSeries(orig)
				if clean != "" && clean != book.Value(c.Title) {
					c.OriginalTitle = book.String(clean)
				}
				if series != "" && !book.Has(c.Series) {
					c.Series = book.String(series)
				}
			}
		}

		var genres []string
		for _, k := range getSlice(about, "kidDizi") {
			if m, ok := k.(map[string]any); ok {
				if name := turkish.CleanText(getStr(m, "adi")); name != "" {
					genres = append(genres, name)
				}
			}
		}
		if len(genres) > 0 {
			c.Genres = genres
		}
		break
	}
}
