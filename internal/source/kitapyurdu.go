package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/turkish"
)

const kitapyurduBaseURL = "https://www.kitapyurdu.com"

// Kitapyurdu is the primary catalog adapter. It searches the site's
// product search, follows the first hit and scrapes the detail page.
type Kitapyurdu struct {
	fetcher *Fetcher
	baseURL string
}

// NewKitapyurdu creates the Kitapyurdu adapter.
func NewKitapyurdu(fetcher *Fetcher) *Kitapyurdu {
	return &Kitapyurdu{fetcher: fetcher, baseURL: kitapyurduBaseURL}
}

// Name returns the adapter's display label.
func (k *Kitapyurdu) Name() string { return "Kitapyurdu" }

// Search looks up a book by free-text query or direct product URL. ISBNs
// go through the same product search; the site indexes them.
func (k *Kitapyurdu) Search(ctx context.Context, req Request) (*book.Candidate, error) {
	pageURL := req.DirectURL
	if pageURL == "" {
		if req.Query == "" {
			return nil, nil
		}
		pageURL = fmt.Sprintf("%s/index.php?route=product/search&filter_name=%s",
			k.baseURL, url.QueryEscape(req.Query))
	}

	body, err := k.fetcher.Get(ctx, pageURL)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kitapyurdu fetch failed: %w", err)
	}

	doc, err := parseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("kitapyurdu parse failed: %w", err)
	}

	link := pageURL
	if req.DirectURL == "" {
		// The search result grid lists products under .product-cr
		hit := findByClass(doc, "", "product-cr")
		if hit == nil {
			return nil, nil
		}
		a := findFirst(hit, func(n *html.Node) bool { return n.Data == "a" && attrVal(n, "href") != "" })
		if a == nil {
			return nil, nil
		}
		link = attrVal(a, "href")
		if !strings.HasPrefix(link, "http") {
			link = k.baseURL + link
		}

		body, err = k.fetcher.Get(ctx, link)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("kitapyurdu detail fetch failed: %w", err)
		}
		doc, err = parseHTML(body)
		if err != nil {
			return nil, fmt.Errorf("kitapyurdu detail parse failed: %w", err)
		}
	}

	return k.parseDetail(doc, body, link), nil
}

func (k *Kitapyurdu) parseDetail(doc *html.Node, body []byte, link string) *book.Candidate {
	c := &book.Candidate{Link: book.String(link)}

	k.applyJSONLD(doc, c)
	k.applyMetaTags(doc, c)

	if !book.Has(c.Title) {
		if h1 := findByClass(doc, "h1", "pr_header__heading"); h1 != nil {
			c.Title = book.String(turkish.CleanText(textContent(h1)))
		}
	}
	if book.Has(c.Title) {
		c.Title = book.String(turkish.StripEditionNote(*c.Title))
	}

	if authors := k.collectAuthors(doc); len(authors) > 0 {
		c.Author = book.String(strings.Join(authors, ", "))
	}

	if desc := findByClass(doc, "", "info__text"); desc != nil {
		c.Description = book.String(turkish.CleanText(textContent(desc)))
	}

	if pub := findByClass(doc, "", "pr_producers__publisher"); pub != nil {
		if a := findByClass(pub, "", "pr_producers__link"); a != nil {
			c.Publisher = book.String(turkish.TitleWords(turkish.CleanText(textContent(a))))
		}
	}

	k.applyAttributeTable(doc, c)

	if !book.Has(c.ISBN) {
		if isbn := turkish.FindISBN(string(body)); isbn != "" {
			c.ISBN = book.String(isbn)
		}
	}

	if !book.Has(c.Title) {
		slog.Debug("Kitapyurdu page yielded no title", "url", link)
		return nil
	}
	return c
}

// applyJSONLD pulls the schema.org Book block the site embeds on every
// product page.
func (k *Kitapyurdu) applyJSONLD(doc *html.Node, c *book.Candidate) {
	for _, raw := range scriptsByType(doc, "application/ld+json") {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		if t := getStr(m, "@type"); !strings.EqualFold(t, "Book") && !strings.EqualFold(t, "Product") {
			continue
		}
		if name := getStr(m, "name"); name != "" && !book.Has(c.Title) {
			c.Title = book.String(turkish.CleanText(name))
		}
		if !book.Has(c.Author) {
			if names := jsonLDNames(m["author"]); len(names) > 0 {
				c.Author = book.String(strings.Join(names, ", "))
			}
		}
		if isbn := getStr(m, "isbn"); isbn != "" && !book.Has(c.ISBN) {
			c.ISBN = book.String(strings.ReplaceAll(isbn, "-", ""))
		}
		if pages, ok := getInt(m, "numberOfPages"); ok && pages > 0 && c.PageCount == nil {
			c.PageCount = book.Int(pages)
		}
		if pub := m["publisher"]; pub != nil && !book.Has(c.Publisher) {
			if names := jsonLDNames(pub); len(names) > 0 {
				c.Publisher = book.String(turkish.TitleWords(names[0]))
			}
		}
		if desc := getStr(m, "description"); desc != "" && !book.Has(c.Description) {
			c.Description = book.String(turkish.CleanText(desc))
		}
	}
}

// jsonLDNames extracts person/organization names from a JSON-LD value that
// may be a string, an object with a name, or a list of either.
func jsonLDNames(v any) []string {
	var out []string
	add := func(s string) {
		s = turkish.CleanText(s)
		if s == "" {
			return
		}
		for _, seen := range out {
			if seen == s {
				return
			}
		}
		out = append(out, s)
	}
	switch t := v.(type) {
	case string:
		add(t)
	case map[string]any:
		add(getStr(t, "name"))
	case []any:
		for _, item := range t {
			for _, name := range jsonLDNames(item) {
				add(name)
			}
		}
	}
	return out
}

func (k *Kitapyurdu) applyMetaTags(doc *html.Node, c *book.Candidate) {
	if !book.Has(c.Title) {
		if t := metaContent(doc, "og:title"); t != "" {
			c.Title = book.String(turkish.CleanText(t))
		}
	}
	if !book.Has(c.Description) {
		if d := metaContent(doc, "og:description"); d != "" {
			c.Description = book.String(turkish.CleanText(d))
		}
	}
}

// collectAuthors gathers author names from the producer spans and the
// attribute tables, skipping translator entries.
func (k *Kitapyurdu) collectAuthors(doc *html.Node) []string {
	var authors []string
	add := func(name string) {
		name = turkish.CleanText(name)
		if name == "" {
			return
		}
		for _, seen := range authors {
			if seen == name {
				return
			}
		}
		authors = append(authors, name)
	}

	for _, span := range findAllByClass(doc, "", "pr_producers__manufacturer") {
		role := "Yazar"
		if label := findByClass(span, "", "pr_producers__label"); label != nil {
			role = strings.TrimSpace(textContent(label))
		}
		if strings.Contains(role, "Çevir") {
			continue
		}
		for _, a := range findAllByClass(span, "", "pr_producers__link") {
			add(textContent(a))
		}
	}

	authorLabels := []string{"Yazar", "Derleyici", "Editör", "Hazırlayan"}
	for _, row := range findAll(doc, func(n *html.Node) bool { return n.Data == "tr" }) {
		cells := findAll(row, func(n *html.Node) bool { return n.Data == "td" })
		if len(cells) < 2 {
			continue
		}
		label := strings.TrimSpace(textContent(cells[0]))
		matched := false
		for _, want := range authorLabels {
			if strings.Contains(label, want) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		links := findAll(cells[1], func(n *html.Node) bool { return n.Data == "a" })
		if len(links) > 0 {
			for _, l := range links {
				add(textContent(l))
			}
		} else {
			add(textContent(cells[1]))
		}
	}
	return authors
}

// applyAttributeTable reads the product attributes table (page count,
// publication date, ISBN, translator, original title).
func (k *Kitapyurdu) applyAttributeTable(doc *html.Node, c *book.Candidate) {
	table := findByClass(doc, "", "attributes")
	if table == nil {
		return
	}
	for _, row := range findAll(table, func(n *html.Node) bool { return n.Data == "tr" }) {
		cells := findAll(row, func(n *html.Node) bool { return n.Data == "td" })
		if len(cells) != 2 {
			continue
		}
		key := strings.TrimSpace(textContent(cells[0]))
		val := turkish.CleanText(textContent(cells[1]))
		if val == "" {
			continue
		}

		switch {
		case strings.Contains(key, "Sayfa Sayısı"):
			if n, err := strconv.Atoi(val); err == nil {
				c.PageCount = book.Int(n)
			}
		case strings.Contains(key, "Yayın Tarihi"):
			c.PublishedDate = book.String(val)
		case strings.Contains(key, "ISBN"):
			c.ISBN = book.String(strings.ReplaceAll(val, "-", ""))
		case strings.Contains(key, "Çevirmen"):
			c.Translator = book.String(val)
		case strings.Contains(key, "Orijinal Adı"):
			c.OriginalTitle = book.String(val)
		}
	}
}
