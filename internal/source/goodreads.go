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
	"time"

	"golang.org/x/net/html"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/turkish"
)

const goodreadsBaseURL = "https://www.goodreads.com"

var nonDigitRe = regexp.MustCompile(`\D`)

// Turkish month names for formatting publication timestamps.
var turkishMonths = []string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// Goodreads is a secondary adapter used to fill genres, ratings, original
// titles and series data. It reads the Apollo state JSON Goodreads embeds
// in its Next.js pages.
type Goodreads struct {
	fetcher *Fetcher
	baseURL string
}

// NewGoodreads creates the Goodreads adapter.
func NewGoodreads(fetcher *Fetcher) *Goodreads {
	return &Goodreads{fetcher: fetcher, baseURL: goodreadsBaseURL}
}

// Name returns the adapter's display label.
func (g *Goodreads) Name() string { return "Goodreads" }

// Search looks up a book by ISBN (dedicated endpoint), free-text query or
// direct URL.
func (g *Goodreads) Search(ctx context.Context, req Request) (*book.Candidate, error) {
	var pageURL string
	switch {
	case req.DirectURL != "":
		pageURL = req.DirectURL
	case req.ISBNSearch && req.Query != "":
		digits := nonDigitRe.ReplaceAllString(req.Query, "")
		pageURL = fmt.Sprintf("%s/book/isbn/%s", g.baseURL, digits)
	case req.Query != "":
		pageURL = fmt.Sprintf("%s/search?q=%s", g.baseURL, url.QueryEscape(req.Query))
	default:
		return nil, nil
	}

	body, err := g.fetcher.Get(ctx, pageURL)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("goodreads fetch failed: %w", err)
	}

	doc, err := parseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("goodreads parse failed: %w", err)
	}

	link := pageURL
	if req.DirectURL == "" && !req.ISBNSearch {
		// Search result rows link detail pages via a.bookTitle
		a := findByClass(doc, "a", "bookTitle")
		if a == nil || attrVal(a, "href") == "" {
			return nil, nil
		}
		link = attrVal(a, "href")
		if !strings.HasPrefix(link, "http") {
			link = g.baseURL + link
		}

		body, err = g.fetcher.Get(ctx, link)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("goodreads detail fetch failed: %w", err)
		}
		doc, err = parseHTML(body)
		if err != nil {
			return nil, fmt.Errorf("goodreads detail parse failed: %w", err)
		}
	}

	return g.parseDetail(doc, body, link), nil
}

func (g *Goodreads) parseDetail(doc *html.Node, body []byte, link string) *book.Candidate {
	c := &book.Candidate{Link: book.String(link)}

	g.applyApolloState(doc, c)
	g.applyHTMLFallback(doc, c)

	if book.Has(c.Title) {
		c.Title = book.String(turkish.StripEditionNote(*c.Title))
	}
	if !book.Has(c.ISBN) {
		if isbn := turkish.FindISBN(string(body)); isbn != "" {
			c.ISBN = book.String(isbn)
		}
	}

	if !book.Has(c.Title) {
		slog.Debug("Goodreads page yielded no title", "url", link)
		return nil
	}
	return c
}

// applyApolloState parses the __NEXT_DATA__ blob and extracts the Book
// entity plus the Work, Series and Contributor entities it references.
func (g *Goodreads) applyApolloState(doc *html.Node, c *book.Candidate) {
	raw := scriptByID(doc, "__NEXT_DATA__")
	if raw == "" {
		return
	}

	var next struct {
		Props struct {
			PageProps struct {
				ApolloState map[string]map[string]any `json:"apolloState"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &next); err != nil {
		slog.Debug("Goodreads next-data parse failed", "error", err)
		return
	}
	state := next.Props.PageProps.ApolloState

	var bookData map[string]any
	for _, entity := range state {
		if getStr(entity, "__typename") != "Book" {
			continue
		}
		if entity["details"] != nil || entity["bookSeries"] != nil || getStr(entity, "title") != "" {
			bookData = entity
			break
		}
	}
	if bookData == nil {
		return
	}

	if title := getStr(bookData, "title"); title != "" {
		c.Title = book.String(turkish.CleanText(title))
	}
	if desc := getStr(bookData, "description"); desc != "" {
		c.Description = book.String(turkish.CleanText(stripTags(desc)))
	}

	g.applyContributors(state, bookData, c)
	g.applyStats(state, bookData, c)
	g.applyGenres(state, bookData, c)
	g.applySeries(state, bookData, c)
	g.applyDetails(state, bookData, c)
}

// resolveRef follows an Apollo {__ref: key} indirection, passing inline
// objects through unchanged.
func resolveRef(state map[string]map[string]any, v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if ref := getStr(m, "__ref"); ref != "" {
		return state[ref]
	}
	return m
}

func (g *Goodreads) applyContributors(state map[string]map[string]any, bookData map[string]any, c *book.Candidate) {
	var authors, translators []string
	process := func(edge map[string]any) {
		if edge == nil {
			return
		}
		role := turkish.Fold(getStr(edge, "role"))
		node := resolveRef(state, edge["node"])
		if node == nil {
			return
		}
		name := turkish.CleanText(getStr(node, "name"))
		if name == "" {
			return
		}
		list := &authors
		if strings.Contains(role, "translator") || strings.Contains(role, "çevirmen") {
			list = &translators
		}
		for _, seen := range *list {
			if seen == name {
				return
			}
		}
		*list = append(*list, name)
	}

	process(resolveRef(state, bookData["primaryContributorEdge"]))
	for _, item := range getSlice(bookData, "secondaryContributorEdges") {
		process(resolveRef(state, item))
	}

	if len(authors) > 0 {
		c.Author = book.String(strings.Join(authors, ", "))
	}
	if len(translators) > 0 {
		c.Translator = book.String(strings.Join(translators, ", "))
	}
}

func (g *Goodreads) applyStats(state map[string]map[string]any, bookData map[string]any, c *book.Candidate) {
	stats := getMap(bookData, "stats")
	if stats == nil {
		if work := resolveRef(state, bookData["work"]); work != nil {
			stats = getMap(work, "stats")
		}
	}
	if stats == nil {
		return
	}
	if count, ok := getInt(stats, "ratingsCount"); ok && count > 0 {
		c.RatingCount = book.Int(count)
	}
	if rating, ok := getFloat(stats, "averageRating"); ok && rating > 0 {
		c.Rating = book.Float(rating)
	}
}

func (g *Goodreads) applyGenres(state map[string]map[string]any, bookData map[string]any, c *book.Candidate) {
	var names []string
	add := func(name string) {
		name = turkish.CleanText(name)
		if name == "" {
			return
		}
		for _, seen := range names {
			if seen == name {
				return
			}
		}
		names = append(names, name)
	}

	for _, item := range getSlice(bookData, "bookGenres") {
		if bg, ok := item.(map[string]any); ok {
			add(getStr(getMap(bg, "genre"), "name"))
		}
	}
	if len(names) == 0 {
		for _, entity := range state {
			if getStr(entity, "__typename") == "Genre" {
				add(getStr(entity, "name"))
			}
		}
	}
	c.Genres = names
}

func (g *Goodreads) applySeries(state map[string]map[string]any, bookData map[string]any, c *book.Candidate) {
	items := getSlice(bookData, "bookSeries")
	if len(items) == 0 {
		return
	}
	first, ok := items[0].(map[string]any)
	if !ok {
		return
	}
	series := resolveRef(state, first["series"])
	if series == nil {
		return
	}
	title := turkish.CleanText(getStr(series, "title"))
	if title == "" {
		return
	}
	if pos := getStr(first, "userPosition"); pos != "" {
		c.Series = book.String(fmt.Sprintf("%s #%s", title, pos))
	} else {
		c.Series = book.String(title)
	}
}

func (g *Goodreads) applyDetails(state map[string]map[string]any, bookData map[string]any, c *book.Candidate) {
	details := getMap(bookData, "details")
	if details != nil {
		if pub := getStr(details, "publisher"); pub != "" {
			c.Publisher = book.String(turkish.TitleWords(turkish.CleanText(pub)))
		}
		if pages, ok := getInt(details, "numPages"); ok && pages > 0 {
			c.PageCount = book.Int(pages)
		}
		if isbn := getStr(details, "isbn13"); isbn != "" {
			c.ISBN = book.String(isbn)
		}
		if ms, ok := getFloat(details, "publicationTime"); ok && ms > 0 {
			t := time.UnixMilli(int64(ms))
			c.PublishedDate = book.String(fmt.Sprintf("%d %s %d", t.Day(), turkishMonths[t.Month()-1], t.Year()))
		}
		if orig := turkish.CleanText(getStr(details, "originalTitle")); orig != "" && orig != book.Value(c.Title) {
			c.OriginalTitle = book.String(orig)
		}
	}

	// The Work entity sometimes carries the original title instead
	if !book.Has(c.OriginalTitle) {
		if work := resolveRef(state, bookData["work"]); work != nil {
			if wd := getMap(work, "details"); wd != nil {
				if orig := turkish.CleanText(getStr(wd, "originalTitle")); orig != "" && orig != book.Value(c.Title) {
					c.OriginalTitle = book.String(orig)
				}
			}
		}
	}
}

// applyHTMLFallback fills fields the Apollo state missed from the rendered
// markup and meta tags.
func (g *Goodreads) applyHTMLFallback(doc *html.Node, c *book.Candidate) {
	if !book.Has(c.Title) {
		h1 := findFirst(doc, func(n *html.Node) bool {
			return n.Data == "h1" && (attrVal(n, "data-testid") == "bookTitle" || attrVal(n, "id") == "bookTitle")
		})
		if h1 != nil {
			c.Title = book.String(turkish.CleanText(textContent(h1)))
		}
		if !book.Has(c.Title) {
			if t := metaContent(doc, "og:title"); t != "" {
				c.Title = book.String(turkish.CleanText(t))
			}
		}
	}
	if !book.Has(c.Description) {
		if d := metaContent(doc, "og:description"); d != "" {
			c.Description = book.String(turkish.CleanText(d))
		}
	}
	if c.PageCount == nil {
		if m := findFirst(doc, func(n *html.Node) bool {
			return n.Data == "span" && attrVal(n, "itemprop") == "numberOfPages"
		}); m != nil {
			if fields := strings.Fields(textContent(m)); len(fields) > 0 {
				var pages int
				if _, err := fmt.Sscanf(fields[0], "%d", &pages); err == nil && pages > 0 {
					c.PageCount = book.Int(pages)
				}
			}
		}
	}
}
