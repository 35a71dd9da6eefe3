// Package book defines the record types passed between catalog adapters,
// the resolution pipeline and the cache. Pointer fields distinguish
// "not supplied by any source" from "supplied but empty".
package book

// Candidate is a partial record returned by a single catalog adapter.
// Every field is optional; adapters fill whatever their page exposes.
type Candidate struct {
	// Title is the localized title as listed by the catalog.
	Title *string `json:"title,omitempty"`

	// Author holds the author names, comma-joined.
	Author *string `json:"author,omitempty"`

	// Translator holds the translator names, comma-joined.
	Translator *string `json:"translator,omitempty"`

	// OriginalTitle is the title in the work's original language.
	OriginalTitle *string `json:"original_title,omitempty"`

	// Series is the series label in "Name #N" form.
	Series *string `json:"series,omitempty"`

	// Publisher is the publishing house name.
	Publisher *string `json:"publisher,omitempty"`

	// PageCount is the number of pages.
	PageCount *int `json:"page_count,omitempty"`

	// ISBN is the ISBN-10 or ISBN-13, digits only.
	ISBN *string `json:"isbn,omitempty"`

	// PublishedDate is the publication date as displayed by the source.
	PublishedDate *string `json:"published_date,omitempty"`

	// Rating is the average reader rating on the source's scale.
	Rating *float64 `json:"rating,omitempty"`

	// RatingCount is the number of votes behind Rating.
	RatingCount *int `json:"rating_count,omitempty"`

	// Genres are the raw genre/category labels from the source.
	Genres []string `json:"genres,omitempty"`

	// GenreTags is the localized, filtered hashtag string produced from
	// Genres at merge time.
	GenreTags *string `json:"genre_tags,omitempty"`

	// Description is the blurb or summary text.
	Description *string `json:"description,omitempty"`

	// Link is the absolute URL of the catalog page the data came from.
	Link *string `json:"link,omitempty"`
}

// Record is the merged, resolved result returned to callers.
type Record struct {
	Candidate

	// SourceLabel names the adapter that supplied the accepted primary match.
	SourceLabel string `json:"source_label"`
}

// String returns a pointer to s. Convenience for building records.
func String(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Has reports whether a string field is present and non-empty.
func Has(p *string) bool { return p != nil && *p != "" }

// Value returns the string behind p, or "" when absent.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
