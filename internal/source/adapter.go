// Package source implements the catalog adapters consulted by the
// resolution pipeline: Kitapyurdu as the primary source, Goodreads and
// 1000Kitap as gap-filling secondaries.
package source

import (
	"context"

	"github.com/sekitap/kitaplik/internal/book"
)

// Request describes one catalog lookup. Exactly one of Query or DirectURL
// is normally set; ISBNSearch switches adapters that have a dedicated ISBN
// endpoint onto it.
type Request struct {
	Query      string
	DirectURL  string
	ISBNSearch bool
}

// Adapter is implemented once per catalog. Search returns at most one
// candidate; (nil, nil) means "no result". Transport and parse errors
// surface as errors, but callers treat them exactly like a missing result:
// an adapter failure never aborts a resolution.
type Adapter interface {
	Name() string
	Search(ctx context.Context, req Request) (*book.Candidate, error)
}
