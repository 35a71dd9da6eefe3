// Package resolver turns a noisy book identifier into a merged metadata
// record. It sequences normalization, the primary-catalog query cascade,
// candidate validation, secondary-source enrichment and the result cache.
package resolver

import (
	"context"
	"log/slog"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/cache"
	"github.com/sekitap/kitaplik/internal/config"
	domainerrors "github.com/sekitap/kitaplik/internal/errors"
	"github.com/sekitap/kitaplik/internal/localize"
	"github.com/sekitap/kitaplik/internal/ratelimit"
	"github.com/sekitap/kitaplik/internal/source"
	"github.com/sekitap/kitaplik/internal/textnorm"
)

const workerPoolSize = 3

// Orchestrator owns the state of the resolution pipeline: the primary
// adapter, the ordered secondaries, the cache store, a bounded adapter
// pool and the cascade pacer. Construct one per process and share it;
// there are no package-level globals.
type Orchestrator struct {
	primary     source.Adapter
	secondaries []Secondary
	store       *cache.Store
	pool        *workerPool
	limiter     *ratelimit.Limiter
	validator   Validator
}

// Request is one resolution call. Query is the raw identifier (file name,
// free text, or a pasted link); the other fields are optional pinning
// evidence supplied by the caller.
type Request struct {
	Query      string
	ISBN       string
	Manual     bool
	DirectURL  string
	ExternalID string
}

// Result is the outcome of one resolution. A nil Record is a definitive
// "not found", never a transient failure.
type Result struct {
	Record      *book.Record
	SourceLabel string

	// MatchedKey is the canonical cache key this resolution was stored
	// under; empty for ISBN, manual and failed resolutions.
	MatchedKey string

	FromCache bool
}

// New builds an orchestrator. Thresholds and pacing are read from config
// at construction time; store may be nil to disable caching.
func New(primary source.Adapter, secondaries []Secondary, store *cache.Store) *Orchestrator {
	return &Orchestrator{
		primary:     primary,
		secondaries: secondaries,
		store:       store,
		pool:        newWorkerPool(workerPoolSize),
		limiter:     ratelimit.NewInterval("primary-cascade", config.RequestDelay()),
		validator: Validator{
			SimilarityThreshold: config.SimilarityThreshold(),
			TokenMatchThreshold: config.TokenMatchThreshold(),
		},
	}
}

// DefaultSecondaries returns the standard gap-filling chain: Goodreads for
// genres, ratings, original titles and series, then 1000Kitap for original
// titles, translators and series.
func DefaultSecondaries(fetcher *source.Fetcher) []Secondary {
	return []Secondary{
		{
			Adapter:     source.NewGoodreads(fetcher),
			ISBNCapable: true,
			Fills: FieldSet{
				OriginalTitle: true,
				Series:        true,
				Genres:        true,
				Rating:        true,
				Description:   true,
			},
		},
		{
			Adapter: source.NewBinKitap(fetcher),
			Fills: FieldSet{
				OriginalTitle: true,
				Translator:    true,
				Series:        true,
			},
		},
	}
}

// Resolve runs the full pipeline for one request. The identification
// ladder runs first: explicit external id, then explicit direct URL, then
// a link embedded in the query, then ISBN, then the free-text cascade.
// The returned error is non-nil only for context cancellation; every
// domain-level failure is a nil-Record Result.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Result, error) {
	directURL, manual, ok := o.identify(req)
	if !ok {
		slog.Info("Query is an unresolvable link", "query", req.Query)
		return Result{}, nil
	}

	if directURL != "" {
		return o.resolveDirect(ctx, directURL)
	}

	q := textnorm.Normalize(req.Query, manual)

	// An explicit ISBN next to a free-text query: try it first, fall
	// through to the cascade if the catalog does not know it.
	if req.ISBN != "" && !q.IsISBN {
		res, err := o.resolveISBN(ctx, req.ISBN, manual)
		if err != nil || res.Record != nil {
			return res, err
		}
	}

	if q.IsISBN {
		return o.resolveISBN(ctx, q.ISBNDigits, manual)
	}

	if q.Canonical == "" {
		slog.Info("Query normalized to nothing, skipping search", "raw", req.Query)
		return Result{}, nil
	}

	if !manual {
		if rec, hit := o.cacheGet(q.Canonical); hit {
			slog.Debug("Cache hit", "key", q.Canonical)
			return Result{Record: rec, SourceLabel: rec.SourceLabel, MatchedKey: q.Canonical, FromCache: true}, nil
		}
	}

	cand, err := o.runCascade(ctx, q, manual)
	if err != nil {
		return Result{}, err
	}
	if cand == nil {
		slog.Warn("No cascade variant produced a validated candidate", "query", q.Canonical)
		return Result{}, nil
	}

	rec := &book.Record{Candidate: *cand, SourceLabel: o.primary.Name()}
	if !manual {
		o.enrich(ctx, rec)
	}
	o.finalize(rec)

	result := Result{Record: rec, SourceLabel: rec.SourceLabel}
	if !manual && ctx.Err() == nil {
		// Written only after the whole pipeline completed; an abandoned
		// enrichment must not leave a half-merged record behind.
		o.cachePut(q.Canonical, rec)
		result.MatchedKey = q.Canonical
	}
	return result, nil
}

// identify applies the identification priority ladder and reports whether
// resolution should proceed at all.
func (o *Orchestrator) identify(req Request) (directURL string, manual bool, ok bool) {
	if req.ExternalID != "" {
		return productURL(req.ExternalID), true, true
	}
	if req.DirectURL != "" {
		return req.DirectURL, true, true
	}
	if containsURL(req.Query) {
		url := extractURL(req.Query)
		if url != "" && productID(url) != "" {
			return url, true, true
		}
		// A link we cannot pin to a product must not degrade into a fuzzy
		// search over link text.
		return "", false, false
	}
	return "", req.Manual, true
}

// resolveDirect fetches a pinned catalog page. Manual semantics: no
// validation, no enrichment, no cache.
func (o *Orchestrator) resolveDirect(ctx context.Context, url string) (Result, error) {
	cand, err := o.pool.search(ctx, o.primary, source.Request{DirectURL: url})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		slog.Warn("Direct link fetch failed", "url", url, "error", err)
		return Result{}, nil
	}
	if cand == nil {
		return Result{}, nil
	}

	rec := &book.Record{Candidate: *cand, SourceLabel: o.primary.Name()}
	o.finalize(rec)
	return Result{Record: rec, SourceLabel: rec.SourceLabel}, nil
}

// resolveISBN runs the single un-cascaded ISBN attempt against the primary
// adapter. ISBN resolutions are authoritative one-offs: enriched, but
// never cached. A manually confirmed ISBN also accepts candidates whose
// page exposes no ISBN to compare against.
func (o *Orchestrator) resolveISBN(ctx context.Context, isbn string, manual bool) (Result, error) {
	digits := digitsOnlyRe.ReplaceAllString(isbn, "")
	q := textnorm.Query{Raw: isbn, Canonical: digits, IsISBN: true, ISBNDigits: digits}

	if err := o.limiter.Wait(ctx); err != nil {
		return Result{}, ctx.Err()
	}
	cand, err := o.pool.search(ctx, o.primary, source.Request{Query: digits, ISBNSearch: true})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		slog.Debug("ISBN search failed", "isbn", digits, "error", err)
		return Result{}, nil
	}
	if !o.validator.Accept(cand, q, manual) {
		return Result{}, nil
	}

	rec := &book.Record{Candidate: *cand, SourceLabel: o.primary.Name()}
	if !manual {
		o.enrich(ctx, rec)
	}
	o.finalize(rec)
	return Result{Record: rec, SourceLabel: rec.SourceLabel}, nil
}

// runCascade tries each query variant against the primary adapter until a
// candidate validates. Per-variant failures never abort the cascade; only
// cancellation does.
func (o *Orchestrator) runCascade(ctx context.Context, q textnorm.Query, manual bool) (*book.Candidate, error) {
	for _, variant := range cascadeVariants(q.Canonical) {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, ctx.Err()
		}

		cand, err := o.pool.search(ctx, o.primary, source.Request{Query: variant})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if domainerrors.IsRateLimitError(err) {
				slog.Warn("Primary catalog is rate limiting, abandoning cascade", "variant", variant)
				return nil, nil
			}
			slog.Debug("Cascade variant failed", "variant", variant, "error", err)
			continue
		}
		if cand == nil {
			slog.Debug("Cascade variant returned nothing", "variant", variant)
			continue
		}
		if !o.validator.Accept(cand, q, manual) {
			slog.Debug("Candidate rejected by validator",
				"variant", variant, "title", book.Value(cand.Title))
			continue
		}

		slog.Info("Candidate accepted", "variant", variant, "title", book.Value(cand.Title))
		return cand, nil
	}
	return nil, nil
}

// finalize applies the merge-time localization filters that do not depend
// on any secondary source.
func (o *Orchestrator) finalize(rec *book.Record) {
	if !book.Has(rec.GenreTags) && len(rec.Genres) > 0 {
		if tags := localize.Genres(rec.Genres); tags != "" {
			rec.GenreTags = book.String(tags)
		}
	}
	if book.Has(rec.Series) {
		rec.Series = book.String(localize.Series(*rec.Series))
	}
}

func (o *Orchestrator) cacheGet(key string) (*book.Record, bool) {
	if o.store == nil {
		return nil, false
	}
	rec, hit, err := o.store.Get(key)
	if err != nil {
		slog.Warn("Cache read failed", "key", key, "error", err)
		return nil, false
	}
	return rec, hit
}

func (o *Orchestrator) cachePut(key string, rec *book.Record) {
	if o.store == nil {
		return
	}
	if err := o.store.Put(key, rec); err != nil {
		slog.Warn("Cache write failed", "key", key, "error", err)
	}
}
