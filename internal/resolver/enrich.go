package resolver

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/localize"
	"github.com/sekitap/kitaplik/internal/source"
	"github.com/sekitap/kitaplik/internal/textnorm"
	"github.com/sekitap/kitaplik/internal/turkish"
)

const (
	// secondaryTitleGate is the minimum title similarity before any
	// secondary candidate is trusted at all.
	secondaryTitleGate = 0.6

	// weakDescriptionLen marks descriptions too short to be worth keeping
	// over a fuller secondary one.
	weakDescriptionLen = 25

	// minRatingVotes gates ratings from secondary sources. Low-sample
	// averages are noise.
	minRatingVotes = 100

	// descriptionPlaceholder is the fallback text treated as "no
	// description" during enrichment.
	descriptionPlaceholder = "açıklama bulunamadı"
)

// FieldSet names the record fields one secondary catalog may contribute.
type FieldSet struct {
	OriginalTitle bool
	Translator    bool
	Series        bool
	Genres        bool
	Rating        bool
	Description   bool
}

// Secondary pairs a gap-filling adapter with the fields it is allowed to
// supply. ISBNCapable adapters are queried by ISBN first, falling back to
// free text.
type Secondary struct {
	Adapter     source.Adapter
	ISBNCapable bool
	Fills       FieldSet
}

// needs reports whether rec still lacks anything this secondary could
// supply. Used to skip the network call entirely when there is nothing to
// gain.
func (s Secondary) needs(rec *book.Record) bool {
	f := s.Fills
	switch {
	case f.OriginalTitle && !book.Has(rec.OriginalTitle):
		return true
	case f.Translator && !book.Has(rec.Translator):
		return true
	case f.Series && !book.Has(rec.Series):
		return true
	case f.Genres && !book.Has(rec.GenreTags):
		return true
	case f.Rating && rec.Rating == nil:
		return true
	case f.Description && weakDescription(rec.Description):
		return true
	}
	return false
}

// apply copies allowed fields from the secondary candidate into rec,
// filling only what is empty. Series goes through the localizer and its
// arbitration rule; descriptions follow the weak-description replacement
// rule; ratings below the vote floor are dropped.
func (s Secondary) apply(rec *book.Record, c *book.Candidate) {
	f := s.Fills

	if f.OriginalTitle && !book.Has(rec.OriginalTitle) && book.Has(c.OriginalTitle) {
		rec.OriginalTitle = c.OriginalTitle
	}
	if f.Translator && !book.Has(rec.Translator) && book.Has(c.Translator) {
		rec.Translator = c.Translator
	}
	if f.Series && book.Has(c.Series) {
		translated := localize.Series(*c.Series)
		if merged := localize.PreferSeries(book.Value(rec.Series), translated); merged != "" {
			rec.Series = book.String(merged)
		}
	}
	if f.Genres && !book.Has(rec.GenreTags) && len(c.Genres) > 0 {
		if len(rec.Genres) == 0 {
			rec.Genres = c.Genres
		}
		if tags := localize.Genres(c.Genres); tags != "" {
			rec.GenreTags = book.String(tags)
		}
	}
	if f.Rating && rec.Rating == nil && c.Rating != nil {
		if c.RatingCount != nil && *c.RatingCount >= minRatingVotes {
			rec.Rating = c.Rating
			rec.RatingCount = c.RatingCount
		} else {
			slog.Debug("Secondary rating dropped, too few votes",
				"source", s.Adapter.Name(), "votes", c.RatingCount)
		}
	}
	if f.Description && weakDescription(rec.Description) && book.Has(c.Description) {
		if utf8.RuneCountInString(*c.Description) > weakDescriptionLen {
			rec.Description = c.Description
		}
	}
}

func weakDescription(desc *string) bool {
	if !book.Has(desc) {
		return true
	}
	if utf8.RuneCountInString(*desc) < weakDescriptionLen {
		return true
	}
	return strings.Contains(turkish.Fold(*desc), descriptionPlaceholder)
}

// enrich runs every secondary in order, best effort. Nothing here can fail
// the resolution: adapter errors, rejected candidates and cancelled
// contexts all leave rec exactly as it was.
func (o *Orchestrator) enrich(ctx context.Context, rec *book.Record) {
	for _, sec := range o.secondaries {
		if ctx.Err() != nil {
			return
		}
		o.enrichFrom(ctx, rec, sec)
	}
}

func (o *Orchestrator) enrichFrom(ctx context.Context, rec *book.Record, sec Secondary) {
	if !sec.needs(rec) {
		slog.Debug("Record already complete for this source, skipping", "source", sec.Adapter.Name())
		return
	}

	var cand *book.Candidate
	if sec.ISBNCapable && book.Has(rec.ISBN) {
		found, err := o.pool.search(ctx, sec.Adapter, source.Request{Query: *rec.ISBN, ISBNSearch: true})
		if err != nil {
			slog.Debug("Secondary ISBN lookup failed, falling back to free text",
				"source", sec.Adapter.Name(), "error", err)
		}
		cand = found
	}

	if cand == nil {
		term := strings.TrimSpace(book.Value(rec.Title) + " " + book.Value(rec.Author))
		if term == "" {
			return
		}
		found, err := o.pool.search(ctx, sec.Adapter, source.Request{Query: term})
		if err != nil {
			slog.Debug("Secondary search failed", "source", sec.Adapter.Name(), "error", err)
			return
		}
		cand = found
	}
	if cand == nil {
		slog.Debug("No secondary result", "source", sec.Adapter.Name())
		return
	}

	// A secondary hit for a different book would cross-contaminate the
	// record; require the titles to roughly agree before taking anything.
	if book.Has(rec.Title) && book.Has(cand.Title) {
		if ratio := textnorm.Ratio(*rec.Title, *cand.Title); ratio < secondaryTitleGate {
			slog.Debug("Secondary candidate rejected on title mismatch",
				"source", sec.Adapter.Name(), "ratio", ratio)
			return
		}
	}

	sec.apply(rec, cand)
}
