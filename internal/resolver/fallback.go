package resolver

import (
	"regexp"
	"strings"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/turkish"
)

// When nothing resolves, the caller still needs something presentable. The
// fallback record is built purely from the filename and clearly labeled as
// such; it is never cached.

// FallbackSourceLabel marks records built from the filename instead of a
// catalog.
const FallbackSourceLabel = "Otomatik (Dosya Adı)"

const fallbackDescription = "Bu kitap hakkında bilgi bulunamadı. Dosya adından oluşturulmuştur."

var (
	extensionRe  = regexp.MustCompile(`(?i)\.(epub|pdf)$`)
	bareNumberRe = regexp.MustCompile(`(?:^|\s)\d+(?:$|\s)`)
	rawScanRe    = regexp.MustCompile(`(?:^|[\s_\-(\[])ham[\s_\-)\]]*\.pdf$`)
)

// FallbackRecord extracts a best-effort author and title from a raw
// filename. "Author - Series - Title" and "Author_Title" shapes are
// recognized; everything else becomes the title alone.
func FallbackRecord(filename string) *book.Record {
	name := strings.TrimSpace(extensionRe.ReplaceAllString(filename, ""))

	var author, title string
	if parts := strings.Split(name, " - "); len(parts) >= 2 {
		author = parts[0]
		title = parts[len(parts)-1]
	} else if parts := strings.SplitN(name, "_", 2); len(parts) == 2 {
		author = parts[0]
		title = parts[1]
	} else {
		title = name
	}

	title = cleanFallbackPart(title)
	title = strings.Join(strings.Fields(bareNumberRe.ReplaceAllString(title, " ")), " ")
	title = turkish.DisplayTitle(title)
	author = turkish.TitleWords(cleanFallbackPart(author))

	if title == "" {
		title = "Bilinmeyen Kitap"
	}
	if author == "" {
		author = "Bilinmiyor"
	}

	return &book.Record{
		Candidate: book.Candidate{
			Title:       book.String(title),
			Author:      book.String(author),
			Description: book.String(fallbackDescription),
		},
		SourceLabel: FallbackSourceLabel,
	}
}

func cleanFallbackPart(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ReadingStatus classifies a filename by its extension and markers. The
// transport layer shows this next to the resolved record.
func ReadingStatus(filename string) string {
	name := turkish.Fold(filename)
	switch {
	case strings.HasSuffix(name, ".epub"):
		if strings.Contains(name, "okunmadı") || strings.Contains(name, "okunmadi") {
			return "Okunmadı"
		}
		if strings.Contains(name, "storytel") {
			return "Storytel, Orijinal"
		}
		return "Okundu"
	case strings.HasSuffix(name, ".pdf"):
		if rawScanRe.MatchString(name) {
			return "Ham Tarama"
		}
		return "Clear Scan"
	default:
		return "-"
	}
}
