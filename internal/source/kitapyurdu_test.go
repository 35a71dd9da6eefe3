package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sekitap/kitaplik/internal/book"
)

const kitapyurduDetailHTML = `<html><head>
<script type="application/ld+json">{"@type":"Book","name":"Karanlığı Seversin","isbn":"978-975-07-1938-7","numberOfPages":416,"author":{"name":"Stephen King"}}</script>
<meta property="og:description" content="Karanlık hikayeler.">
</head><body>
<h1 class="pr_header__heading">Karanlığı Seversin (Karton Kapak)</h1>
<div class="pr_producers__manufacturer"><span class="pr_producers__label">Yazar</span><a class="pr_producers__link">Stephen King</a></div>
<div class="pr_producers__manufacturer"><span class="pr_producers__label">Çevirmen</span><a class="pr_producers__link">Zeynep Heyzen Ateş</a></div>
<div class="pr_producers__publisher"><a class="pr_producers__link">altın kitaplar</a></div>
<div class="info__text">Stephen King'den on iki yeni karanlık hikaye.</div>
<table class="attributes">
<tr><td>Sayfa Sayısı:</td><td>416</td></tr>
<tr><td>Yayın Tarihi:</td><td>15.03.2024</td></tr>
<tr><td>ISBN:</td><td>978-975-07-1938-7</td></tr>
<tr><td>Çevirmen:</td><td>Zeynep Heyzen Ateş</td></tr>
<tr><td>Orijinal Adı:</td><td>You Like It Darker</td></tr>
</table>
</body></html>`

func newKitapyurduServer(t *testing.T) (*httptest.Server, *Kitapyurdu) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter_name") == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body>
<div class="product-cr"><a href="/kitap/karanligi-seversin/123.html">Karanlığı Seversin</a></div>
</body></html>`))
	})
	mux.HandleFunc("/kitap/karanligi-seversin/123.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(kitapyurduDetailHTML))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	adapter := NewKitapyurdu(NewFetcher(5 * time.Second))
	adapter.baseURL = server.URL
	return server, adapter
}

func TestKitapyurduSearch(t *testing.T) {
	server, adapter := newKitapyurduServer(t)

	got, err := adapter.Search(context.Background(), Request{Query: "stephen king karanlığı seversin"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a candidate")
	}

	if book.Value(got.Title) != "Karanlığı Seversin" {
		t.Errorf("Title = %q, want %q", book.Value(got.Title), "Karanlığı Seversin")
	}
	if book.Value(got.Author) != "Stephen King" {
		t.Errorf("Author = %q, want Stephen King", book.Value(got.Author))
	}
	if book.Value(got.Translator) != "Zeynep Heyzen Ateş" {
		t.Errorf("Translator = %q", book.Value(got.Translator))
	}
	if book.Value(got.OriginalTitle) != "You Like It Darker" {
		t.Errorf("OriginalTitle = %q", book.Value(got.OriginalTitle))
	}
	if book.Value(got.ISBN) != "9789750719387" {
		t.Errorf("ISBN = %q, want digits only", book.Value(got.ISBN))
	}
	if got.PageCount == nil || *got.PageCount != 416 {
		t.Errorf("PageCount = %v, want 416", got.PageCount)
	}
	if book.Value(got.Publisher) != "Altın Kitaplar" {
		t.Errorf("Publisher = %q, want title-cased", book.Value(got.Publisher))
	}
	if book.Value(got.PublishedDate) != "15.03.2024" {
		t.Errorf("PublishedDate = %q", book.Value(got.PublishedDate))
	}
	if book.Value(got.Link) != server.URL+"/kitap/karanligi-seversin/123.html" {
		t.Errorf("Link = %q", book.Value(got.Link))
	}
}

func TestKitapyurduDirectURL(t *testing.T) {
	server, adapter := newKitapyurduServer(t)

	directURL := server.URL + "/kitap/karanligi-seversin/123.html"
	got, err := adapter.Search(context.Background(), Request{DirectURL: directURL})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a candidate")
	}
	if book.Value(got.Link) != directURL {
		t.Errorf("Link = %q, want the direct URL", book.Value(got.Link))
	}
}

func TestKitapyurduNoResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Sonuç bulunamadı</p></body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := NewKitapyurdu(NewFetcher(5 * time.Second))
	adapter.baseURL = server.URL

	got, err := adapter.Search(context.Background(), Request{Query: "yok böyle bir kitap"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil for an empty result page", got)
	}
}

func TestKitapyurduEmptyQuery(t *testing.T) {
	adapter := NewKitapyurdu(NewFetcher(time.Second))

	got, err := adapter.Search(context.Background(), Request{})
	if err != nil || got != nil {
		t.Errorf("empty request must be a quiet no-op, got %v, %v", got, err)
	}
}
