package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/cache"
	"github.com/sekitap/kitaplik/internal/config"
	"github.com/sekitap/kitaplik/internal/resolver"
	"github.com/sekitap/kitaplik/internal/source"
)

// resolveBook is a seam for tests; the default implementation wires the
// real adapters and cache.
var resolveBook = runResolve

// CLI represents the complete command structure for the kitaplik application
type CLI struct {
	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./kitaplik.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g. 168h for one week)" default:"168h"`

	Resolve ResolveCmd `cmd:"" help:"Resolve a book name, filename, ISBN or catalog link into a metadata record"`
	Cache   CacheCmd   `cmd:"" help:"Inspect or clear the resolution cache"`
}

// ResolveCmd represents the resolve command
type ResolveCmd struct {
	Query      string `arg:"" optional:"" help:"Free text, a filename or a pasted catalog link"`
	ISBN       string `help:"Resolve by ISBN instead of free text"`
	URL        string `help:"Fetch a catalog product page directly"`
	ExternalID string `help:"Fetch a catalog product by its numeric id"`
	Manual     bool   `help:"Treat the query as manually confirmed (light cleanup, no enrichment, no cache)"`
	JSON       bool   `help:"Print the resolved record as JSON"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Stats CacheStatsCmd `cmd:"" help:"Show how many resolutions are cached"`
	Clear CacheClearCmd `cmd:"" help:"Remove cached resolutions"`
}

// CacheStatsCmd represents the cache stats command
type CacheStatsCmd struct{}

// CacheClearCmd represents the cache clear command
type CacheClearCmd struct {
	Expired bool `help:"Only remove entries older than the TTL"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("kitaplik"),
		kong.Description("A tool to resolve noisy book identifiers into clean metadata records."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}
}

func updateGlobalConfig(cli *CLI) {
	// Update cache config based on CLI flags
	viper.Set(config.KeyCacheDB, cli.CacheDBFile)
	viper.Set(config.KeyCacheTTL, cli.CacheTTL)
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("KITAPLIK_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

// Run methods for each command

func (r *ResolveCmd) Run() error {
	if r.Query == "" && r.ISBN == "" && r.URL == "" && r.ExternalID == "" {
		return fmt.Errorf("nothing to resolve (provide a query, --isbn, --url or --external-id)")
	}

	res, err := resolveBook(context.Background(), resolver.Request{
		Query:      r.Query,
		ISBN:       r.ISBN,
		Manual:     r.Manual,
		DirectURL:  r.URL,
		ExternalID: r.ExternalID,
	})
	if err != nil {
		return err
	}

	if res.Record == nil && r.Query != "" {
		// Nothing resolved; fall back to whatever the filename itself says.
		slog.Info("No catalog match, building a fallback record", "query", r.Query)
		res.Record = resolver.FallbackRecord(r.Query)
		res.SourceLabel = resolver.FallbackSourceLabel
	}
	if res.Record == nil {
		return fmt.Errorf("no match found")
	}

	if r.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Record)
	}

	printResult(os.Stdout, &res, r.Query)
	return nil
}

func (c *CacheStatsCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Printf("%d cached resolution(s) in %s (TTL %s)\n", n, config.CacheDBFile(), config.CacheTTL())
	return nil
}

func (c *CacheClearCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var removed int64
	if c.Expired {
		removed, err = store.ClearExpired()
	} else {
		removed, err = store.ClearAll()
	}
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d cache entr(y/ies)\n", removed)
	return nil
}

func openStore() (*cache.Store, error) {
	store, err := cache.Open(config.CacheDBFile(), config.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}

// runResolve builds the production pipeline and resolves one request. The
// cache is best effort: an unopenable database degrades to cacheless
// resolution instead of failing the command.
func runResolve(ctx context.Context, req resolver.Request) (resolver.Result, error) {
	store, err := cache.Open(config.CacheDBFile(), config.CacheTTL())
	if err != nil {
		slog.Warn("Cache unavailable, resolving without it", "error", err)
		store = nil
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	fetcher := source.NewFetcher(config.RequestTimeout())
	o := resolver.New(source.NewKitapyurdu(fetcher), resolver.DefaultSecondaries(fetcher), store)
	return o.Resolve(ctx, req)
}

// printResult renders a resolved record with Turkish field labels, skipping
// fields no source supplied.
func printResult(w io.Writer, res *resolver.Result, query string) {
	rec := res.Record

	line(w, "Kitap", book.Value(rec.Title))
	line(w, "Orijinal Adı", book.Value(rec.OriginalTitle))
	line(w, "Yazar", book.Value(rec.Author))
	line(w, "Çevirmen", book.Value(rec.Translator))
	line(w, "Seri", book.Value(rec.Series))
	line(w, "Yayınevi", book.Value(rec.Publisher))
	if rec.PageCount != nil {
		line(w, "Sayfa", fmt.Sprintf("%d", *rec.PageCount))
	}
	line(w, "ISBN", book.Value(rec.ISBN))
	line(w, "Yayın Tarihi", book.Value(rec.PublishedDate))
	if rec.Rating != nil {
		rating := fmt.Sprintf("%.2f / 5", *rec.Rating)
		if rec.RatingCount != nil {
			rating = fmt.Sprintf("%s (%d oy)", rating, *rec.RatingCount)
		}
		line(w, "Puan", rating)
	}
	line(w, "Tür", book.Value(rec.GenreTags))
	line(w, "Açıklama", book.Value(rec.Description))
	line(w, "Bağlantı", book.Value(rec.Link))

	fmt.Fprintln(w)
	line(w, "Kaynak", res.SourceLabel)
	if status := resolver.ReadingStatus(query); status != "-" {
		line(w, "Durum", status)
	}
	if res.FromCache {
		line(w, "Önbellek", res.MatchedKey)
	}
}

func line(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-13s %s\n", label+":", value)
}
