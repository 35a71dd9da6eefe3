package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/config"
	"github.com/sekitap/kitaplik/internal/resolver"
	"github.com/sekitap/kitaplik/internal/testutil"
)

func resetCmdState(t *testing.T) {
	origResolve := resolveBook
	t.Cleanup(func() { resolveBook = origResolve })

	testutil.SetTestConfig(t)
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"kitaplik"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("kitaplik"),
		kong.Description("A tool to resolve noisy book identifiers into clean metadata records."),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)

	return cli, ctx
}

func TestResolveCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "resolve", "Dune_Frank_Herbert.epub",
		"--isbn", "9789750719387",
		"--manual",
		"--json")

	assert.Equal(t, "Dune_Frank_Herbert.epub", cli.Resolve.Query)
	assert.Equal(t, "9789750719387", cli.Resolve.ISBN)
	assert.True(t, cli.Resolve.Manual)
	assert.True(t, cli.Resolve.JSON)
	assert.Equal(t, "", cli.Resolve.URL)
}

func TestResolveRequiresSomething(t *testing.T) {
	resetCmdState(t)

	cli, ctx := parseCLI(t, "resolve")
	updateGlobalConfig(cli)
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to resolve")
}

func TestResolveRunUsesFallbackOnNotFound(t *testing.T) {
	resetCmdState(t)

	resolveBook = func(ctx context.Context, req resolver.Request) (resolver.Result, error) {
		return resolver.Result{}, nil
	}

	cmd := &ResolveCmd{Query: "Stephen_King_Karanlığı_Seversin.epub"}
	require.NoError(t, cmd.Run())
}

func TestResolvePassesRequestThrough(t *testing.T) {
	resetCmdState(t)

	var got resolver.Request
	resolveBook = func(ctx context.Context, req resolver.Request) (resolver.Result, error) {
		got = req
		return resolver.Result{
			Record:      &book.Record{Candidate: book.Candidate{Title: book.String("Dune")}},
			SourceLabel: "Kitapyurdu",
		}, nil
	}

	cmd := &ResolveCmd{Query: "dune", ISBN: "9789750719387", ExternalID: "98765", Manual: true}
	require.NoError(t, cmd.Run())

	assert.Equal(t, "dune", got.Query)
	assert.Equal(t, "9789750719387", got.ISBN)
	assert.Equal(t, "98765", got.ExternalID)
	assert.True(t, got.Manual)
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t)

	cli := &CLI{
		CacheDBFile: "/tmp/kitaplik.db",
		CacheTTL:    "12h",
	}

	updateGlobalConfig(cli)

	assert.Equal(t, "/tmp/kitaplik.db", viper.GetString(config.KeyCacheDB))
	assert.Equal(t, "12h", viper.GetString(config.KeyCacheTTL))
}

func TestCLIDefaultFlags(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "resolve", "dune")

	assert.Equal(t, "./kitaplik.db", cli.CacheDBFile, "CacheDBFile should default to ./kitaplik.db")
	assert.Equal(t, "168h", cli.CacheTTL, "CacheTTL should default to 168h")
	assert.False(t, cli.Resolve.Manual, "Manual should default to false")
	assert.False(t, cli.Resolve.JSON, "JSON should default to false")
}

func TestCacheClearCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "cache", "clear", "--expired")

	assert.True(t, cli.Cache.Clear.Expired)
}

func TestPrintResult(t *testing.T) {
	resetCmdState(t)

	res := &resolver.Result{
		Record: &book.Record{
			Candidate: book.Candidate{
				Title:         book.String("Dune"),
				OriginalTitle: book.String("Dune"),
				Author:        book.String("Frank Herbert"),
				Translator:    book.String("Dost Körpe"),
				Series:        book.String("Dune Kum Gezegeni #1"),
				PageCount:     book.Int(712),
				Rating:        book.Float(4.25),
				RatingCount:   book.Int(1200000),
				GenreTags:     book.String("#BilimKurgu"),
			},
			SourceLabel: "Kitapyurdu",
		},
		SourceLabel: "Kitapyurdu",
		MatchedKey:  "dune frank herbert",
		FromCache:   true,
	}

	var buf bytes.Buffer
	printResult(&buf, res, "Dune_Frank_Herbert.epub")
	out := buf.String()

	assert.Contains(t, out, "Kitap:")
	assert.Contains(t, out, "Dune Kum Gezegeni #1")
	assert.Contains(t, out, "4.25 / 5 (1200000 oy)")
	assert.Contains(t, out, "#BilimKurgu")
	assert.Contains(t, out, "Durum:")
	assert.Contains(t, out, "Okundu")
	assert.Contains(t, out, "dune frank herbert")

	// Absent fields stay silent
	assert.False(t, strings.Contains(out, "ISBN:"))
	assert.False(t, strings.Contains(out, "Açıklama:"))
}

func TestInitLogging(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
	}{
		{"default", ""},
		{"debug", "debug"},
		{"DEBUG", "DEBUG"},
		{"warn", "warn"},
		{"error", "error"},
		{"invalid", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("KITAPLIK_LOG_LEVEL", tt.envValue)
			}
			require.NotPanics(t, func() {
				initLogging()
			})
		})
	}
}

func TestCommandStructure(t *testing.T) {
	resetCmdState(t)

	cli := &CLI{}

	assert.NotNil(t, cli.Resolve)
	assert.NotNil(t, cli.Cache)
	assert.IsType(t, CacheStatsCmd{}, cli.Cache.Stats)
	assert.IsType(t, CacheClearCmd{}, cli.Cache.Clear)
}
