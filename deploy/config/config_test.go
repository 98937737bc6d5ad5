package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BD_HOST", "localhost")
	t.Setenv("BD_PORT", "5432")
	t.Setenv("BD_USER", "cotizaya")
	t.Setenv("BD_PASSWORD", "secret")
	t.Setenv("BD_DBNAME", "rates")
}

func TestReadEnv_Defaults(t *testing.T) {
	setRequired(t)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Fetcher.Timeout != 9*time.Second {
		t.Errorf("Fetcher.Timeout = %v; want 9s", cfg.Fetcher.Timeout)
	}
	if cfg.Fetcher.TimeTickers != time.Minute {
		t.Errorf("Fetcher.TimeTickers = %v; want 1m", cfg.Fetcher.TimeTickers)
	}
	if cfg.News.CacheTTL != 5*time.Minute {
		t.Errorf("News.CacheTTL = %v; want 5m", cfg.News.CacheTTL)
	}
	if cfg.News.Limit != 8 {
		t.Errorf("News.Limit = %d; want 8", cfg.News.Limit)
	}
	if got := len(cfg.News.FeedSources()); got != 3 {
		t.Errorf("len(FeedSources) = %d; want 3", got)
	}
}

func TestReadEnv_MissingStorage(t *testing.T) {
	for _, key := range []string{"BD_HOST", "BD_PORT", "BD_USER", "BD_PASSWORD", "BD_DBNAME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err == nil {
		t.Fatal("expected error due to missing BD_* variables, got nil")
	}
}

func TestFeedSources(t *testing.T) {
	n := News{Feeds: []string{
		" Economía | https://example.com/eco.xml ",
		"",
		"https://example.com/bare.xml",
		"broken|",
		"|https://example.com/noname.xml",
	}}

	got := n.FeedSources()
	want := []FeedSource{
		{Name: "Economía", URL: "https://example.com/eco.xml"},
		{Name: "https://example.com/bare.xml", URL: "https://example.com/bare.xml"},
		{Name: "https://example.com/noname.xml", URL: "https://example.com/noname.xml"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FeedSources = %v; want %v", got, want)
	}
}
