package config

import (
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
	Fetcher    Fetcher
	News       News
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-required:"true"`
	Port     int           `env:"BD_PORT" env-required:"true"`
	User     string        `env:"BD_USER" env-required:"true"`
	Password string        `env:"BD_PASSWORD" env-required:"true"`
	DBName   string        `env:"BD_DBNAME" env-required:"true"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"dev"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Fetcher struct {
	DolarURL    string        `env:"FETCHER_DOLAR_URL" env-default:"https://dolarapi.com/v1"`
	MexicoURL   string        `env:"FETCHER_MX_URL" env-default:"https://mx.dolarapi.com/v1"`
	ParaguayURL string        `env:"FETCHER_PY_URL" env-default:"https://py.dolarapi.com/v1"`
	CryptoURL   string        `env:"FETCHER_CRYPTO_URL" env-default:"https://api.coingecko.com/api/v3/simple/price"`
	Timeout     time.Duration `env:"FETCHER_TIMEOUT" env-default:"9s"`
	TimeTickers time.Duration `env:"FETCHER_TIME_TICKERS" env-default:"60s"`
	CryptoCache time.Duration `env:"FETCHER_CRYPTO_CACHE" env-default:"60s"`
}

type News struct {
	LocalIndex   string        `env:"NEWS_LOCAL_INDEX" env-default:"./noticias/noticias.json"`
	Feeds        []string      `env:"NEWS_FEEDS" env-separator:";" env-default:"iProfesional (Economía)|https://www.iprofesional.com/rss/economia.xml;iProfesional (Finanzas)|https://www.iprofesional.com/rss/finanzas.xml;iProfesional (Impuestos)|https://www.iprofesional.com/rss/impuestos.xml"`
	CacheTTL     time.Duration `env:"NEWS_CACHE_TTL" env-default:"5m"`
	Limit        int           `env:"NEWS_LIMIT" env-default:"8"`
	DirectWait   time.Duration `env:"NEWS_DIRECT_TIMEOUT" env-default:"8s"`
	ProxyURL     string        `env:"NEWS_PROXY_URL" env-default:"https://api.allorigins.win/raw?url="`
	ProxyWait    time.Duration `env:"NEWS_PROXY_TIMEOUT" env-default:"10s"`
	ReaderURL    string        `env:"NEWS_READER_URL" env-default:"https://r.jina.ai/http://"`
	ReaderWait   time.Duration `env:"NEWS_READER_TIMEOUT" env-default:"12s"`
	ItemsPerFeed int           `env:"NEWS_ITEMS_PER_FEED" env-default:"20"`
}

// FeedSource is one remote feed taken from NEWS_FEEDS ("name|url").
type FeedSource struct {
	Name string
	URL  string
}

func NewConfig() *Config {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		log.Fatal("Error reading env")
	}

	return cfg
}

// FeedSources splits the configured feed list. Entries without a "|" use the
// URL as the source name; blank entries are skipped.
func (n News) FeedSources() []FeedSource {
	sources := make([]FeedSource, 0, len(n.Feeds))
	for _, raw := range n.Feeds {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		name, url, found := strings.Cut(raw, "|")
		if !found {
			sources = append(sources, FeedSource{Name: raw, URL: raw})
			continue
		}

		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if name == "" {
			name = url
		}

		sources = append(sources, FeedSource{Name: name, URL: url})
	}

	return sources
}
