package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fallback policies for paths that do not resolve to a known slug.
const (
	FallbackNotFound = "404"    // plain 404 response
	FallbackAssets   = "assets" // delegate to the static asset server
)

type Config struct {
	Port          string
	DBPath        string
	Username      string
	Password      string
	AssetsDir     string
	ParentDomain  string
	GeoIPPath     string
	Fallback      string
	FlushInterval time.Duration
	BufferSize    int
	CacheSize     int
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	username := os.Getenv("LINKS_USERNAME")
	if username == "" {
		return nil, fmt.Errorf("LINKS_USERNAME is required")
	}
	password := os.Getenv("LINKS_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("LINKS_PASSWORD is required")
	}

	cfg := &Config{
		Port:          envOrDefault("LINKS_PORT", "8080"),
		DBPath:        envOrDefault("LINKS_DB_PATH", "./links.db"),
		Username:      username,
		Password:      password,
		AssetsDir:     envOrDefault("LINKS_ASSETS_DIR", "./assets"),
		ParentDomain:  strings.ToLower(os.Getenv("LINKS_PARENT_DOMAIN")),
		GeoIPPath:     os.Getenv("LINKS_GEOIP_PATH"),
		Fallback:      envOrDefault("LINKS_FALLBACK", FallbackNotFound),
		FlushInterval: parseDuration("LINKS_FLUSH_INTERVAL", 10*time.Second),
		BufferSize:    parseInt("LINKS_BUFFER_SIZE", 50000),
		CacheSize:     parseInt("LINKS_CACHE_SIZE", 10000),
	}

	if cfg.Fallback != FallbackNotFound && cfg.Fallback != FallbackAssets {
		return nil, fmt.Errorf("LINKS_FALLBACK must be %q or %q", FallbackNotFound, FallbackAssets)
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("LINKS_FLUSH_INTERVAL must be positive")
	}
	if cfg.BufferSize <= 0 {
		return nil, fmt.Errorf("LINKS_BUFFER_SIZE must be positive")
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("LINKS_CACHE_SIZE must be positive")
	}

	return cfg, nil
}

// IsOriginAllowed reports whether a CORS origin belongs to the configured
// parent domain or one of its subdomains.
func (c *Config) IsOriginAllowed(origin string) bool {
	if c.ParentDomain == "" {
		return false
	}
	host := strings.ToLower(origin)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host == c.ParentDomain || strings.HasSuffix(host, "."+c.ParentDomain)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
