package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the server and scraper need from the
// environment. Load never fails; every field has a usable default.
type Config struct {
	Port    string
	BaseURL string
	Debug   bool

	// Languages is the recognized-language vocabulary used by the
	// detail and streaming scrapers.
	Languages []string

	// BlockedHosts are embed provider domains that are known dead and
	// must never win the embed race.
	BlockedHosts []string

	// BrowserFallback enables the headless-browser extraction path when
	// static fetching finds no streaming sources.
	BrowserFallback bool
}

var defaultLanguages = []string{"Hindi", "Tamil", "Telugu", "English", "Japanese", "Urdu"}

var defaultBlockedHosts = []string{"sbplay", "streamsb"}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		BaseURL:         strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "https://multimovies.online"), "/"),
		Debug:           getEnv("DEBUG", "") != "",
		Languages:       getEnvList("LANGUAGES", defaultLanguages),
		BlockedHosts:    getEnvList("BLOCKED_HOSTS", defaultBlockedHosts),
		BrowserFallback: getEnv("BROWSER_FALLBACK", "") != "",
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
