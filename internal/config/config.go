package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"giftfeed/internal/model"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	AwinAPIKey  string
	SyncSecret  string
	MetricsPort string
	HTTPAddr    string
	Feeds       []model.FeedDescriptor
}

func Load() (*Config, error) {
	// .env da raiz do projeto, depois o diretório atual
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	feeds, err := ParseFeeds(os.Getenv("FEEDS"))
	if err != nil {
		return nil, fmt.Errorf("parse FEEDS: %w", err)
	}

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AwinAPIKey:  os.Getenv("AWIN_API_KEY"),
		SyncSecret:  os.Getenv("SYNC_SECRET"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		Feeds:       feeds,
	}, nil
}

// ParseFeeds parses a comma separated list of feedID:platform:network
// triples, e.g. "64819:tiendamusica:awin,72051:regalosmil:awin".
func ParseFeeds(s string) ([]model.FeedDescriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var feeds []model.FeedDescriptor
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid feed entry %q, want feedID:platform:network", entry)
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid feed id in %q: %w", entry, err)
		}
		feeds = append(feeds, model.FeedDescriptor{
			FeedID:   id,
			Platform: strings.TrimSpace(parts[1]),
			Network:  strings.ToLower(strings.TrimSpace(parts[2])),
		})
	}
	return feeds, nil
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
