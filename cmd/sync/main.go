package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"giftfeed/internal/config"
	"giftfeed/internal/db"
	"giftfeed/internal/feed"
	"giftfeed/internal/ingest"
	"giftfeed/internal/observability"
	"giftfeed/internal/repository"
	"giftfeed/internal/synclock"
)

// go run cmd/sync/main.go
// go run cmd/sync/main.go -feeds="64819:tiendamusica:awin,72051:regalosmil:awin"
func main() {
	feedsArg := flag.String("feeds", "", "override FEEDS: comma separated feedID:platform:network")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	feeds := cfg.Feeds
	if *feedsArg != "" {
		feeds, err = config.ParseFeeds(*feedsArg)
		if err != nil {
			log.Fatalf("parse -feeds: %v", err)
		}
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	observability.Start(cfg.MetricsPort)

	orch, err := ingest.NewAwin(
		&repository.ProductRepository{DB: pool},
		&repository.RunLogRepository{DB: pool},
		feed.NewFetcher(),
		cfg.AwinAPIKey,
	)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("parse REDIS_URL: %v", err)
		}
		orch.Lock = synclock.New(redis.NewClient(opts), "giftfeed:sync:lock", 30*time.Minute)
	}

	sum, err := orch.Run(ctx, feeds)
	if err != nil {
		log.Fatalf("sync: %v", err)
	}

	log.Printf("sync %s: found=%d written=%d skipped=%d failed=%d in %s",
		sum.Status, sum.Found, sum.Written, sum.Skipped, sum.Failed, sum.Duration.Round(time.Millisecond))
	for _, e := range sum.Errors {
		log.Printf("feed error: %s", e)
	}
}
