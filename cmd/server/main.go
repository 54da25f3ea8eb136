package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"giftfeed/internal/config"
	"giftfeed/internal/db"
	"giftfeed/internal/feed"
	"giftfeed/internal/ingest"
	"giftfeed/internal/observability"
	"giftfeed/internal/repository"
	"giftfeed/internal/synclock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.SyncSecret == "" {
		log.Fatal("SYNC_SECRET is required to expose the trigger endpoint")
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

	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/", requireSecret(cfg.SyncSecret))
	authed.POST("/sync", func(c *gin.Context) {
		sum, err := orch.Run(c.Request.Context(), cfg.Feeds)
		if errors.Is(err, ingest.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  sum.Status,
			"found":   sum.Found,
			"written": sum.Written,
			"skipped": sum.Skipped,
			"failed":  sum.Failed,
			"errors":  sum.Errors,
			"took_ms": sum.Duration.Milliseconds(),
		})
	})

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}

func requireSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Sync-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
