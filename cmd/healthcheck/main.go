package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"giftfeed/internal/config"
	"giftfeed/internal/db"
	"giftfeed/internal/repository"
)

// A crash between the last upsert and the terminal log write leaves a
// run-log row stuck in "running"; this check is how monitoring finds out.
//
// go run cmd/healthcheck/main.go -max-age=2h
// go run cmd/healthcheck/main.go -counts
func main() {
	maxAge := flag.Duration("max-age", 2*time.Hour, "treat running entries older than this as stuck")
	counts := flag.Bool("counts", false, "also print product counts per category")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer conn.Close()

	repo := &repository.ReportRepository{DB: conn}

	if *counts {
		byCategory, err := repo.CategoryCounts()
		if err != nil {
			log.Fatalf("category counts: %v", err)
		}
		for category, n := range byCategory {
			fmt.Printf("%-24s %d\n", category, n)
		}
	}

	stuck, err := repo.StuckRuns(*maxAge)
	if err != nil {
		log.Fatalf("query stuck runs: %v", err)
	}
	if len(stuck) == 0 {
		fmt.Println("ok: no stuck sync runs")
		return
	}

	for _, lg := range stuck {
		fmt.Printf("stuck: %s platform=%s started=%s\n", lg.ID, lg.Platform, lg.CreatedAt.Format(time.RFC3339))
	}
	os.Exit(1)
}
