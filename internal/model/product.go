package model

import "time"

// FeedDescriptor identifies one advertiser datafeed and where its rows land.
// It is supplied by configuration; the pipeline never persists it.
type FeedDescriptor struct {
	FeedID   int
	Platform string // merchant label stored on each product
	Network  string // affiliate network that serves the feed, e.g. "awin"
}

// Candidate is a normalized feed row waiting for classification.
type Candidate struct {
	Title       string
	Description string
	Price       float64
	Currency    string
	ImageURL    string
	SourceURL   string
	RawCategory string
	Platform    string
	Network     string
}

// Product is the stored catalog entity. SourceURL is the natural key:
// re-ingesting the same URL updates in place, never duplicates.
type Product struct {
	Title       string
	Description string
	Price       float64
	Currency    string
	ImageURL    string
	SourceURL   string
	Platform    string
	Network     string
	Category    string
	UpdatedAt   time.Time
}
