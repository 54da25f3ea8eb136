package ingest

import (
	"context"
	"time"

	"giftfeed/internal/classify"
	"giftfeed/internal/model"
)

// ProductStore is the slice of the product repository the pipeline writes
// through.
type ProductStore interface {
	Upsert(ctx context.Context, p model.Product) error
}

type Outcome int

const (
	Written Outcome = iota
	SkippedUnclassified
	Failed
)

// Writer classifies candidates and upserts the ones that land in the
// taxonomy. Unclassifiable rows are skipped on purpose: the catalog must
// not accumulate products nobody can browse to.
type Writer struct {
	Store ProductStore
	Now   func() time.Time
}

func NewWriter(store ProductStore) *Writer {
	return &Writer{Store: store, Now: time.Now}
}

// Write never propagates store errors as run failures; the caller counts
// the outcome and moves to the next row.
func (w *Writer) Write(ctx context.Context, c model.Candidate) (Outcome, error) {
	tag, ok := classify.Classify(c.RawCategory, c.Title)
	if !ok {
		return SkippedUnclassified, nil
	}

	p := model.Product{
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		Currency:    c.Currency,
		ImageURL:    c.ImageURL,
		SourceURL:   c.SourceURL,
		Platform:    c.Platform,
		Network:     c.Network,
		Category:    string(tag),
		UpdatedAt:   w.Now(),
	}
	if err := w.Store.Upsert(ctx, p); err != nil {
		return Failed, err
	}
	return Written, nil
}
