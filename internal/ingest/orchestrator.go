package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"giftfeed/internal/feed"
	"giftfeed/internal/model"
	"giftfeed/internal/observability"
)

// ErrAlreadyRunning is returned when another sync invocation holds the
// cross-process lock.
var ErrAlreadyRunning = errors.New("a sync run is already in progress")

type RunLogStore interface {
	Insert(ctx context.Context, lg model.RunLog) error
	// Finish updates the record with lg.ID to its terminal state.
	Finish(ctx context.Context, lg model.RunLog) error
}

type Downloader interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Summary aggregates one run across all feeds. Only aggregate counts are
// reported; per-row failures are a log line, not a payload.
type Summary struct {
	Status   string
	Found    int
	Written  int
	Skipped  int
	Failed   int
	Errors   []string
	Duration time.Duration
}

// Orchestrator drives locate -> fetch -> decode -> normalize -> write for
// each configured feed, strictly one feed at a time: sequential processing
// bounds memory and keeps the affiliate network's rate limits happy.
type Orchestrator struct {
	Writer      *Writer
	RunLogs     RunLogStore
	Fetcher     Downloader
	Locate      func(fd model.FeedDescriptor) (string, error)
	Lock        Locker // optional; nil disables cross-invocation locking
	Label       string // run-log platform label
	Compression string // feed.CompressionZip or feed.CompressionNone
}

// NewAwin wires an orchestrator for Awin datafeeds. A missing API key is a
// configuration error surfaced before any I/O happens.
func NewAwin(products ProductStore, runlogs RunLogStore, fetcher Downloader, apiKey string) (*Orchestrator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing AWIN_API_KEY")
	}
	return &Orchestrator{
		Writer:  NewWriter(products),
		RunLogs: runlogs,
		Fetcher: fetcher,
		Locate: func(fd model.FeedDescriptor) (string, error) {
			return feed.BuildFeedURL(apiKey, fd.FeedID, nil, feed.CompressionZip)
		},
		Label:       "awin-sync",
		Compression: feed.CompressionZip,
	}, nil
}

// Run processes all feeds and persists exactly one terminal run-log
// record. Feed-level failures are absorbed: one bad feed must not block
// ingestion of the others.
func (o *Orchestrator) Run(ctx context.Context, feeds []model.FeedDescriptor) (*Summary, error) {
	if len(feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	if o.Lock != nil {
		ok, err := o.Lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !ok {
			return nil, ErrAlreadyRunning
		}
		defer o.Lock.Release(ctx)
	}

	start := time.Now()
	sum := &Summary{}
	var httpStatus int

	// The running record goes in up front so a crash mid-run leaves a
	// visible stuck entry for the healthcheck instead of nothing at all.
	lg := model.RunLog{
		ID:        uuid.NewString(),
		Platform:  o.Label,
		Status:    model.RunStatusRunning,
		CreatedAt: start.UTC(),
	}
	inserted := true
	if err := o.RunLogs.Insert(ctx, lg); err != nil {
		log.Printf("write running log: %v", err)
		inserted = false
	}

	for _, fd := range feeds {
		if err := o.syncFeed(ctx, fd, sum); err != nil {
			log.Printf("feed %d (%s): %v", fd.FeedID, fd.Platform, err)
			sum.Errors = append(sum.Errors, fmt.Sprintf("feed %d: %v", fd.FeedID, err))
			observability.FeedErrors.Inc()
			var de *feed.DownloadError
			if errors.As(err, &de) {
				httpStatus = de.Status
			}
		}
	}

	sum.Duration = time.Since(start)
	sum.Status = model.RunStatusSuccess
	if len(sum.Errors) > 0 {
		sum.Status = model.RunStatusError
	}

	lg.Status = sum.Status
	lg.ItemsFound = sum.Found
	lg.ItemsSaved = sum.Written
	lg.ErrorMsg = strings.Join(sum.Errors, "; ")
	lg.HTTPStatus = httpStatus
	lg.DurationMS = sum.Duration.Milliseconds()

	var logErr error
	if inserted {
		logErr = o.RunLogs.Finish(ctx, lg)
	} else {
		logErr = o.RunLogs.Insert(ctx, lg)
	}
	if logErr != nil {
		// The catalog is already accurate; losing the log entry is the
		// accepted non-transactional gap the healthcheck covers.
		log.Printf("write run log: %v", logErr)
	}
	observability.SyncRuns.WithLabelValues(sum.Status).Inc()

	return sum, nil
}

func (o *Orchestrator) syncFeed(ctx context.Context, fd model.FeedDescriptor, sum *Summary) error {
	url, err := o.Locate(fd)
	if err != nil {
		return err
	}

	path, err := o.Fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	stream := feed.StreamArchive
	if o.Compression == feed.CompressionNone {
		stream = feed.StreamPlain
	}
	mapper := feed.MapperFor(fd.Network)

	return stream(path, func(rec feed.Record) error {
		sum.Found++
		observability.RowsRead.Inc()

		cand, ok := mapper.Map(rec, fd)
		if !ok {
			sum.Skipped++
			observability.RowsSkipped.Inc()
			return nil
		}

		outcome, err := o.Writer.Write(ctx, cand)
		switch outcome {
		case Written:
			sum.Written++
			observability.RowsWritten.Inc()
		case SkippedUnclassified:
			sum.Skipped++
			observability.RowsSkipped.Inc()
		case Failed:
			sum.Failed++
			observability.RowsFailed.Inc()
			log.Printf("write %s: %v", cand.SourceURL, err)
		}
		// Row outcomes never abort the stream.
		return nil
	})
}
