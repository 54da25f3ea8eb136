package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RowsRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftfeed_rows_read_total",
			Help: "Feed rows pulled from the decoder",
		},
	)
	RowsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftfeed_rows_written_total",
			Help: "Rows upserted into the product store",
		},
	)
	RowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftfeed_rows_skipped_total",
			Help: "Rows dropped as malformed or unclassifiable",
		},
	)
	RowsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftfeed_rows_failed_total",
			Help: "Rows the store rejected after retry",
		},
	)
	FeedErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giftfeed_feed_errors_total",
			Help: "Feeds that failed to download or decode",
		},
	)
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftfeed_sync_runs_total",
			Help: "Completed sync runs by terminal status",
		},
		[]string{"status"},
	)
)

func Start(port string) {
	prometheus.MustRegister(RowsRead, RowsWritten, RowsSkipped, RowsFailed, FeedErrors, SyncRuns)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
