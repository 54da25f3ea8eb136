package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"giftfeed/internal/feed"
	"giftfeed/internal/model"
)

// memStore is an in-memory product store keyed by source URL, mirroring
// the store's upsert-on-conflict guarantee.
type memStore struct {
	products map[string]model.Product
	failURLs map[string]error
	upserts  int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]model.Product),
		failURLs: make(map[string]error),
	}
}

func (m *memStore) Upsert(_ context.Context, p model.Product) error {
	m.upserts++
	if err := m.failURLs[p.SourceURL]; err != nil {
		return err
	}
	m.products[p.SourceURL] = p
	return nil
}

type memRunLogs struct {
	logs  map[string]model.RunLog
	order []string
}

func (m *memRunLogs) Insert(_ context.Context, lg model.RunLog) error {
	if m.logs == nil {
		m.logs = make(map[string]model.RunLog)
	}
	m.logs[lg.ID] = lg
	m.order = append(m.order, lg.ID)
	return nil
}

func (m *memRunLogs) Finish(_ context.Context, lg model.RunLog) error {
	cur, ok := m.logs[lg.ID]
	if !ok {
		return fmt.Errorf("no run log with id %s", lg.ID)
	}
	lg.CreatedAt = cur.CreatedAt
	m.logs[lg.ID] = lg
	return nil
}

// records returns the stored run logs in insertion order.
func (m *memRunLogs) records() []model.RunLog {
	var out []model.RunLog
	for _, id := range m.order {
		out = append(out, m.logs[id])
	}
	return out
}

// fakeFetcher serves canned CSV payloads as temp files and records the
// paths it hands out so tests can assert cleanup.
type fakeFetcher struct {
	payloads map[string]string
	errs     map[string]error
	paths    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	payload, ok := f.payloads[url]
	if !ok {
		return "", fmt.Errorf("no payload for %s", url)
	}
	tmp, err := os.CreateTemp("", "feed-test-*.csv")
	if err != nil {
		return "", err
	}
	if _, err := tmp.WriteString(payload); err != nil {
		tmp.Close()
		return "", err
	}
	tmp.Close()
	f.paths = append(f.paths, tmp.Name())
	return tmp.Name(), nil
}

const awinHeader = "product_name,description,search_price,currency,aw_image_url,aw_deep_link,merchant_category,merchant_product_category\n"

func testOrchestrator(fetcher *fakeFetcher, store *memStore, logs *memRunLogs) *Orchestrator {
	return &Orchestrator{
		Writer:  NewWriter(store),
		RunLogs: logs,
		Fetcher: fetcher,
		Locate: func(fd model.FeedDescriptor) (string, error) {
			return fmt.Sprintf("feed://%d", fd.FeedID), nil
		},
		Label:       "awin-sync",
		Compression: feed.CompressionNone,
	}
}

func descriptors(ids ...int) []model.FeedDescriptor {
	var fds []model.FeedDescriptor
	for _, id := range ids {
		fds = append(fds, model.FeedDescriptor{FeedID: id, Platform: fmt.Sprintf("shop%d", id), Network: "awin"})
	}
	return fds
}

func TestRunSuccess(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]string{
		"feed://1": awinHeader +
			"Sinfonía n. 2 (CD),,14.95,EUR,,https://x/1,Música y Ocio,\n" + // written
			"Libro de cocina,,abc,EUR,,https://x/2,Libros,\n" + // bad price -> skipped
			"Widget 3000,,5.00,EUR,,https://x/3,Unknown Zone,\n" + // unclassified -> skipped
			"Taza cerámica,,9.99,,,https://x/4,Hogar,\n", // written, EUR default
	}}
	store := newMemStore()
	logs := &memRunLogs{}

	sum, err := testOrchestrator(fetcher, store, logs).Run(context.Background(), descriptors(1))
	if err != nil {
		t.Fatal(err)
	}

	if sum.Found != 4 || sum.Written != 2 || sum.Skipped != 2 || sum.Failed != 0 {
		t.Errorf("counts = %+v", sum)
	}
	if sum.Status != model.RunStatusSuccess {
		t.Errorf("status = %q", sum.Status)
	}
	if store.products["https://x/4"].Currency != "EUR" {
		t.Errorf("currency default lost: %+v", store.products["https://x/4"])
	}

	records := logs.records()
	if len(records) != 1 {
		t.Fatalf("got %d run-log records, want exactly 1", len(records))
	}
	lg := records[0]
	if lg.Status != model.RunStatusSuccess || lg.ItemsFound != 4 || lg.ItemsSaved != 2 {
		t.Errorf("run log = %+v", lg)
	}
	if lg.ErrorMsg != "" || lg.HTTPStatus != 0 {
		t.Errorf("clean run carries error fields: %+v", lg)
	}
	if lg.ID == "" {
		t.Error("run log id empty")
	}
}

func TestRunPartialFailureIsolation(t *testing.T) {
	row := func(n int) string {
		return fmt.Sprintf("Vinilo %d,,10.00,EUR,,https://x/%d,Música,\n", n, n)
	}
	fetcher := &fakeFetcher{
		payloads: map[string]string{
			"feed://1": awinHeader + row(1),
			"feed://3": awinHeader + row(3),
		},
		errs: map[string]error{
			"feed://2": &feed.DownloadError{URL: "feed://2", Status: 503, Body: "maintenance"},
		},
	}
	store := newMemStore()
	logs := &memRunLogs{}

	sum, err := testOrchestrator(fetcher, store, logs).Run(context.Background(), descriptors(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}

	if len(store.products) != 2 {
		t.Errorf("feeds 1 and 3 should still be ingested, got %d products", len(store.products))
	}
	if sum.Status != model.RunStatusError {
		t.Errorf("status = %q, want error", sum.Status)
	}
	if len(sum.Errors) != 1 || !strings.Contains(sum.Errors[0], "feed 2") {
		t.Errorf("errors = %v", sum.Errors)
	}

	lg := logs.records()[0]
	if lg.Status != model.RunStatusError {
		t.Errorf("run log status = %q", lg.Status)
	}
	if lg.ItemsFound != 2 || lg.ItemsSaved != 2 {
		t.Errorf("counts reflect failed feed: %+v", lg)
	}
	if lg.HTTPStatus != 503 {
		t.Errorf("http status = %d, want 503", lg.HTTPStatus)
	}
}

func TestRunUpsertIdempotence(t *testing.T) {
	payload := awinHeader + "Sinfonía (CD),,14.95,EUR,,https://x/1,Música,\n"
	store := newMemStore()
	logs := &memRunLogs{}

	for i := 0; i < 2; i++ {
		fetcher := &fakeFetcher{payloads: map[string]string{"feed://1": payload}}
		if _, err := testOrchestrator(fetcher, store, logs).Run(context.Background(), descriptors(1)); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.products) != 1 {
		t.Fatalf("re-ingestion duplicated the row: %d products", len(store.products))
	}

	// Third ingestion with a changed price updates in place.
	updated := awinHeader + "Sinfonía (CD),,12.50,EUR,,https://x/1,Música,\n"
	fetcher := &fakeFetcher{payloads: map[string]string{"feed://1": updated}}
	if _, err := testOrchestrator(fetcher, store, logs).Run(context.Background(), descriptors(1)); err != nil {
		t.Fatal(err)
	}
	if len(store.products) != 1 {
		t.Fatalf("price update created a second row: %d products", len(store.products))
	}
	if got := store.products["https://x/1"].Price; got != 12.50 {
		t.Errorf("price = %v, want 12.50", got)
	}
}

func TestRunRowWriteFailureDoesNotStallStream(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]string{
		"feed://1": awinHeader +
			"Vinilo 1,,10.00,EUR,,https://x/1,Música,\n" +
			"Vinilo 2,,10.00,EUR,,https://x/2,Música,\n" +
			"Vinilo 3,,10.00,EUR,,https://x/3,Música,\n",
	}}
	store := newMemStore()
	store.failURLs["https://x/2"] = errors.New("store rejected row")
	logs := &memRunLogs{}

	sum, err := testOrchestrator(fetcher, store, logs).Run(context.Background(), descriptors(1))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Written != 2 || sum.Failed != 1 {
		t.Errorf("counts = %+v", sum)
	}
	// Row failures are not feed failures; the run itself succeeded.
	if sum.Status != model.RunStatusSuccess {
		t.Errorf("status = %q, want success", sum.Status)
	}
}

func TestRunRemovesTempFiles(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]string{
		"feed://1": awinHeader + "Vinilo,,10.00,EUR,,https://x/1,Música,\n",
	}}
	store := newMemStore()
	logs := &memRunLogs{}

	if _, err := testOrchestrator(fetcher, store, logs).Run(context.Background(), descriptors(1)); err != nil {
		t.Fatal(err)
	}
	for _, p := range fetcher.paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("temp file %s not removed", filepath.Base(p))
		}
	}
}

func TestRunRequiresFeeds(t *testing.T) {
	o := testOrchestrator(&fakeFetcher{}, newMemStore(), &memRunLogs{})
	if _, err := o.Run(context.Background(), nil); err == nil {
		t.Fatal("empty feed list accepted")
	}
}

func TestNewAwinRequiresAPIKey(t *testing.T) {
	if _, err := NewAwin(newMemStore(), &memRunLogs{}, &fakeFetcher{}, " "); err == nil {
		t.Fatal("blank api key accepted")
	}
}

type heldLock struct{ released bool }

func (h *heldLock) Acquire(context.Context) (bool, error) { return false, nil }
func (h *heldLock) Release(context.Context) error         { h.released = true; return nil }

func TestRunRejectedWhileLockHeld(t *testing.T) {
	logs := &memRunLogs{}
	o := testOrchestrator(&fakeFetcher{}, newMemStore(), logs)
	o.Lock = &heldLock{}

	_, err := o.Run(context.Background(), descriptors(1))
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}
	if len(logs.records()) != 0 {
		t.Error("rejected run wrote a run-log record")
	}
}

// runningCheck asserts a running record is visible while feeds download,
// so a crash mid-run cannot pass unnoticed.
type runningCheck struct {
	inner *fakeFetcher
	logs  *memRunLogs
	t     *testing.T
}

func (r *runningCheck) Fetch(ctx context.Context, url string) (string, error) {
	records := r.logs.records()
	if len(records) != 1 || records[0].Status != model.RunStatusRunning {
		r.t.Errorf("no running record visible during fetch: %+v", records)
	}
	return r.inner.Fetch(ctx, url)
}

func TestRunMarksRunningBeforeFetching(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]string{
		"feed://1": awinHeader + "Vinilo,,10.00,EUR,,https://x/1,Música,\n",
	}}
	store := newMemStore()
	logs := &memRunLogs{}

	o := testOrchestrator(fetcher, store, logs)
	o.Fetcher = &runningCheck{inner: fetcher, logs: logs, t: t}

	if _, err := o.Run(context.Background(), descriptors(1)); err != nil {
		t.Fatal(err)
	}
	records := logs.records()
	if len(records) != 1 || records[0].Status != model.RunStatusSuccess {
		t.Fatalf("terminal record missing or wrong: %+v", records)
	}
}
