package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/hsspgest/internal/config"
	"github.com/dgallion1/hsspgest/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleHSSP(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "parser", "testdata", "1tst.hssp"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return data
}

// flakyStore fails the first n Puts with a retryable error.
type flakyStore struct {
	*store.Memory
	failures int
	puts     int
}

func (s *flakyStore) Put(ctx context.Context, e *store.Entry) error {
	s.puts++
	if s.puts <= s.failures {
		return &store.RetryableError{Op: "put", Err: errors.New("connection reset")}
	}
	return s.Memory.Put(ctx, e)
}

var testRetry = RetryPolicy{Attempts: 3, Base: time.Millisecond, Max: 2 * time.Millisecond}

func newTestWorker(st store.Store) *Worker {
	return NewWorker(st, NewParseStats(time.Hour), testRetry, testLogger())
}

func TestWorker_Process(t *testing.T) {
	st := store.NewMemory()
	w := newTestWorker(st)
	job := NewJob("1tst", "1tst.hssp", "sample", sampleHSSP(t))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Residues != 3 || snap.Progress.Homologs != 2 || snap.Progress.Insertions != 1 {
		t.Errorf("unexpected progress: %+v", snap.Progress)
	}
	if len(snap.Progress.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", snap.Progress.Warnings)
	}
	if job.FileData() != nil {
		t.Error("expected file data released after processing")
	}

	e, err := st.Get(context.Background(), "1tst")
	if err != nil {
		t.Fatalf("get stored entry: %v", err)
	}
	if e.Title != "sample" || e.Doc.PDBID != "1tst" {
		t.Errorf("unexpected entry: title %q, pdb %q", e.Title, e.Doc.PDBID)
	}
	if e.ContentHash != ContentHashHex(sampleHSSP(t)) {
		t.Errorf("expected content hash of raw upload, got %q", e.ContentHash)
	}
	if w.stats.Snapshot().Count != 1 {
		t.Error("expected one parse sample")
	}
}

func TestWorker_DuplicateSkipped(t *testing.T) {
	st := store.NewMemory()
	w := newTestWorker(st)
	data := sampleHSSP(t)

	w.Process(context.Background(), NewJob("first", "1tst.hssp", "", data))
	dup := NewJob("second", "1tst.hssp", "", data)
	w.Process(context.Background(), dup)

	snap := dup.Snapshot()
	if snap.Status != StatusDupSkipped {
		t.Fatalf("expected status %q, got %q", StatusDupSkipped, snap.Status)
	}
	if snap.ExistingDocID != "first" {
		t.Errorf("expected existing doc %q, got %q", "first", snap.ExistingDocID)
	}
	if _, err := st.Get(context.Background(), "second"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected duplicate not to be stored, got %v", err)
	}

	// Re-ingesting under the same ID replaces rather than skips.
	again := NewJob("first", "1tst.hssp", "", data)
	w.Process(context.Background(), again)
	if s := again.Snapshot().Status; s != StatusCompleted {
		t.Errorf("expected re-ingest to complete, got %q", s)
	}
}

func TestWorker_MalformedFile(t *testing.T) {
	st := store.NewMemory()
	w := newTestWorker(st)
	broken := strings.Replace(string(sampleHSSP(t)), "NALIGN         2", "NALIGN         x", 1)
	job := NewJob("bad", "bad.hssp", "", []byte(broken))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Fatalf("expected failed in parsing, got %q in %q", snap.Status, snap.Phase)
	}
	if !snap.FormatError {
		t.Error("expected format error flag")
	}
	if w.stats.Snapshot().Count != 0 {
		t.Error("expected failed parses not to be sampled")
	}
}

func TestWorker_UnsupportedFile(t *testing.T) {
	w := newTestWorker(store.NewMemory())
	job := NewJob("x", "notes.txt", "", []byte("hello"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", snap.Status)
	}
	if snap.FormatError {
		t.Error("unsupported extension is not a format error")
	}
}

func TestWorker_RetriesTransientStoreErrors(t *testing.T) {
	st := &flakyStore{Memory: store.NewMemory(), failures: 2}
	w := newTestWorker(st)
	job := NewJob("1tst", "1tst.hssp", "", sampleHSSP(t))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed after retries, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", snap.Progress.Attempts)
	}
}

func TestWorker_GivesUpAfterLastAttempt(t *testing.T) {
	st := &flakyStore{Memory: store.NewMemory(), failures: testRetry.Attempts}
	w := newTestWorker(st)
	job := NewJob("1tst", "1tst.hssp", "", sampleHSSP(t))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "storing" {
		t.Fatalf("expected failed in storing, got %q in %q", snap.Status, snap.Phase)
	}
	if snap.Progress.Attempts != testRetry.Attempts {
		t.Errorf("expected %d attempts, got %d", testRetry.Attempts, snap.Progress.Attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&store.RetryableError{Op: "x", Err: errors.New("y")}) {
		t.Error("expected RetryableError to be retryable")
	}
	if IsRetryable(store.ErrNotFound) {
		t.Error("expected ErrNotFound not to be retryable")
	}
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{Attempts: 5, Base: 100 * time.Millisecond, Max: time.Second}
	tests := []struct {
		attempt  int
		min, max time.Duration
	}{
		{0, 100 * time.Millisecond, 150 * time.Millisecond},
		{1, 200 * time.Millisecond, 300 * time.Millisecond},
		{3, 800 * time.Millisecond, 1200 * time.Millisecond},
		{4, time.Second, 1500 * time.Millisecond},
		{40, time.Second, 1500 * time.Millisecond},
	}
	for _, tt := range tests {
		for range 20 {
			if d := p.Backoff(tt.attempt); d < tt.min || d >= tt.max {
				t.Errorf("attempt %d: backoff %s outside [%s, %s)", tt.attempt, d, tt.min, tt.max)
			}
		}
	}

	if d := (RetryPolicy{}).Backoff(2); d != 0 {
		t.Errorf("expected zero backoff for zero policy, got %s", d)
	}
}

func TestNewRetryPolicy(t *testing.T) {
	cfg := config.Config{StoreRetries: 5, StoreRetryBase: 2 * time.Second, StoreRetryMax: 10 * time.Second}
	p := NewRetryPolicy(cfg)
	if p.Attempts != 5 || p.Base != 2*time.Second || p.Max != 10*time.Second {
		t.Errorf("unexpected policy: %+v", p)
	}

	// A worker always makes at least one attempt.
	w := NewWorker(store.NewMemory(), NewParseStats(time.Hour), RetryPolicy{}, testLogger())
	if w.retry.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", w.retry.Attempts)
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour, StatsWindow: time.Hour}
	st := store.NewMemory()
	o := NewOrchestrator(cfg, st, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("1tst", "1tst.hssp", "", sampleHSSP(t))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected submitted job to be tracked")
	}

	deadline := time.Now().Add(5 * time.Second)
	for job.Snapshot().Status != StatusCompleted {
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, status %q", job.Snapshot().Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if o.Stats().Snapshot().Count != 1 {
		t.Error("expected orchestrator stats to record the parse")
	}
	if _, err := o.Store().Get(context.Background(), "1tst"); err != nil {
		t.Errorf("expected stored document, got %v", err)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, store.NewMemory(), testLogger())

	if err := o.Submit(NewJob("a", "a.hssp", "", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b", "b.hssp", "", nil)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if s := second.Snapshot(); s.Status != StatusFailed || s.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %q/%q", s.Status, s.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", o.QueueDepth())
	}
}
