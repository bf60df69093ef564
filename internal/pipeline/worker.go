package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/hsspgest/internal/hssp"
	"github.com/dgallion1/hsspgest/internal/parser"
	"github.com/dgallion1/hsspgest/internal/store"
)

// Worker processes a single ingestion job.
type Worker struct {
	store store.Store
	stats *ParseStats
	retry RetryPolicy
	log   *slog.Logger
}

func NewWorker(st store.Store, stats *ParseStats, retry RetryPolicy, log *slog.Logger) *Worker {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	return &Worker{
		store: st,
		stats: stats,
		retry: retry,
		log:   log,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	defer job.releaseFileData()
	data := job.FileData()

	// Phase 1: Dedup on the raw upload.
	hash := ContentHashHex(data)
	existing, dup, err := w.store.FindByHash(ctx, hash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	}
	if dup && existing != job.DocID {
		log.Info("duplicate document, skipping", "existing_doc_id", existing)
		job.SetDuplicate(hash, existing)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}
	job.SetDuplicate(hash, "")

	// Phase 2: Parse.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("parsing", err, false)
		return
	}

	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	elapsed := time.Since(start)
	if err != nil {
		var fe *hssp.FormatError
		malformed := errors.As(err, &fe)
		log.Error("parse failed", "error", err, "malformed", malformed)
		job.Fail("parsing", err, malformed)
		return
	}
	w.stats.Record(elapsed, doc.Alignments.Len())
	job.SetParsed(doc.Alignments.Len(), doc.Homologs.Len(), len(doc.Insertions), elapsed)
	log.Info("parsed document", "pdb_id", doc.PDBID, "residues", doc.Alignments.Len(),
		"homologs", doc.Homologs.Len(), "duration_ms", elapsed.Milliseconds())

	if err := doc.Verify(); err != nil {
		log.Warn("document failed verification", "error", err)
		job.AddWarning(fmt.Sprintf("verify: %s", err))
	}

	// Phase 3: Store, retrying transient backend failures.
	job.SetStatus(StatusStoring, "storing")
	entry := &store.Entry{
		DocID:       job.DocID,
		Filename:    job.Filename,
		Title:       job.Title,
		ContentHash: hash,
		CreatedAt:   job.CreatedAt,
		Doc:         doc,
	}
	if err := w.put(ctx, log, job, entry); err != nil {
		log.Error("store failed", "error", err)
		job.Fail("storing", fmt.Errorf("store: %w", err), false)
		return
	}

	log.Info("document stored")
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) put(ctx context.Context, log *slog.Logger, job *Job, entry *store.Entry) error {
	var lastErr error
	for attempt := range w.retry.Attempts {
		job.IncrAttempts()
		lastErr = w.store.Put(ctx, entry)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == w.retry.Attempts-1 {
			break
		}
		log.Warn("retryable store error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.retry.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
