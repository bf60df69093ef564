package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/hsspgest/internal/hssp"
)

// ErrNotFound is returned when a document ID is not in the store.
var ErrNotFound = errors.New("document not found")

// RetryableError wraps a backend failure that may succeed on a later
// attempt, such as a dropped connection or a 5xx from a remote store.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (%s): %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Entry is a parsed document together with its ingest metadata.
type Entry struct {
	DocID       string
	Filename    string
	Title       string
	ContentHash string
	CreatedAt   time.Time
	Doc         *hssp.Document
}

// Summary is the listing view of an entry.
type Summary struct {
	DocID       string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"content_hash"`
	PDBID       string    `json:"pdb_id"`
	SeqLength   int       `json:"seq_length"`
	NAlign      int       `json:"n_align"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Entry) Summary() Summary {
	s := Summary{
		DocID:       e.DocID,
		Filename:    e.Filename,
		Title:       e.Title,
		ContentHash: e.ContentHash,
		CreatedAt:   e.CreatedAt,
	}
	if e.Doc != nil {
		s.PDBID = e.Doc.PDBID
		s.SeqLength = e.Doc.SeqLength
		s.NAlign = e.Doc.NAlign
	}
	return s
}

// HomologQuery selects homologs by accession number or by sequence
// database ID. Matching is case-insensitive. At least one field must be set.
type HomologQuery struct {
	AccNum string
	ID     string
}

func (q HomologQuery) Validate() error {
	if q.AccNum == "" && q.ID == "" {
		return errors.New("accnum or id is required")
	}
	return nil
}

// HomologHit is one homolog of one stored document that matched a query.
type HomologHit struct {
	DocID    string  `json:"doc_id"`
	PDBID    string  `json:"pdb_id"`
	NR       int     `json:"nr"`
	ID       string  `json:"id"`
	AccNum   string  `json:"accnum"`
	STRID    string  `json:"strid,omitempty"`
	Identity float64 `json:"ide"`
}

// Store persists parsed documents. Implementations are safe for concurrent
// use. Put replaces any existing entry with the same DocID.
type Store interface {
	Put(ctx context.Context, e *Entry) error
	Get(ctx context.Context, docID string) (*Entry, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, docID string) error
	// FindByHash returns the ID of a document ingested from identical bytes.
	FindByHash(ctx context.Context, hash string) (string, bool, error)
	SearchHomologs(ctx context.Context, q HomologQuery) ([]HomologHit, error)
	Close() error
}

func (q HomologQuery) matches(h hssp.HomologRecord) bool {
	if q.AccNum != "" && !strings.EqualFold(q.AccNum, h.AccNum) {
		return false
	}
	if q.ID != "" && !strings.EqualFold(q.ID, h.ID) {
		return false
	}
	return true
}

// matchHomologs scans the homolog table of e.
func matchHomologs(e *Entry, q HomologQuery) []HomologHit {
	if e.Doc == nil {
		return nil
	}
	var hits []HomologHit
	for _, h := range e.Doc.Homologs.All() {
		if q.matches(h) {
			hits = append(hits, newHit(e, h))
		}
	}
	return hits
}

func newHit(e *Entry, h hssp.HomologRecord) HomologHit {
	return HomologHit{
		DocID:    e.DocID,
		PDBID:    e.Doc.PDBID,
		NR:       h.NR,
		ID:       h.ID,
		AccNum:   h.AccNum,
		STRID:    h.STRID,
		Identity: h.Identity,
	}
}

// sortHits orders hits by document then homolog number.
func sortHits(hits []HomologHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DocID != hits[j].DocID {
			return hits[i].DocID < hits[j].DocID
		}
		return hits[i].NR < hits[j].NR
	})
}

// sortSummaries orders summaries newest first, then by ID.
func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.After(s[j].CreatedAt)
		}
		return s[i].DocID < s[j].DocID
	})
}

func validateEntry(e *Entry) error {
	if e == nil || e.DocID == "" {
		return errors.New("entry has no doc id")
	}
	if e.Doc == nil {
		return fmt.Errorf("entry %s has no document", e.DocID)
	}
	return nil
}
