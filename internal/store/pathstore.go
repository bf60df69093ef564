package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgallion1/hsspgest/internal/pathstore"
)

// Pathstore keeps documents in a remote pathstore KV service. Layout under
// the prefix:
//
//	documents/{docID}                  summary plus encoded entry
//	by_hash/{hash}/{docID}             dedup index
//	homologs/accnum/{ACC}/{docID}      search index
//	homologs/id/{ID}/{docID}           search index
type Pathstore struct {
	client *pathstore.Client
	prefix string
}

// pathstoreDoc is the JSON value stored at documents/{docID}. Body is the
// gob encoding and travels as base64.
type pathstoreDoc struct {
	Summary Summary `json:"summary"`
	Body    []byte  `json:"body"`
}

func NewPathstore(client *pathstore.Client, prefix string) *Pathstore {
	return &Pathstore{client: client, prefix: strings.Trim(prefix, "/")}
}

func (p *Pathstore) key(parts ...string) string {
	esc := make([]string, 0, len(parts)+1)
	if p.prefix != "" {
		esc = append(esc, p.prefix)
	}
	for _, s := range parts {
		esc = append(esc, url.PathEscape(s))
	}
	return strings.Join(esc, "/")
}

func (p *Pathstore) docKey(docID string) string { return p.key("documents", docID) }

func (p *Pathstore) indexKeys(e *Entry) []string {
	var keys []string
	if e.ContentHash != "" {
		keys = append(keys, p.key("by_hash", e.ContentHash, e.DocID))
	}
	seen := make(map[string]bool)
	for _, h := range e.Doc.Homologs.All() {
		for _, k := range []string{
			p.key("homologs", "accnum", strings.ToUpper(h.AccNum), e.DocID),
			p.key("homologs", "id", strings.ToUpper(h.ID), e.DocID),
		} {
			if !seen[k] && !strings.Contains(k, "//") {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func (p *Pathstore) Put(ctx context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	body, err := encodeEntry(e)
	if err != nil {
		return err
	}
	if old, err := p.Get(ctx, e.DocID); err == nil {
		if err := p.deleteIndexes(ctx, old); err != nil {
			return err
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := p.client.PutNode(ctx, p.docKey(e.DocID), pathstore.NodeRequest{
		Value:  pathstoreDoc{Summary: e.Summary(), Body: body},
		Source: "hsspgest",
	}); err != nil {
		return pathstoreErr("put document", err)
	}
	for _, k := range p.indexKeys(e) {
		if err := p.client.PutNode(ctx, k, pathstore.NodeRequest{Value: e.DocID, Source: "hsspgest"}); err != nil {
			return pathstoreErr("put index", err)
		}
	}
	return nil
}

func (p *Pathstore) getDoc(ctx context.Context, docID string) (*pathstoreDoc, error) {
	node, err := p.client.GetNode(ctx, p.docKey(docID))
	if err != nil {
		return nil, pathstoreErr("get document", err)
	}
	if node == nil {
		return nil, ErrNotFound
	}
	var doc pathstoreDoc
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (p *Pathstore) Get(ctx context.Context, docID string) (*Entry, error) {
	doc, err := p.getDoc(ctx, docID)
	if err != nil {
		return nil, err
	}
	return decodeEntry(doc.Body)
}

func (p *Pathstore) List(ctx context.Context) ([]Summary, error) {
	nodes, err := p.client.ListChildren(ctx, p.key("documents"), 0)
	if err != nil {
		return nil, pathstoreErr("list documents", err)
	}
	out := make([]Summary, 0, len(nodes))
	for _, n := range nodes {
		var doc pathstoreDoc
		if err := n.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.Summary)
	}
	sortSummaries(out)
	return out, nil
}

func (p *Pathstore) Delete(ctx context.Context, docID string) error {
	e, err := p.Get(ctx, docID)
	if err != nil {
		return err
	}
	if err := p.deleteIndexes(ctx, e); err != nil {
		return err
	}
	if err := p.client.DeleteNode(ctx, p.docKey(docID), false); err != nil {
		return pathstoreErr("delete document", err)
	}
	return nil
}

func (p *Pathstore) deleteIndexes(ctx context.Context, e *Entry) error {
	for _, k := range p.indexKeys(e) {
		if err := p.client.DeleteNode(ctx, k, false); err != nil {
			return pathstoreErr("delete index", err)
		}
	}
	return nil
}

func (p *Pathstore) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	nodes, err := p.client.ListChildren(ctx, p.key("by_hash", hash), 1)
	if err != nil {
		return "", false, pathstoreErr("find by hash", err)
	}
	if len(nodes) == 0 {
		return "", false, nil
	}
	var id string
	if err := nodes[0].Decode(&id); err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (p *Pathstore) SearchHomologs(ctx context.Context, q HomologQuery) ([]HomologHit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var prefix string
	if q.AccNum != "" {
		prefix = p.key("homologs", "accnum", strings.ToUpper(q.AccNum))
	} else {
		prefix = p.key("homologs", "id", strings.ToUpper(q.ID))
	}
	nodes, err := p.client.ListChildren(ctx, prefix, 0)
	if err != nil {
		return nil, pathstoreErr("search homologs", err)
	}

	var hits []HomologHit
	for _, n := range nodes {
		var id string
		if err := n.Decode(&id); err != nil {
			return nil, err
		}
		e, err := p.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		hits = append(hits, matchHomologs(e, q)...)
	}
	sortHits(hits)
	return hits, nil
}

func (p *Pathstore) Close() error {
	p.client.Close()
	return nil
}

// pathstoreErr marks transport failures and server-side statuses as
// retryable.
func pathstoreErr(op string, err error) error {
	var se *pathstore.StatusError
	if errors.As(err, &se) {
		if se.Temporary() {
			return &RetryableError{Op: "pathstore " + op, Err: err}
		}
		return fmt.Errorf("pathstore %s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("pathstore %s: %w", op, err)
	}
	return &RetryableError{Op: "pathstore " + op, Err: err}
}
