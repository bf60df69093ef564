package store

import (
	"context"
	"sync"
)

// Memory keeps entries in process. Entries are stored encoded so callers
// never share a Document with the store.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	sums   map[string]Summary
	byHash map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		docs:   make(map[string][]byte),
		sums:   make(map[string]Summary),
		byHash: make(map[string]string),
	}
}

func (m *Memory) Put(_ context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sums[e.DocID]; ok && m.byHash[old.ContentHash] == e.DocID {
		delete(m.byHash, old.ContentHash)
	}
	m.docs[e.DocID] = data
	m.sums[e.DocID] = e.Summary()
	if e.ContentHash != "" {
		m.byHash[e.ContentHash] = e.DocID
	}
	return nil
}

func (m *Memory) Get(_ context.Context, docID string) (*Entry, error) {
	m.mu.RLock()
	data, ok := m.docs[docID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeEntry(data)
}

func (m *Memory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.sums))
	for _, s := range m.sums {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sortSummaries(out)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sums[docID]
	if !ok {
		return ErrNotFound
	}
	if m.byHash[s.ContentHash] == docID {
		delete(m.byHash, s.ContentHash)
	}
	delete(m.docs, docID)
	delete(m.sums, docID)
	return nil
}

func (m *Memory) FindByHash(_ context.Context, hash string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byHash[hash]
	return id, ok, nil
}

func (m *Memory) SearchHomologs(ctx context.Context, q HomologQuery) ([]HomologHit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	blobs := make([][]byte, 0, len(m.docs))
	for _, data := range m.docs {
		blobs = append(blobs, data)
	}
	m.mu.RUnlock()

	var hits []HomologHit
	for _, data := range blobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := decodeEntry(data)
		if err != nil {
			return nil, err
		}
		hits = append(hits, matchHomologs(e, q)...)
	}
	sortHits(hits)
	return hits, nil
}

func (m *Memory) Close() error { return nil }
