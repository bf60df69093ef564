package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-redis/redis/v7"
)

const (
	rkDocs = "hssp:docs"
)

func rkDoc(docID string) string    { return "hssp:doc:" + docID }
func rkSummary(docID string) string { return "hssp:sum:" + docID }
func rkHash(hash string) string     { return "hssp:hash:" + hash }
func rkAccNum(acc string) string    { return "hssp:accnum:" + strings.ToUpper(acc) }
func rkHomID(id string) string      { return "hssp:homid:" + strings.ToUpper(id) }

// Redis stores encoded documents as plain keys and keeps set indexes for
// listing and homolog search. A non-zero ttl expires documents.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects and pings the server.
func OpenRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping().Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Put(ctx context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	body, err := encodeEntry(e)
	if err != nil {
		return err
	}
	sum, err := encodeSummary(e.Summary())
	if err != nil {
		return err
	}

	c := r.client.WithContext(ctx)
	if err := r.dropIndexes(c, e.DocID); err != nil {
		return err
	}

	p := c.TxPipeline()
	p.Set(rkDoc(e.DocID), body, r.ttl)
	p.Set(rkSummary(e.DocID), sum, r.ttl)
	p.SAdd(rkDocs, e.DocID)
	if e.ContentHash != "" {
		p.Set(rkHash(e.ContentHash), e.DocID, r.ttl)
	}
	for _, h := range e.Doc.Homologs.All() {
		if h.AccNum != "" {
			p.SAdd(rkAccNum(h.AccNum), e.DocID)
		}
		if h.ID != "" {
			p.SAdd(rkHomID(h.ID), e.DocID)
		}
	}
	if _, err := p.Exec(); err != nil {
		return redisErr("put", err)
	}
	return nil
}

// dropIndexes removes the index entries of an existing document so a
// replaced document does not leave stale homolog hits behind.
func (r *Redis) dropIndexes(c *redis.Client, docID string) error {
	data, err := c.Get(rkDoc(docID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return redisErr("get", err)
	}
	old, err := decodeEntry(data)
	if err != nil {
		return err
	}
	p := c.TxPipeline()
	if old.ContentHash != "" {
		p.Del(rkHash(old.ContentHash))
	}
	for _, h := range old.Doc.Homologs.All() {
		if h.AccNum != "" {
			p.SRem(rkAccNum(h.AccNum), docID)
		}
		if h.ID != "" {
			p.SRem(rkHomID(h.ID), docID)
		}
	}
	if _, err := p.Exec(); err != nil {
		return redisErr("drop indexes", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, docID string) (*Entry, error) {
	data, err := r.client.WithContext(ctx).Get(rkDoc(docID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, redisErr("get", err)
	}
	return decodeEntry(data)
}

func (r *Redis) List(ctx context.Context) ([]Summary, error) {
	c := r.client.WithContext(ctx)
	ids, err := c.SMembers(rkDocs).Result()
	if err != nil {
		return nil, redisErr("list", err)
	}
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		data, err := c.Get(rkSummary(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			// Expired; prune the listing.
			c.SRem(rkDocs, id)
			continue
		}
		if err != nil {
			return nil, redisErr("list", err)
		}
		sum, err := decodeSummary(data)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	sortSummaries(out)
	return out, nil
}

func (r *Redis) Delete(ctx context.Context, docID string) error {
	c := r.client.WithContext(ctx)
	n, err := c.Exists(rkDoc(docID)).Result()
	if err != nil {
		return redisErr("delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := r.dropIndexes(c, docID); err != nil {
		return err
	}
	p := c.TxPipeline()
	p.Del(rkDoc(docID), rkSummary(docID))
	p.SRem(rkDocs, docID)
	if _, err := p.Exec(); err != nil {
		return redisErr("delete", err)
	}
	return nil
}

func (r *Redis) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	id, err := r.client.WithContext(ctx).Get(rkHash(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, redisErr("find by hash", err)
	}
	return id, true, nil
}

func (r *Redis) SearchHomologs(ctx context.Context, q HomologQuery) ([]HomologHit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	c := r.client.WithContext(ctx)
	var keys []string
	if q.AccNum != "" {
		keys = append(keys, rkAccNum(q.AccNum))
	}
	if q.ID != "" {
		keys = append(keys, rkHomID(q.ID))
	}
	ids, err := c.SInter(keys...).Result()
	if err != nil {
		return nil, redisErr("search homologs", err)
	}

	var hits []HomologHit
	for _, id := range ids {
		e, err := r.Get(ctx, id)
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

func (r *Redis) Close() error {
	return r.client.Close()
}

// redisErr marks network failures as retryable.
func redisErr(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed) {
		return &RetryableError{Op: "redis " + op, Err: err}
	}
	return fmt.Errorf("redis %s: %w", op, err)
}
