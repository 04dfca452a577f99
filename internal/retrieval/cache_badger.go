package retrieval

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerCache stores retrieval results in a local badger database using
// its native per-entry TTL. Survives restarts without an external
// service. Backend errors degrade to misses.
type BadgerCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewBadgerCache opens (creating if needed) a badger store at path.
func NewBadgerCache(path string, ttl time.Duration, logger *slog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BadgerCache{db: db, ttl: ttl, logger: logger}, nil
}

// Get implements ResultCache.
func (c *BadgerCache) Get(ctx context.Context, key string) ([]ScoredDocument, bool) {
	var docs []ScoredDocument
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&docs)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			c.logger.Warn("badger cache read failed, treating as miss", "error", err)
		}
		return nil, false
	}
	return docs, true
}

// Set implements ResultCache.
func (c *BadgerCache) Set(ctx context.Context, key string, docs []ScoredDocument) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(docs); err != nil {
		c.logger.Warn("failed to encode cache entry", "error", err)
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), buf.Bytes()).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("badger cache write failed", "error", err)
	}
}

// Close implements ResultCache.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
