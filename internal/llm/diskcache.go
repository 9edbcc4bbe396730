package llm

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
	"time"

	"github.com/boltdb/bolt"
)

var completionBucket = []byte("completions")

// diskEntry is the gob-encoded value stored per completion.
type diskEntry struct {
	Expiry time.Time
	Text   string
}

// diskCache persists completions across runs in a bolt database.
type diskCache struct {
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time
	ttl    time.Duration
}

// newDiskCache opens (or creates) the cache file at path.
func newDiskCache(path string, ttl time.Duration, logger *slog.Logger) (*diskCache, error) {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open completion cache %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(completionBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create completion bucket: %w", err)
	}

	return &diskCache{db: db, logger: logger, now: time.Now, ttl: ttl}, nil
}

func (c *diskCache) get(key string) (string, bool) {
	var entry diskEntry
	var found bool

	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(completionBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&entry); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		c.logger.Warn("completion cache read failed", "error", err)
		return "", false
	}

	if !found || c.now().After(entry.Expiry) {
		return "", false
	}
	return entry.Text, true
}

func (c *diskCache) set(key, text string) {
	var val bytes.Buffer
	if err := gob.NewEncoder(&val).Encode(diskEntry{Expiry: c.now().Add(c.ttl), Text: text}); err != nil {
		c.logger.Warn("completion cache encode failed", "error", err)
		return
	}

	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(completionBucket).Put([]byte(key), val.Bytes())
	}); err != nil {
		c.logger.Warn("completion cache write failed", "error", err)
	}
}

// Close releases the database file lock.
func (c *diskCache) Close() error {
	return c.db.Close()
}
