package classifier

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/rfmelo/gastos/pkg/models"
)

var bucketName = []byte("classifications")

// BoltCache persists classifications across process runs, keyed by the exact
// description text. Entries carry their insertion time and expire after the
// same window as the in-memory cache.
type BoltCache struct {
	db  *bolt.DB
	ttl time.Duration
}

type boltEntry struct {
	Category models.Category
	StoredAt time.Time
}

// OpenBoltCache opens (or creates) the cache database at path.
func OpenBoltCache(path string, ttl time.Duration) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}
	return &BoltCache{db: db, ttl: ttl}, nil
}

// Get returns the cached category for a description, if present and still
// within the TTL window.
func (c *BoltCache) Get(description string) (models.Category, bool) {
	var entry boltEntry
	var found bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(description))
		if v == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(v))
		if err := dec.Decode(&entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found || time.Since(entry.StoredAt) > c.ttl {
		return "", false
	}
	return entry.Category, true
}

// Put stores a classification with the current timestamp.
func (c *BoltCache) Put(description string, category models.Category) error {
	var val bytes.Buffer
	enc := gob.NewEncoder(&val)
	if err := enc.Encode(boltEntry{Category: category, StoredAt: time.Now()}); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(description), val.Bytes())
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
