package feedback

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/copafer/chat-viewer/internal/model"
)

const cacheBucket = "feedback"

// Cache is a single-file bolt store of feedback records keyed by session id.
// It lets the dashboard report feedback coverage while the remote side
// channel is slow or unreachable. The DB is opened per operation so the file
// stays closed (and copyable) between calls.
type Cache struct {
	path string
}

// NewCache creates a cache backed by the given file path, creating parent
// directories as needed.
func NewCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Cache{path: path}, nil
}

// Put stores one record, overwriting any previous entry for the session.
func (c *Cache) Put(rec model.Feedback) error {
	if rec.SessionID == "" {
		return nil
	}
	db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(cacheBucket))
		if err != nil {
			return err
		}
		enc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.SessionID), enc)
	})
}

// Get returns the cached record for a session, or nil when absent.
func (c *Cache) Get(sessionID string) (*model.Feedback, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var rec *model.Feedback
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cacheBucket))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(sessionID))
		if len(v) == 0 {
			return nil
		}
		var decoded model.Feedback
		if e := json.Unmarshal(v, &decoded); e != nil {
			// Skip malformed entries instead of failing the read.
			return nil
		}
		rec = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every cached record keyed by session id.
func (c *Cache) All() (map[string]model.Feedback, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	out := map[string]model.Feedback{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cacheBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec model.Feedback
			if len(v) > 0 {
				if e := json.Unmarshal(v, &rec); e != nil {
					return nil
				}
				out[string(k)] = rec
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cache) open() (*bolt.DB, error) {
	return bolt.Open(c.path, 0o600, &bolt.Options{Timeout: time.Second})
}
