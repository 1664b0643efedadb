package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPosters = []byte("posters")
	bucketMisses  = []byte("misses")
)

// PosterStore persists resolved poster URLs using BoltDB so a restarted
// client warms its in-memory cache without re-querying the artwork API.
// Catalog misses are stored too: a title known to have no poster is not
// worth asking about again.
type PosterStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	urls   map[string]string
	misses map[string]bool
}

func NewPosterStore(baseCacheDir string) (*PosterStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &PosterStore{
			urls:   make(map[string]string),
			misses: make(map[string]bool),
		}, nil
	}

	if err := os.MkdirAll(baseCacheDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(baseCacheDir, "posters.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPosters, bucketMisses} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PosterStore{
		db:     db,
		urls:   make(map[string]string),
		misses: make(map[string]bool),
	}, nil
}

func (s *PosterStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func cacheKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// GetPosterURL returns the stored poster URL for a title. The second
// return reports whether anything is known about the title at all: an
// empty URL with a true flag means a recorded catalog miss.
func (s *PosterStore) GetPosterURL(title string) (string, bool) {
	key := cacheKey(title)

	// Check memory cache first
	s.mu.RLock()
	if url, ok := s.urls[key]; ok {
		s.mu.RUnlock()
		return url, true
	}
	if s.misses[key] {
		s.mu.RUnlock()
		return "", true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return "", false
	}

	// Read from BoltDB
	var url []byte
	var missed bool
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketPosters); b != nil {
			if v := b.Get([]byte(key)); v != nil {
				url = make([]byte, len(v))
				copy(url, v)
				return nil
			}
		}
		if b := tx.Bucket(bucketMisses); b != nil {
			missed = b.Get([]byte(key)) != nil
		}
		return nil
	})

	if url == nil && !missed {
		return "", false
	}

	// Promote to memory cache
	s.mu.Lock()
	if url != nil {
		s.urls[key] = string(url)
	} else {
		s.misses[key] = true
	}
	s.mu.Unlock()

	return string(url), true
}

// SavePosterURL records a resolved poster URL for a title
func (s *PosterStore) SavePosterURL(title, url string) error {
	key := cacheKey(title)

	s.mu.Lock()
	s.urls[key] = url
	delete(s.misses, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketMisses); b != nil {
			b.Delete([]byte(key))
		}
		b := tx.Bucket(bucketPosters)
		return b.Put([]byte(key), []byte(url))
	})
}

// SaveMiss records that the catalog has no poster for a title
func (s *PosterStore) SaveMiss(title string) error {
	key := cacheKey(title)

	s.mu.Lock()
	s.misses[key] = true
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMisses)
		return b.Put([]byte(key), []byte{1})
	})
}

func (s *PosterStore) InvalidateAll() error {
	s.mu.Lock()
	s.urls = make(map[string]string)
	s.misses = make(map[string]bool)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPosters, bucketMisses} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
