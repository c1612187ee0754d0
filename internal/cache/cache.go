package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/storage"
)

type CachedResponse struct {
	Hash      string          `json:"hash"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cache stores model responses on disk, one file per prompt hash.
type Cache struct {
	cacheDir string
	ttl      time.Duration
	now      func() time.Time
}

func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating cache directory: %w", err)
	}

	cache := &Cache{
		cacheDir: dir,
		ttl:      ttl,
		now:      time.Now,
	}

	_ = cache.CleanExpired()

	return cache, nil
}

// GenerateHash joins the parts with a separator that cannot appear in
// them unescaped and returns the SHA-256 hex digest.
func (c *Cache) GenerateHash(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = strings.ReplaceAll(p, "\x00", "\x00\x00")
	}
	hash := sha256.Sum256([]byte(strings.Join(escaped, "\x00|")))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) path(hash string) string {
	return filepath.Join(c.cacheDir, hash+".json")
}

// Get returns the cached response for hash. Expired entries are removed
// and reported as misses.
func (c *Cache) Get(hash string) (json.RawMessage, bool, error) {
	filePath := c.path(hash)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading cache: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		_ = os.Remove(filePath)
		return nil, false, fmt.Errorf("error decoding cache entry: %w", err)
	}

	if c.now().Sub(cached.CreatedAt) > c.ttl {
		_ = os.Remove(filePath)
		return nil, false, nil
	}

	return cached.Response, true, nil
}

func (c *Cache) Set(hash string, response interface{}) error {
	responseData, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("error encoding response: %w", err)
	}

	cached := CachedResponse{
		Hash:      hash,
		Response:  responseData,
		CreatedAt: c.now(),
	}

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}

	if err := storage.WriteFileAtomic(c.path(hash), data, 0644); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}

	return nil
}

// CleanExpired removes entries older than the TTL.
func (c *Cache) CleanExpired() error {
	_, err := c.cleanOlderThan(c.ttl)
	return err
}

// Clean removes every cached entry and returns the number deleted.
func (c *Cache) Clean() (int, error) {
	return c.cleanOlderThan(-1)
}

func (c *Cache) cleanOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("error reading cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if age >= 0 && c.now().Sub(info.ModTime()) <= age {
			continue
		}
		if err := os.Remove(filepath.Join(c.cacheDir, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}
