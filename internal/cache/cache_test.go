package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := NewCache(filepath.Join(t.TempDir(), "cache"), ttl)
	require.NoError(t, err)
	return c
}

func TestNewCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := NewCache(dir, time.Hour)

	require.NoError(t, err)
	require.NotNil(t, c)
	_, err = os.Stat(dir)
	assert.NoError(t, err, "cache directory must be created")
}

func TestCache_GenerateHash(t *testing.T) {
	c := &Cache{}

	hash1 := c.GenerateHash("anthropic", "model", "system", "user")
	hash2 := c.GenerateHash("anthropic", "model", "system", "user")
	hash3 := c.GenerateHash("gemini", "model", "system", "user")
	shifted := c.GenerateHash("anthropic", "modelsystem", "", "user")

	assert.Equal(t, hash1, hash2)
	assert.NotEqual(t, hash1, hash3)
	assert.NotEqual(t, hash1, shifted, "part boundaries must matter")
	assert.Len(t, hash1, 64)
}

func TestCache_SetAndGet(t *testing.T) {
	// Arrange
	c := setupTestCache(t, time.Hour)
	hash := c.GenerateHash("key")

	// Act
	require.NoError(t, c.Set(hash, "raw model reply"))
	resp, found, err := c.Get(hash)

	// Assert
	require.NoError(t, err)
	require.True(t, found)
	var got string
	require.NoError(t, json.Unmarshal(resp, &got))
	assert.Equal(t, "raw model reply", got)
}

func TestCache_Get_NotFound(t *testing.T) {
	c := setupTestCache(t, time.Hour)

	_, found, err := c.Get("non-existent-hash")

	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Get_Expired(t *testing.T) {
	c := setupTestCache(t, time.Hour)
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }
	require.NoError(t, c.Set("h", "value"))

	c.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, found, err := c.Get("h")

	require.NoError(t, err)
	assert.False(t, found)
	_, statErr := os.Stat(c.path("h"))
	assert.True(t, os.IsNotExist(statErr), "expired entry must be removed")
}

func TestCache_Get_Corrupt(t *testing.T) {
	c := setupTestCache(t, time.Hour)
	require.NoError(t, os.WriteFile(c.path("bad"), []byte("{not json"), 0644))

	_, found, err := c.Get("bad")

	assert.Error(t, err)
	assert.False(t, found)
}

func TestCache_Clean(t *testing.T) {
	c := setupTestCache(t, time.Hour)
	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))

	removed, err := c.Clean()

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	_, found, _ := c.Get("a")
	assert.False(t, found)
}
