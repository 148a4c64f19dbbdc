package data

import (
	"path/filepath"
	"testing"
	"time"

	"stock-compare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache(t *testing.T) {
	c := NewResponseCache(time.Minute)
	defer c.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := GenerateCacheKey(testQuery())
	_, found := c.Get(key)
	assert.False(t, found)

	c.Set(key, []model.EODRecord{{Symbol: "AAPL"}})
	got, found := c.Get(key)
	require.True(t, found)
	assert.Equal(t, "AAPL", got[0].Symbol)

	now = now.Add(2 * time.Minute)
	_, found = c.Get(key)
	assert.False(t, found, "expired entries are not served")

	c.evictExpired()
	assert.Equal(t, 0, c.Len())

	c.Set(key, nil)
	c.Clear()
	assert.Equal(t, 0, c.Len())

	c.Set(key, []model.EODRecord{{Symbol: "MSFT"}})
	require.Equal(t, 1, c.Len())
	c.Close()
	assert.Equal(t, 0, c.Len(), "Close drops entries")
	c.Close()
}

func TestResponseCache_Nil(t *testing.T) {
	var c *ResponseCache
	c.Set("k", nil)
	_, found := c.Get("k")
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
	c.Clear()
	c.Close()
}

func TestGenerateCacheKey(t *testing.T) {
	a := testQuery()
	b := testQuery()
	assert.Equal(t, GenerateCacheKey(a), GenerateCacheKey(b))

	b.DateTo = b.DateTo.AddDate(0, 0, 1)
	assert.NotEqual(t, GenerateCacheKey(a), GenerateCacheKey(b))
	assert.Len(t, GenerateCacheKey(a), 64)
}

func TestSymbolsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "symbols.json")
	list := &SymbolList{
		UpdatedAt: "2024-01-01T00:00:00Z",
		Symbols: []Symbol{
			{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ", MIC: "XNAS"},
			{Symbol: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ", MIC: "XNAS"},
		},
	}
	require.NoError(t, SaveSymbols(list, path))

	loaded, err := LoadSymbols(path)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", loaded.Symbols[0].Symbol)
	assert.Equal(t, "MSFT", loaded.Symbols[1].Symbol)

	_, err = LoadSymbols(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDefaultSymbolsPath(t *testing.T) {
	t.Setenv("SYMBOLS_FILE", "")
	assert.Equal(t, "./data/symbols.json", DefaultSymbolsPath())
	t.Setenv("SYMBOLS_FILE", "/tmp/x.json")
	assert.Equal(t, "/tmp/x.json", DefaultSymbolsPath())
}
