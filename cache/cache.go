package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"

	"dwqueries/transcript"
)

// Cache holds parsed transcript tables so repeated requests for the same
// transcript and query skip the parse.
type Cache struct {
	cache *cache.Cache
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *Cache) SetDefault(key string, value interface{}) {
	c.cache.Set(key, value, cache.DefaultExpiration)
}

// TableKey identifies a query's block within one exact transcript text.
func TableKey(text, queryID string) string {
	sum := sha256.Sum256([]byte(text))
	return "table:" + hex.EncodeToString(sum[:]) + ":" + queryID
}

// ParseTable returns the cached table for queryID in text, parsing and
// caching it on a miss. Parse errors are not cached.
func (c *Cache) ParseTable(text, queryID string) (*transcript.ParsedTable, error) {
	key := TableKey(text, queryID)
	if cached, found := c.Get(key); found {
		return cached.(*transcript.ParsedTable), nil
	}

	table, err := transcript.Parse(text, queryID)
	if err != nil {
		return nil, err
	}
	c.SetDefault(key, table)
	return table, nil
}
