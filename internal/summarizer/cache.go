package summarizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache keeps recent summaries in memory only. Decoding is deterministic,
// so the same text and params always yield the same summary.
type Cache struct {
	lru *expirable.LRU[string, string]
}

// NewCache returns nil when size is not positive; a nil *Cache is a valid,
// always-missing cache.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}

	return &Cache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *Cache) Get(key string) (string, bool) {
	if c == nil || key == "" {
		return "", false
	}

	return c.lru.Get(key)
}

func (c *Cache) Add(key string, summary string) {
	if c == nil || key == "" || summary == "" {
		return
	}

	c.lru.Add(key, summary)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return c.lru.Len()
}

// cacheKey hashes everything that influences the model output. Text is
// hashed as-is since it reaches the model verbatim.
func cacheKey(provider string, model string, params Params, text string) string {
	if text == "" {
		return ""
	}

	h := sha256.New()
	for _, part := range []string{
		provider,
		model,
		strconv.Itoa(params.MaxLength),
		strconv.Itoa(params.MinLength),
		strconv.FormatBool(params.DoSample),
		text,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
