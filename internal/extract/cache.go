package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clues/internal/gemini"
	"clues/internal/schema"
)

// CachedBatch is one batch answer persisted for reuse.
type CachedBatch struct {
	Model         string          `json:"model"`
	PromptVersion string          `json:"prompt_version"`
	Batch         BatchID         `json:"batch"`
	Address       string          `json:"address"`
	Values        schema.Values   `json:"values"`
	RawText       string          `json:"raw_text"`
	Usage         *gemini.Usage   `json:"usage,omitempty"`
	Sources       []gemini.Source `json:"sources,omitempty"`
	CachedAt      string          `json:"cached_at"`
}

func cacheKey(fullAddress string, batch BatchID, model string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(fullAddress), " "))))
	h.Write([]byte{0})
	h.Write([]byte(batch))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(promptVersion))
	return hex.EncodeToString(h.Sum(nil))
}

func cachePath(dir, key string) string {
	return filepath.Join(dir, "cache", key, "gemini_output.json")
}

func loadCache(dir, key string) (*CachedBatch, error) {
	b, err := os.ReadFile(cachePath(dir, key))
	if err != nil {
		return nil, err
	}
	var out CachedBatch
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func saveCache(dir, key string, out CachedBatch) error {
	path := cachePath(dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if out.CachedAt == "" {
		out.CachedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return saveJSON(path, out)
}

// expired reports whether the entry is older than ttl. A zero ttl never expires.
func (c *CachedBatch) expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	at, err := time.Parse(time.RFC3339, c.CachedAt)
	if err != nil {
		return true
	}
	return now.Sub(at) > ttl
}
