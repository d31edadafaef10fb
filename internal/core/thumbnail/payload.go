package thumbnail

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/keepsake-labs/chronoline/internal/util"
)

// ErrUnsupportedFormat marks image bytes the export surface cannot embed.
// Callers drop the thumbnail and keep the card.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Fetcher retrieves raw bytes for a thumbnail URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Payload is one distinct image payload, keyed by a hash of its full
// content so identical images are embedded once and referenced twice.
type Payload struct {
	Key    uint64
	Bytes  []byte
	Format string // fpdf image type: JPG, PNG or GIF
}

// Name returns a stable registration name for the payload
func (p *Payload) Name() string {
	return "thumb-" + hexKey(p.Key)
}

func hexKey(k uint64) string {
	const digits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = digits[k&0xf]
		k >>= 4
	}
	return string(buf)
}

// PayloadCache fetches and deduplicates image payloads by content hash.
// Each export invocation owns its own cache; nothing is shared between
// concurrent exports.
type PayloadCache struct {
	fetch Fetcher

	mu    sync.Mutex
	byKey map[uint64]*Payload
	byURL map[string]*Payload
}

// NewPayloadCache creates an empty payload cache
func NewPayloadCache(fetch Fetcher) *PayloadCache {
	return &PayloadCache{
		fetch: fetch,
		byKey: make(map[uint64]*Payload),
		byURL: make(map[string]*Payload),
	}
}

// Load fetches a thumbnail payload, returning the existing entry when the
// same bytes were already seen under another URL.
func (c *PayloadCache) Load(ctx context.Context, url string) (*Payload, error) {
	c.mu.Lock()
	if p, ok := c.byURL[url]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	data, err := c.fetch.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	format, ok := sniffFormat(data)
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	key := xxhash.Sum64(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.byKey[key]; ok {
		c.byURL[url] = p
		util.LogDebugf("Thumbnail payload for %s deduplicated (key %s)", url, hexKey(key))
		return p, nil
	}
	p := &Payload{Key: key, Bytes: data, Format: format}
	c.byKey[key] = p
	c.byURL[url] = p
	return p, nil
}

// Distinct returns how many unique payloads the cache holds
func (c *PayloadCache) Distinct() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

// sniffFormat maps content sniffing onto the image types fpdf can embed
func sniffFormat(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "JPG", true
	case "image/png":
		return "PNG", true
	case "image/gif":
		return "GIF", true
	default:
		return "", false
	}
}
