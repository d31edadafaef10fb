package thumbnail

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tiny valid headers for format sniffing
var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
)

type fakeFetcher struct {
	payloads map[string][]byte
	calls    int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	data, ok := f.payloads[url]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return data, nil
}

func TestPayloadCacheDedupByContent(t *testing.T) {
	fetch := &fakeFetcher{payloads: map[string][]byte{
		"u1": pngBytes,
		"u2": pngBytes, // identical bytes under a different URL
		"u3": jpegBytes,
	}}
	cache := NewPayloadCache(fetch)

	p1, err := cache.Load(context.Background(), "u1")
	require.NoError(t, err)
	p2, err := cache.Load(context.Background(), "u2")
	require.NoError(t, err)
	p3, err := cache.Load(context.Background(), "u3")
	require.NoError(t, err)

	assert.Same(t, p1, p2, "identical payloads should share one entry")
	assert.NotSame(t, p1, p3)
	assert.Equal(t, 2, cache.Distinct())
	assert.Equal(t, "PNG", p1.Format)
	assert.Equal(t, "JPG", p3.Format)
}

func TestPayloadCacheFetchesURLOnce(t *testing.T) {
	fetch := &fakeFetcher{payloads: map[string][]byte{"u1": pngBytes}}
	cache := NewPayloadCache(fetch)

	for i := 0; i < 5; i++ {
		_, err := cache.Load(context.Background(), "u1")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetch.calls))
}

func TestPayloadCacheRejectsUnknownFormat(t *testing.T) {
	fetch := &fakeFetcher{payloads: map[string][]byte{
		"doc": []byte("%PDF-1.4 not an image at all"),
	}}
	cache := NewPayloadCache(fetch)

	_, err := cache.Load(context.Background(), "doc")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPayloadCachePropagatesFetchError(t *testing.T) {
	cache := NewPayloadCache(&fakeFetcher{payloads: map[string][]byte{}})
	_, err := cache.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPayloadName(t *testing.T) {
	p := &Payload{Key: 0xdeadbeef}
	assert.Equal(t, "thumb-00000000deadbeef", p.Name())
}
