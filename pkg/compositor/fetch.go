// fetch.go — Resolve image references to bytes: HTTP, local files and an
// in-memory asset store.
package compositor

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// AssetScheme prefixes references served by a MemoryStore.
const AssetScheme = "asset:"

// DefaultMaxBytes limits a single fetched asset.
const DefaultMaxBytes = 32 << 20

// ErrAssetNotFound is returned for unknown store ids and missing files.
var ErrAssetNotFound = errors.New("asset not found")

// Fetcher resolves an image reference to its encoded bytes. Implementations
// must honour ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FetchImage fetches ref with f and decodes it, applying EXIF orientation.
func FetchImage(ctx context.Context, f Fetcher, ref string) (image.Image, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// ── HTTP ──

// HTTPFetcher downloads http(s) URLs. The deadline comes from ctx; Client's
// own timeout is only a backstop.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPFetcher creates a fetcher with a backstop timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}, MaxBytes: DefaultMaxBytes}
}

// Fetch downloads ref.
func (h *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	limit := h.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("asset larger than %d bytes", limit)
	}
	return body, nil
}

// ── Files ──

// FileFetcher reads local files. Relative references are resolved against
// Root.
type FileFetcher struct {
	Root string
}

// Fetch reads ref from disk.
func (f FileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(ref, "file://")
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}
	return data, err
}

// ── Memory ──

type storedAsset struct {
	data        []byte
	contentType string
}

// MemoryStore keeps uploaded photos and rendered posters in memory and serves
// them as "asset:<id>" references. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[string]storedAsset
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assets: make(map[string]storedAsset)}
}

// Put stores data under a new random id and returns the id.
func (s *MemoryStore) Put(data []byte, contentType string) string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("compositor: random id: %v", err))
	}
	id := hex.EncodeToString(b[:])
	s.PutWithID(id, data, contentType)
	return id
}

// PutWithID stores data under id, replacing any previous value.
func (s *MemoryStore) PutWithID(id string, data []byte, contentType string) {
	s.mu.Lock()
	s.assets[id] = storedAsset{data: data, contentType: contentType}
	s.mu.Unlock()
}

// Get returns the bytes and content type stored under id.
func (s *MemoryStore) Get(id string) ([]byte, string, bool) {
	s.mu.RLock()
	a, ok := s.assets[id]
	s.mu.RUnlock()
	return a.data, a.contentType, ok
}

// Delete removes id.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.assets, id)
	s.mu.Unlock()
}

// Len returns the number of stored assets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// Fetch serves "asset:<id>" references (a bare id works too).
func (s *MemoryStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := strings.TrimPrefix(ref, AssetScheme)
	data, _, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return data, nil
}

// Ref returns the reference for a stored id.
func Ref(id string) string { return AssetScheme + id }

// ── Routing ──

// MultiFetcher routes references by form: "asset:" to Store, http(s) URLs to
// HTTP, everything else to Files. Nil routes reject their references.
type MultiFetcher struct {
	Store *MemoryStore
	HTTP  Fetcher
	Files Fetcher
}

// Fetch dispatches ref.
func (m MultiFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	var f Fetcher
	switch {
	case ref == "":
		return nil, errors.New("empty image reference")
	case strings.HasPrefix(ref, AssetScheme):
		if m.Store != nil {
			f = m.Store
		}
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		f = m.HTTP
	default:
		f = m.Files
	}
	if f == nil {
		return nil, fmt.Errorf("no fetcher configured for %q", ref)
	}
	return f.Fetch(ctx, ref)
}
