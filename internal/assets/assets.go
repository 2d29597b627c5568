// Package assets fetches asset bytes for the engine. Files come from an
// ordered list of sources, optionally lz4 compressed, and are cached by a
// byte budget.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// ErrNotFound is returned when no source holds the requested path.
var ErrNotFound = errors.New("asset not found")

// CompressedExt marks lz4 compressed payloads.
const CompressedExt = ".lz4"

// Manager handles asset loading from sources.
type Manager struct {
	sources []Source
	cache   *Cache
	mu      sync.RWMutex
	log     *zap.Logger
}

// NewManager creates a new asset manager with a cache of cacheBytes.
// A budget of 0 disables caching.
func NewManager(cacheBytes int64) *Manager {
	return &Manager{
		cache: NewCache(cacheBytes),
		log:   logger.Named("assets"),
	}
}

// AddSource adds a source to the manager.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(src Source) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
	m.log.Debug("source added", zap.String("source", src.Name()))
}

// Load fetches path. Payloads stored with the lz4 extension are
// decompressed; path "mesh.bin" also matches "mesh.bin.lz4".
func (m *Manager) Load(ctx context.Context, path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	m.mu.RLock()
	sources := m.sources
	m.mu.RUnlock()

	for i := len(sources) - 1; i >= 0; i-- {
		data, err := fetch(ctx, sources[i], path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s from %s: %w", path, sources[i].Name(), err)
		}
		m.cache.Set(path, data)
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Invalidate drops path from the cache, typically after the watcher
// reported a change.
func (m *Manager) Invalidate(path string) {
	m.cache.Delete(path)
}

// Cache returns the manager's cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Close releases sources and clears the cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, src := range m.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				m.log.Warn("closing source", zap.String("source", src.Name()), zap.Error(err))
			}
		}
	}
	m.sources = nil
	m.cache.Clear()
}

func fetch(ctx context.Context, src Source, path string) ([]byte, error) {
	if strings.HasSuffix(path, CompressedExt) {
		data, err := src.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		return Decompress(data)
	}

	data, err := src.Fetch(ctx, path)
	if !errors.Is(err, ErrNotFound) {
		return data, err
	}
	data, err = src.Fetch(ctx, path+CompressedExt)
	if err != nil {
		return nil, err
	}
	return Decompress(data)
}

// Decompress inflates an lz4 frame.
func Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return out, nil
}

// Compress writes data as an lz4 frame.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return buf.Bytes(), nil
}
