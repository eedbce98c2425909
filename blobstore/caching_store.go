package blobstore

import (
	"context"

	"github.com/hupe1980/docval/internal/cache"
	"github.com/hupe1980/docval/resource"
)

// CachingStore wraps a BlobStore and keeps recently read blobs in memory.
//
// Whole blobs are cached: documents are always read in full. Writes through
// the store invalidate the affected name; writes that bypass it are not
// observed.
type CachingStore struct {
	inner BlobStore
	cache cache.BlobCache
}

// NewCachingStore creates a CachingStore with an LRU cache of capacity
// bytes. A non-nil rc charges cached bytes against its memory limit.
func NewCachingStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	return NewCachingStoreWithCache(inner, cache.NewLRUBlobCache(capacity, rc))
}

// NewCachingStoreWithCache creates a CachingStore over an existing cache.
func NewCachingStoreWithCache(inner BlobStore, c cache.BlobCache) *CachingStore {
	return &CachingStore{inner: inner, cache: c}
}

// Open serves the blob from the cache, filling it on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	key := cacheKey(name)
	if data, ok := s.cache.Get(ctx, key); ok {
		return &memoryBlob{data: data}, nil
	}

	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	var data []byte
	if m, ok := b.(Mappable); ok {
		mapped, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		// The mapping dies with b.
		data = append([]byte(nil), mapped...)
	} else if data, err = readBlob(ctx, b); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, data)
	return &memoryBlob{data: data}, nil
}

// Create invalidates name once the write is committed.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingBlob{WritableBlob: w, onClose: func() { s.invalidate(name) }}, nil
}

// Put writes through and invalidates name.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	err := s.inner.Put(ctx, name, data)
	s.invalidate(name)
	return err
}

// Delete removes the blob and its cache entry.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List is passed through uncached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache statistics.
func (s *CachingStore) Stats() cache.Stats {
	return s.cache.Stats()
}

// Close releases the cache.
func (s *CachingStore) Close() error {
	return s.cache.Close()
}

func (s *CachingStore) invalidate(name string) {
	key := cacheKey(name)
	s.cache.Invalidate(func(k string) bool { return k == key })
}

// cacheKey maps spellings of the same name ("a//b", "a/./b") to one entry.
func cacheKey(name string) string {
	if clean, err := CleanName(name); err == nil {
		return clean
	}
	return name
}

type invalidatingBlob struct {
	WritableBlob
	onClose func()
}

func (b *invalidatingBlob) Close() error {
	err := b.WritableBlob.Close()
	b.onClose()
	return err
}

func (b *invalidatingBlob) Abort() error {
	if a, ok := b.WritableBlob.(Abortable); ok {
		return a.Abort()
	}
	return nil
}
