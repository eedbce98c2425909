package docval

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/docval/blobstore"
	"github.com/hupe1980/docval/codec"
	"github.com/hupe1980/docval/resource"
	"github.com/hupe1980/docval/value"
)

// Store reads and writes documents in a blob store with a single codec.
// It is safe for concurrent use.
type Store struct {
	blobs  blobstore.BlobStore
	cache  *blobstore.CachingStore
	opts   options
	logger *Logger
	closed atomic.Bool
}

// New creates a Store over blobs.
func New(blobs blobstore.BlobStore, optFns ...Option) *Store {
	o := applyOptions(optFns)
	s := &Store{
		blobs:  blobs,
		opts:   o,
		logger: o.logger.WithCodec(o.codec.Name()),
	}
	if o.cacheBytes > 0 {
		s.cache = blobstore.NewCachingStore(blobs, o.cacheBytes, o.rc)
		s.blobs = s.cache
	}
	return s
}

// Codec returns the codec documents are stored with.
func (s *Store) Codec() codec.Codec { return s.opts.codec }

// Load reads and decodes the named document.
func (s *Store) Load(ctx context.Context, name string) (value.Value, error) {
	if s.closed.Load() {
		return value.Value{}, translateError("load", name, ErrClosed)
	}
	start := time.Now()
	v, size, err := s.load(ctx, name)
	err = translateError("load", name, err)

	s.opts.metricsCollector.RecordLoad(size, time.Since(start), err)
	s.logger.LogLoad(ctx, name, size, err)
	return v, err
}

func (s *Store) load(ctx context.Context, name string) (value.Value, int, error) {
	var (
		v    value.Value
		size int
	)
	err := blobstore.View(ctx, s.blobs, name, func(data []byte) error {
		if err := s.opts.rc.AcquireIO(ctx, len(data)); err != nil {
			return err
		}
		var err error
		// Decoded values copy what they keep, so data may be a mapping.
		v, err = s.opts.codec.Unmarshal(data)
		if err != nil {
			return err
		}
		size = len(data)
		return nil
	})
	return v, size, err
}

// Save encodes v and writes it under name, replacing any previous
// document.
func (s *Store) Save(ctx context.Context, name string, v value.Value) error {
	if s.closed.Load() {
		return translateError("save", name, ErrClosed)
	}
	start := time.Now()
	size, err := s.save(ctx, name, v)
	err = translateError("save", name, err)

	s.opts.metricsCollector.RecordSave(size, time.Since(start), err)
	s.logger.LogSave(ctx, name, size, err)
	return err
}

func (s *Store) save(ctx context.Context, name string, v value.Value) (int, error) {
	data, err := s.opts.codec.Marshal(v)
	if err != nil {
		return 0, err
	}
	if err := s.opts.rc.AcquireIO(ctx, len(data)); err != nil {
		return 0, err
	}
	if err := s.blobs.Put(ctx, name, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// SaveStream writes v through a streaming blob writer instead of a single
// Put, so large documents reach multipart backends in parts. Writers that
// support it are aborted on failure.
func (s *Store) SaveStream(ctx context.Context, name string, v value.Value) error {
	if s.closed.Load() {
		return translateError("save", name, ErrClosed)
	}
	start := time.Now()
	size, err := s.saveStream(ctx, name, v)
	err = translateError("save", name, err)

	s.opts.metricsCollector.RecordSave(size, time.Since(start), err)
	s.logger.LogSave(ctx, name, size, err)
	return err
}

func (s *Store) saveStream(ctx context.Context, name string, v value.Value) (int, error) {
	data, err := s.opts.codec.Marshal(v)
	if err != nil {
		return 0, err
	}
	w, err := s.blobs.Create(ctx, name)
	if err != nil {
		return 0, err
	}
	abort := func() {
		if a, ok := w.(blobstore.Abortable); ok {
			_ = a.Abort()
		}
	}

	if _, err := io.Copy(resource.NewRateLimitedWriter(ctx, w, s.opts.rc), bytes.NewReader(data)); err != nil {
		abort()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Delete removes the named document. Deleting a missing document is not
// an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if s.closed.Load() {
		return translateError("delete", name, ErrClosed)
	}
	start := time.Now()
	err := translateError("delete", name, s.blobs.Delete(ctx, name))

	s.opts.metricsCollector.RecordDelete(time.Since(start), err)
	s.logger.LogDelete(ctx, name, err)
	return err
}

// List returns the sorted document names that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, translateError("list", prefix, ErrClosed)
	}
	names, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, translateError("list", prefix, err)
	}
	return names, nil
}

// LoadAll loads names concurrently and returns the documents in the same
// order. The first failure cancels the remaining loads.
func (s *Store) LoadAll(ctx context.Context, names []string) ([]value.Value, error) {
	out := make([]value.Value, len(names))
	err := s.batch(ctx, "load", len(names), func(ctx context.Context, i int) error {
		v, err := s.Load(ctx, names[i])
		out[i] = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveAll saves docs concurrently. The first failure cancels the remaining
// saves; documents already written stay written.
func (s *Store) SaveAll(ctx context.Context, docs map[string]value.Value) error {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	return s.batch(ctx, "save", len(names), func(ctx context.Context, i int) error {
		return s.Save(ctx, names[i], docs[names[i]])
	})
}

// batch runs fn for 0..n-1, one resource-controller worker slot per call.
func (s *Store) batch(ctx context.Context, op string, n int, fn func(context.Context, int) error) error {
	start := time.Now()
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		if err := s.opts.rc.AcquireWorker(gctx); err != nil {
			// A failed task canceled gctx; report its error instead.
			break
		}
		g.Go(func() error {
			defer s.opts.rc.ReleaseWorker()
			if err := fn(gctx, i); err != nil {
				failed.Add(1)
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	s.opts.metricsCollector.RecordBatch(n, int(failed.Load()), time.Since(start))
	s.logger.LogBatch(ctx, op, n, int(failed.Load()))
	return err
}

// Close releases the document cache. Further operations fail with
// ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
