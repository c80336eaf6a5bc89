// Package loader provides request-scoped batched lookups.
//
// Load queues a key and returns a thunk. graphql-go resolves thunks breadth-first,
// so every key queued while one level of the result tree is completed is sent to
// the backend in a single batch when the first of those thunks is forced.
package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultMaxBatch bounds the number of keys sent in one backend call.
const DefaultMaxBatch = 1000

// BatchFunc fetches values for keys. The result must be aligned with keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// Thunk yields the loaded value once the batch that carries its key has run.
type Thunk[V any] func() (V, error)

// Observer receives loader activity, typically to record metrics.
type Observer interface {
	RecordBatch(ctx context.Context, loader string, keys int)
	RecordCacheHit(ctx context.Context, loader string)
	RecordCacheMiss(ctx context.Context, loader string)
}

// Stats is a snapshot of loader activity.
type Stats struct {
	Hits    int64
	Misses  int64
	Batches int64
	Keys    int64
}

type result[V any] struct {
	value V
	err   error
	done  chan struct{}
}

func (r *result[V]) resolve(value V, err error) {
	r.value = value
	r.err = err
	close(r.done)
}

type pendingKey[K comparable, V any] struct {
	key K
	res *result[V]
}

// Loader deduplicates, caches and batches lookups of one kind.
type Loader[K comparable, V any] struct {
	name     string
	batch    BatchFunc[K, V]
	maxBatch int
	observer Observer

	mu      sync.Mutex
	cache   map[K]*result[V]
	pending []pendingKey[K, V]

	hits    atomic.Int64
	misses  atomic.Int64
	batches atomic.Int64
	keys    atomic.Int64
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	maxBatch int
	observer Observer
}

// WithMaxBatch sets the largest batch sent to the backend.
func WithMaxBatch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBatch = n
		}
	}
}

// WithObserver reports loader activity to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// New creates a loader named name backed by batch.
func New[K comparable, V any](name string, batch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	o := options{maxBatch: DefaultMaxBatch}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[K, V]{
		name:     name,
		batch:    batch,
		maxBatch: o.maxBatch,
		observer: o.observer,
		cache:    make(map[K]*result[V]),
	}
}

// Name returns the loader name used in metrics.
func (l *Loader[K, V]) Name() string {
	return l.name
}

// Load queues key and returns a thunk for its value. Loading a key that is
// already cached or queued returns the same pending or resolved value.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()
	res, ok := l.cache[key]
	if !ok {
		res = &result[V]{done: make(chan struct{})}
		l.cache[key] = res
		l.pending = append(l.pending, pendingKey[K, V]{key: key, res: res})
	}
	l.mu.Unlock()

	if ok {
		l.hits.Add(1)
		if l.observer != nil {
			l.observer.RecordCacheHit(ctx, l.name)
		}
	} else {
		l.misses.Add(1)
		if l.observer != nil {
			l.observer.RecordCacheMiss(ctx, l.name)
		}
	}

	return func() (V, error) {
		l.dispatch(ctx)
		<-res.done
		return res.value, res.err
	}
}

// LoadMany loads every key and returns the values in key order.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, error) {
	thunks := make([]Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = l.Load(ctx, key)
	}
	values := make([]V, len(keys))
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Prime stores value for key unless the key is already cached.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cache[key]; ok {
		return
	}
	res := &result[V]{done: make(chan struct{})}
	res.resolve(value, nil)
	l.cache[key] = res
}

// Clear evicts key so the next Load fetches it again.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.cache, key)
}

// ClearAll empties the cache.
func (l *Loader[K, V]) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[K]*result[V])
}

// Stats returns a snapshot of cache and batch counters.
func (l *Loader[K, V]) Stats() Stats {
	return Stats{
		Hits:    l.hits.Load(),
		Misses:  l.misses.Load(),
		Batches: l.batches.Load(),
		Keys:    l.keys.Load(),
	}
}

// dispatch runs every queued key through the batch function.
func (l *Loader[K, V]) dispatch(ctx context.Context) {
	l.mu.Lock()
	queued := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(queued) == 0 {
		return
	}

	for start := 0; start < len(queued); start += l.maxBatch {
		end := start + l.maxBatch
		if end > len(queued) {
			end = len(queued)
		}
		l.runBatch(ctx, queued[start:end])
	}
}

func (l *Loader[K, V]) runBatch(ctx context.Context, chunk []pendingKey[K, V]) {
	keys := make([]K, len(chunk))
	for i, p := range chunk {
		keys[i] = p.key
	}

	l.batches.Add(1)
	l.keys.Add(int64(len(keys)))
	if l.observer != nil {
		l.observer.RecordBatch(ctx, l.name, len(keys))
	}

	values, err := l.batch(ctx, keys)
	if err == nil && len(values) != len(keys) {
		err = fmt.Errorf("loader %s: batch returned %d values for %d keys", l.name, len(values), len(keys))
	}

	var zero V
	for i, p := range chunk {
		if err != nil {
			l.forget(p)
			p.res.resolve(zero, err)
			continue
		}
		p.res.resolve(values[i], nil)
	}
}

// forget drops a failed key from the cache so a later load can retry it.
func (l *Loader[K, V]) forget(p pendingKey[K, V]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cache[p.key] == p.res {
		delete(l.cache, p.key)
	}
}
