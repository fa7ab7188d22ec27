// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package pool

import (
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the default capacity of a pool.
const DefaultMaxSize = 16

// Pool keeps up to maxSize idle objects in a ring ordered by freshness.
// Get pops the freshest object to maximise cache locality; Put evicts the
// oldest when full.
type Pool[T any] struct {
	// closer destroys an object on eviction. May be nil.
	closer func(T)

	// maxSize may be read without the mutex; the ring is resized under it.
	maxSize atomic.Int64

	mu sync.Mutex
	// ring holds the objects ordered by freshness. end is the next write
	// slot; the newest object sits just before it, the oldest at end when
	// the ring is full.
	// Invariant: len(ring) == maxSize.
	ring []T
	end  int
	size int

	gets, hits, puts, evictions uint64
}

// New creates a pool keeping at most maxSize objects. closer, if non-nil,
// destroys evicted objects and runs outside the pool lock.
func New[T any](maxSize int, closer func(T)) *Pool[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	p := &Pool[T]{closer: closer, ring: make([]T, maxSize)}
	p.maxSize.Store(int64(maxSize))
	return p
}

// Get returns an existing object, refurbished, or a new one from factory.
// factory runs only on a miss; refurbish (which may be nil) runs on a hit.
// Both run outside the pool lock.
func (p *Pool[T]) Get(factory func() T, refurbish func(T)) T {
	var got T
	hit := false
	p.mu.Lock()
	p.gets++
	if p.size > 0 {
		max := len(p.ring)
		if p.end == 0 {
			p.end = max - 1
		} else {
			p.end--
		}
		var zero T
		got, p.ring[p.end] = p.ring[p.end], zero
		p.size--
		p.hits++
		hit = true
	}
	p.mu.Unlock()
	if hit {
		if refurbish != nil {
			refurbish(got)
		}
		return got
	}
	return factory()
}

// GetHandle is Get returning a Handle that recycles the object on Release.
func (p *Pool[T]) GetHandle(factory func() T, refurbish func(T)) *Handle[T] {
	return &Handle[T]{value: p.Get(factory, refurbish), put: p.Put, close: p.closer}
}

// Put recycles an idle object, evicting the oldest if the pool is full. The
// evicted object's closer runs after the critical section.
func (p *Pool[T]) Put(v T) {
	var evicted T
	hasEvicted := false
	p.mu.Lock()
	p.puts++
	max := len(p.ring)
	if max > 0 {
		if p.size == max {
			evicted, hasEvicted = p.ring[p.end], true
			p.evictions++
		}
		p.ring[p.end] = v
		p.end++
		if p.end == max {
			p.end = 0
		}
		if p.size < max {
			p.size++
		}
	}
	p.mu.Unlock()
	// Destroy evicted after releasing the mutex.
	if hasEvicted && p.closer != nil {
		p.closer(evicted)
	}
}

// EnsureMaxSize grows the capacity to at least maxSize. Used to merge the
// configurations of callers sharing one pool; the capacity never shrinks.
func (p *Pool[T]) EnsureMaxSize(maxSize int) {
	if int(p.maxSize.Load()) >= maxSize {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	old := len(p.ring)
	if old >= maxSize {
		return
	}
	ring := make([]T, maxSize)
	// Repack oldest to newest starting at slot 0.
	idx := p.end
	if p.size < old {
		idx = p.end - p.size
		if idx < 0 {
			idx += old
		}
	}
	for i := 0; i < p.size; i++ {
		ring[i] = p.ring[idx]
		idx++
		if idx == old {
			idx = 0
		}
	}
	p.ring = ring
	p.end = p.size
	p.maxSize.Store(int64(maxSize))
}

// Drain destroys all idle objects. Closers run outside the lock.
func (p *Pool[T]) Drain() {
	var drained []T
	p.mu.Lock()
	max := len(p.ring)
	idx := p.end - p.size
	if idx < 0 {
		idx += max
	}
	for i := 0; i < p.size; i++ {
		var zero T
		drained = append(drained, p.ring[idx])
		p.ring[idx] = zero
		idx++
		if idx == max {
			idx = 0
		}
	}
	p.size = 0
	p.mu.Unlock()
	if p.closer != nil {
		for _, v := range drained {
			p.closer(v)
		}
	}
}

// Metrics returns a snapshot of the pool counters.
func (p *Pool[T]) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Metrics{
		Gets:      p.gets,
		Hits:      p.hits,
		Misses:    p.gets - p.hits,
		Puts:      p.puts,
		Evictions: p.evictions,
		Size:      p.size,
		MaxSize:   len(p.ring),
	}
}

// Handle lends a pooled object. Exactly one of Release or Discard should be
// called; Release recycles the object, Discard destroys it.
type Handle[T any] struct {
	value    T
	put      func(T)
	close    func(T)
	finished bool
}

// Value returns the lent object.
func (h *Handle[T]) Value() T { return h.value }

// Release recycles the object into its pool.
func (h *Handle[T]) Release() {
	if h.finished {
		return
	}
	h.finished = true
	h.put(h.value)
}

// Discard destroys the object instead of recycling it, for objects no longer
// suitable for reuse.
func (h *Handle[T]) Discard() {
	if h.finished {
		return
	}
	h.finished = true
	if h.close != nil {
		h.close(h.value)
	}
}
