// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package pool

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Keyed keeps idle objects grouped by a comparable key, so that an object is
// reused only among compatible ones. Entries are ordered by freshness within
// each key and globally across keys; eviction removes the globally oldest.
//
// A single cache slot optimises the common get-then-put-with-the-same-key
// round trip into a pointer swap: Get leaves the taken entry in both lists
// with its object removed, and a Put with the matching key restores the
// object in place.
type Keyed[K comparable, T any] struct {
	// closer destroys an object on eviction. May be nil.
	closer func(T)

	maxSize atomic.Int64

	mu sync.Mutex
	// byFreshness orders all entries oldest to newest; element values are
	// *keyedEntry.
	byFreshness *list.List
	// byKey groups entries per key, each list ordered oldest to newest.
	// Lists are non-empty.
	byKey map[K]*list.List
	// cache is the entry taken by the last Get, still linked in both lists
	// with a removed object, or nil.
	cache *keyedEntry[K, T]

	gets, hits, puts, evictions uint64
}

type keyedEntry[K comparable, T any] struct {
	key        K
	obj        T
	globalElem *list.Element
	keyElem    *list.Element
}

// NewKeyed creates a keyed pool keeping at most maxSize objects across all
// keys. closer, if non-nil, destroys evicted objects outside the pool lock.
func NewKeyed[K comparable, T any](maxSize int, closer func(T)) *Keyed[K, T] {
	p := &Keyed[K, T]{
		closer:      closer,
		byFreshness: list.New(),
		byKey:       make(map[K]*list.List),
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	p.maxSize.Store(int64(maxSize))
	return p
}

// flushCacheLocked finishes erasing the entry taken by the last Get.
func (p *Keyed[K, T]) flushCacheLocked() {
	e := p.cache
	if e == nil {
		return
	}
	p.cache = nil
	p.byFreshness.Remove(e.globalElem)
	kl := p.byKey[e.key]
	kl.Remove(e.keyElem)
	if kl.Len() == 0 {
		delete(p.byKey, e.key)
	}
}

// Get returns an existing object registered under key, refurbished, or a new
// one from factory. factory runs only on a miss; refurbish (which may be
// nil) runs on a hit. Both run outside the pool lock.
func (p *Keyed[K, T]) Get(key K, factory func() T, refurbish func(T)) T {
	var got T
	hit := false
	p.mu.Lock()
	p.gets++
	p.flushCacheLocked()
	if kl := p.byKey[key]; kl != nil {
		// Take the newest entry with this key, leaving it linked for the
		// cache slot.
		e := kl.Back().Value.(*keyedEntry[K, T])
		var zero T
		got, e.obj = e.obj, zero
		p.cache = e
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

// GetHandle is Get returning a Handle that recycles the object under the
// same key on Release.
func (p *Keyed[K, T]) GetHandle(key K, factory func() T, refurbish func(T)) *Handle[T] {
	return &Handle[T]{
		value: p.Get(key, factory, refurbish),
		put:   func(v T) { p.Put(key, v) },
		close: p.closer,
	}
}

// Put recycles an idle object under key, evicting the globally oldest entry
// if the pool is over capacity. The evicted object's closer runs after the
// critical section.
func (p *Keyed[K, T]) Put(key K, v T) {
	var evicted T
	hasEvicted := false
	p.mu.Lock()
	p.puts++
	if e := p.cache; e != nil {
		if e.key == key {
			// Cache hit: restore the object in place.
			e.obj = v
			p.cache = nil
			p.mu.Unlock()
			return
		}
		p.flushCacheLocked()
	}
	e := &keyedEntry[K, T]{key: key, obj: v}
	e.globalElem = p.byFreshness.PushBack(e)
	kl := p.byKey[key]
	if kl == nil {
		kl = list.New()
		p.byKey[key] = kl
	}
	e.keyElem = kl.PushBack(e)
	if p.byFreshness.Len() > int(p.maxSize.Load()) {
		// Evict the globally oldest entry.
		oldest := p.byFreshness.Front().Value.(*keyedEntry[K, T])
		p.byFreshness.Remove(oldest.globalElem)
		okl := p.byKey[oldest.key]
		okl.Remove(oldest.keyElem)
		if okl.Len() == 0 {
			delete(p.byKey, oldest.key)
		}
		evicted, hasEvicted = oldest.obj, true
		p.evictions++
	}
	p.mu.Unlock()
	// Destroy evicted after releasing the mutex.
	if hasEvicted && p.closer != nil {
		p.closer(evicted)
	}
}

// EnsureMaxSize grows the capacity to at least maxSize. The capacity never
// shrinks.
func (p *Keyed[K, T]) EnsureMaxSize(maxSize int) {
	for {
		old := p.maxSize.Load()
		if old >= int64(maxSize) {
			return
		}
		if p.maxSize.CompareAndSwap(old, int64(maxSize)) {
			return
		}
	}
}

// Drain destroys all idle objects. Closers run outside the lock.
func (p *Keyed[K, T]) Drain() {
	var drained []T
	p.mu.Lock()
	p.flushCacheLocked()
	for e := p.byFreshness.Front(); e != nil; e = e.Next() {
		drained = append(drained, e.Value.(*keyedEntry[K, T]).obj)
	}
	p.byFreshness.Init()
	p.byKey = make(map[K]*list.List)
	p.mu.Unlock()
	if p.closer != nil {
		for _, v := range drained {
			p.closer(v)
		}
	}
}

// Metrics returns a snapshot of the pool counters.
func (p *Keyed[K, T]) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	size := p.byFreshness.Len()
	if p.cache != nil {
		size--
	}
	return Metrics{
		Gets:      p.gets,
		Hits:      p.hits,
		Misses:    p.gets - p.hits,
		Puts:      p.puts,
		Evictions: p.evictions,
		Size:      size,
		MaxSize:   int(p.maxSize.Load()),
	}
}
