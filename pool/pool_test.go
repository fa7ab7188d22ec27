// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package pool

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type obj struct {
	id     int
	closed bool
}

func TestPoolLIFO(t *testing.T) {
	p := New[*obj](4, nil)
	a, b := &obj{id: 1}, &obj{id: 2}
	p.Put(a)
	p.Put(b)
	// The freshest object comes back first.
	require.Same(t, b, p.Get(func() *obj { t.Fatal("factory on hit"); return nil }, nil))
	require.Same(t, a, p.Get(func() *obj { t.Fatal("factory on hit"); return nil }, nil))
}

func TestPoolFactoryOnlyOnMiss(t *testing.T) {
	p := New[*obj](2, nil)
	factoryCalls := 0
	factory := func() *obj { factoryCalls++; return &obj{id: factoryCalls} }
	refurbished := 0
	refurbish := func(*obj) { refurbished++ }

	v := p.Get(factory, refurbish)
	for i := 0; i < 3; i++ {
		p.Put(v)
		v = p.Get(factory, refurbish)
	}
	require.Equal(t, 1, factoryCalls)
	require.Equal(t, 3, refurbished)
}

func TestPoolEvictsOldest(t *testing.T) {
	var closed []int
	p := New[*obj](2, func(o *obj) { o.closed = true; closed = append(closed, o.id) })
	p.Put(&obj{id: 0})
	p.Put(&obj{id: 1})
	p.Put(&obj{id: 2})
	require.Equal(t, []int{0}, closed)
	p.Put(&obj{id: 3})
	require.Equal(t, []int{0, 1}, closed)
}

func TestPoolEnsureMaxSize(t *testing.T) {
	p := New[*obj](2, nil)
	p.Put(&obj{id: 1})
	p.Put(&obj{id: 2})
	p.EnsureMaxSize(4)
	p.Put(&obj{id: 3})
	p.Put(&obj{id: 4})
	require.Equal(t, 4, p.Metrics().Size)
	// LIFO order survives the resize.
	require.Equal(t, 4, p.Get(func() *obj { return nil }, nil).id)
	require.Equal(t, 3, p.Get(func() *obj { return nil }, nil).id)
	require.Equal(t, 2, p.Get(func() *obj { return nil }, nil).id)
	require.Equal(t, 1, p.Get(func() *obj { return nil }, nil).id)

	// Growing never shrinks.
	p.EnsureMaxSize(1)
	require.Equal(t, 4, p.Metrics().MaxSize)
}

// TestPoolCloserOutsideLock re-enters the pool from the closer of an evicted
// object. If the closer ran inside the critical section this would deadlock.
func TestPoolCloserOutsideLock(t *testing.T) {
	var p *Pool[*obj]
	reentered := false
	p = New[*obj](1, func(o *obj) {
		if !reentered {
			reentered = true
			p.Get(func() *obj { return &obj{id: 99} }, nil)
		}
	})
	p.Put(&obj{id: 1})
	p.Put(&obj{id: 2})
	require.True(t, reentered)
}

func TestPoolHandle(t *testing.T) {
	p := New[*obj](2, func(o *obj) { o.closed = true })
	h := p.GetHandle(func() *obj { return &obj{id: 7} }, nil)
	require.Equal(t, 7, h.Value().id)
	h.Release()
	h.Release() // idempotent
	require.Equal(t, 1, p.Metrics().Size)

	h2 := p.GetHandle(func() *obj { return nil }, nil)
	require.Equal(t, 7, h2.Value().id)
	h2.Discard()
	require.True(t, h2.Value().closed)
	require.Equal(t, 0, p.Metrics().Size)
}

func TestKeyedPoolRoundTrip(t *testing.T) {
	p := NewKeyed[string, *obj](2, nil)
	factoryCalls := 0
	refurbished := 0
	factory := func() *obj { factoryCalls++; return &obj{id: factoryCalls} }
	refurbish := func(*obj) { refurbished++ }

	var ids []int
	v := p.Get("k", factory, refurbish)
	ids = append(ids, v.id)
	for i := 0; i < 3; i++ {
		p.Put("k", v)
		v = p.Get("k", factory, refurbish)
		ids = append(ids, v.id)
	}
	require.Equal(t, 1, factoryCalls, "one factory call for the whole round trip")
	require.Equal(t, 3, refurbished)
	require.Equal(t, []int{1, 1, 1, 1}, ids)
}

func TestKeyedPoolDistinctKeys(t *testing.T) {
	p := NewKeyed[string, *obj](4, nil)
	p.Put("a", &obj{id: 1})
	p.Put("b", &obj{id: 2})
	missed := false
	got := p.Get("a", func() *obj { missed = true; return nil }, nil)
	require.False(t, missed)
	require.Equal(t, 1, got.id)
	got = p.Get("c", func() *obj { missed = true; return &obj{id: 3} }, nil)
	require.True(t, missed, "no object under key c")
	require.Equal(t, 3, got.id)
}

func TestKeyedPoolEviction(t *testing.T) {
	const capacity = 3
	var closed []int
	p := NewKeyed[int, *obj](capacity, func(o *obj) { o.closed = true; closed = append(closed, o.id) })
	objs := make([]*obj, capacity+1)
	for i := range objs {
		objs[i] = &obj{id: i}
		p.Put(i, objs[i])
	}
	// The oldest registration is destroyed.
	require.Equal(t, []int{0}, closed)
	require.True(t, objs[0].closed)
	require.False(t, objs[1].closed)
}

func TestKeyedPoolNewestPerKey(t *testing.T) {
	p := NewKeyed[string, *obj](4, nil)
	p.Put("k", &obj{id: 1})
	p.Put("k", &obj{id: 2})
	require.Equal(t, 2, p.Get("k", nil, nil).id)
	require.Equal(t, 1, p.Get("k", nil, nil).id)
}

func TestKeyedPoolCloserOutsideLock(t *testing.T) {
	var p *Keyed[string, *obj]
	reentered := false
	p = NewKeyed[string, *obj](1, func(o *obj) {
		if !reentered {
			reentered = true
			p.Put("other", &obj{id: 99})
		}
	})
	p.Put("a", &obj{id: 1})
	p.Put("b", &obj{id: 2})
	require.True(t, reentered)
}

func TestKeyedPoolConcurrent(t *testing.T) {
	p := NewKeyed[int, *obj](8, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				v := p.Get(g%3, func() *obj { return &obj{id: g} }, nil)
				p.Put(g%3, v)
			}
		}(g)
	}
	wg.Wait()
}

func TestKeyedPoolDrain(t *testing.T) {
	var closed int
	p := NewKeyed[string, *obj](4, func(*obj) { closed++ })
	p.Put("a", &obj{})
	p.Put("b", &obj{})
	p.Drain()
	require.Equal(t, 2, closed)
	require.Equal(t, 0, p.Metrics().Size)
}

func TestPoolMetrics(t *testing.T) {
	p := New[*obj](2, nil)
	p.Get(func() *obj { return &obj{} }, nil)
	p.Put(&obj{})
	p.Get(func() *obj { return nil }, nil)
	m := p.Metrics()
	require.EqualValues(t, 2, m.Gets)
	require.EqualValues(t, 1, m.Hits)
	require.EqualValues(t, 1, m.Misses)
	require.EqualValues(t, 1, m.Puts)
	require.Equal(t, 2, m.MaxSize)
}

func TestCollector(t *testing.T) {
	p := New[*obj](2, nil)
	p.Put(&obj{})
	c := NewCollector("test", p.Metrics)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 6)
}
