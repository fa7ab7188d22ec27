// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package chain

import (
	"sync/atomic"

	"github.com/strandio/strand/internal/invariants"
)

// Default block size bounds. Small tail data is packed into short blocks;
// blocks never grow past MaxBlockSize so that sharing a suffix does not pin an
// arbitrarily large allocation.
const (
	DefaultMinBlockSize = 256
	DefaultMaxBlockSize = 64 << 10
)

// Options tune the block growth schedule of a Chain.
type Options struct {
	// MinBlockSize is the smallest allocation for an owned block.
	MinBlockSize int
	// MaxBlockSize caps the allocation for an owned block.
	MaxBlockSize int
}

// WithBlockSizes returns Options with the given bounds, substituting defaults
// for non-positive values.
func WithBlockSizes(minSize, maxSize int) Options {
	o := Options{MinBlockSize: minSize, MaxBlockSize: maxSize}
	o.normalize()
	return o
}

func (o *Options) normalize() {
	if o.MinBlockSize <= 0 {
		o.MinBlockSize = DefaultMinBlockSize
	}
	if o.MaxBlockSize <= 0 {
		o.MaxBlockSize = DefaultMaxBlockSize
	}
	if o.MaxBlockSize < o.MinBlockSize {
		o.MaxBlockSize = o.MinBlockSize
	}
}

// block is the shared storage unit. Chains reference blocks through spans;
// refs counts the referencing spans across all Chains.
type block struct {
	// buf is the owned allocation. nil for external blocks, whose bytes are
	// held only by the referencing spans.
	buf  []byte
	refs atomic.Int32
	// used is the number of bytes of buf claimed by some span. Appending in
	// place is only legal at used, and only while refs == 1.
	used int
	// release runs when refs drops to zero. Set for external blocks only.
	release func()
}

func (b *block) ref() { b.refs.Add(1) }

func (b *block) unref() {
	if b.refs.Add(-1) == 0 {
		if b.release != nil {
			b.release()
			b.release = nil
		}
		b.buf = nil
	}
}

// span is one Chain's view into a block.
type span struct {
	b    *block
	data []byte
}

// Chain is a finite ordered sequence of blocks. The logical byte sequence is
// the concatenation of the spans; block boundaries are visible through Blocks
// but carry no meaning.
//
// Chain values must not be copied by assignment once non-empty; use Clone.
type Chain struct {
	spans []span
	size  int
	opts  Options
}

// New returns an empty Chain with the given options.
func New(opts Options) *Chain {
	opts.normalize()
	return &Chain{opts: opts}
}

// NewDefault returns an empty Chain with default options.
func NewDefault() *Chain { return New(Options{}) }

// FromBytes returns a Chain holding a copy of p.
func FromBytes(p []byte) *Chain {
	c := NewDefault()
	c.Append(p)
	return c
}

// FromExternal returns a Chain wrapping a foreign byte region without
// copying. release, if non-nil, runs when the last Chain referencing the
// region drops it.
func FromExternal(data []byte, release func()) *Chain {
	c := NewDefault()
	c.AppendExternal(data, release)
	return c
}

// Len returns the logical size in bytes.
func (c *Chain) Len() int { return c.size }

// Blocks returns the byte regions of the live blocks, in order. The returned
// slices alias the Chain's storage.
func (c *Chain) Blocks() [][]byte {
	out := make([][]byte, len(c.spans))
	for i := range c.spans {
		out[i] = c.spans[i].data
	}
	return out
}

// BlockAt returns the i-th block's bytes.
func (c *Chain) BlockAt(i int) []byte {
	invariants.CheckBounds(i, len(c.spans))
	return c.spans[i].data
}

// NumBlocks returns the number of live blocks.
func (c *Chain) NumBlocks() int { return len(c.spans) }

// Clone returns a Chain sharing this Chain's blocks.
func (c *Chain) Clone() *Chain {
	out := &Chain{
		spans: append([]span(nil), c.spans...),
		size:  c.size,
		opts:  c.opts,
	}
	for i := range out.spans {
		out.spans[i].b.ref()
	}
	return out
}

// Clear drops all bytes.
func (c *Chain) Clear() {
	for i := range c.spans {
		c.spans[i].b.unref()
	}
	c.spans = c.spans[:0]
	c.size = 0
}

// Append appends a copy of p, packing small data into the tail block.
func (c *Chain) Append(p []byte) {
	for len(p) > 0 {
		dst := c.appendRaw(1, len(p), len(p))
		n := copy(dst, p)
		c.RemoveSuffix(len(dst) - n)
		p = p[n:]
	}
}

// AppendString appends a copy of s.
func (c *Chain) AppendString(s string) {
	for len(s) > 0 {
		dst := c.appendRaw(1, len(s), len(s))
		n := copy(dst, s)
		c.RemoveSuffix(len(dst) - n)
		s = s[n:]
	}
}

// AppendByte appends a single byte.
func (c *Chain) AppendByte(b byte) {
	dst := c.appendRaw(1, 1, 1)
	dst[0] = b
	c.RemoveSuffix(len(dst) - 1)
}

// AppendChain appends other's bytes by sharing its blocks.
func (c *Chain) AppendChain(other *Chain) {
	for i := range other.spans {
		s := other.spans[i]
		s.b.ref()
		c.spans = append(c.spans, s)
		c.size += len(s.data)
	}
}

// AppendExternal appends a foreign byte region without copying. release, if
// non-nil, runs when the last referencing Chain drops the region. Empty data
// releases immediately and appends nothing.
func (c *Chain) AppendExternal(data []byte, release func()) {
	if len(data) == 0 {
		if release != nil {
			release()
		}
		return
	}
	b := &block{release: release}
	b.refs.Store(1)
	c.spans = append(c.spans, span{b: b, data: data})
	c.size += len(data)
}

// AppendBlockOf appends src's i-th block by sharing it.
func (c *Chain) AppendBlockOf(src *Chain, i int) {
	invariants.CheckBounds(i, len(src.spans))
	s := src.spans[i]
	s.b.ref()
	c.spans = append(c.spans, s)
	c.size += len(s.data)
}

// Prepend prepends a copy of p.
func (c *Chain) Prepend(p []byte) {
	if len(p) == 0 {
		return
	}
	b := newOwnedBlock(len(p))
	b.used = len(p)
	b.buf = b.buf[:len(p)]
	copy(b.buf, p)
	c.prependSpan(span{b: b, data: b.buf})
}

// PrependChain prepends other's bytes by sharing its blocks.
func (c *Chain) PrependChain(other *Chain) {
	for i := len(other.spans) - 1; i >= 0; i-- {
		s := other.spans[i]
		s.b.ref()
		c.prependSpan(s)
	}
}

// PrependExternal prepends a foreign byte region without copying.
func (c *Chain) PrependExternal(data []byte, release func()) {
	if len(data) == 0 {
		if release != nil {
			release()
		}
		return
	}
	b := &block{release: release}
	b.refs.Store(1)
	c.prependSpan(span{b: b, data: data})
}

func (c *Chain) prependSpan(s span) {
	c.spans = append(c.spans, span{})
	copy(c.spans[1:], c.spans)
	c.spans[0] = s
	c.size += len(s.data)
}

// AppendBuffer reserves at least min writable bytes at the end of the Chain
// and returns the reserved span, whose length is between min and max. The
// Chain's size already counts the whole returned span; the caller announces
// the unused tail with RemoveSuffix.
func (c *Chain) AppendBuffer(min, recommended, max int) []byte {
	if max < min {
		max = min
	}
	return c.appendRaw(min, recommended, max)
}

func (c *Chain) appendRaw(min, recommended, max int) []byte {
	// Extend the tail block in place when it is uniquely owned and its spare
	// capacity covers min.
	if n := len(c.spans); n > 0 {
		s := &c.spans[n-1]
		b := s.b
		if b.buf != nil && b.refs.Load() == 1 && spanEndsBlock(s, b) {
			spare := cap(b.buf) - b.used
			if spare >= min {
				take := clampLen(recommended, min, max)
				if take > spare {
					take = spare
				}
				start := b.used
				b.used += take
				b.buf = b.buf[:b.used]
				s.data = b.buf[start-len(s.data) : b.used]
				c.size += take
				return b.buf[start:b.used]
			}
		}
	}
	// New tail block, sized by the growth schedule. max caps the returned
	// span, not the allocation: the block keeps spare capacity for later
	// appends.
	size := c.nextBlockSize(min, recommended)
	b := newOwnedBlock(size)
	take := clampLen(recommended, min, max)
	if take > size {
		take = size
	}
	b.used = take
	b.buf = b.buf[:cap(b.buf)][:take]
	c.spans = append(c.spans, span{b: b, data: b.buf[:take]})
	c.size += take
	return b.buf[:take]
}

// PrependBuffer reserves at least min writable bytes at the front of the
// Chain and returns the reserved span. The caller announces the unused head
// with RemovePrefix.
func (c *Chain) PrependBuffer(min, recommended, max int) []byte {
	if max < min {
		max = min
	}
	size := c.nextBlockSize(min, recommended)
	if size > max {
		size = max
	}
	take := clampLen(recommended, min, max)
	if take > size {
		take = size
	}
	b := newOwnedBlock(take)
	b.used = take
	b.buf = b.buf[:take]
	c.prependSpan(span{b: b, data: b.buf})
	return b.buf
}

func spanEndsBlock(s *span, b *block) bool {
	if len(s.data) == 0 {
		return b.used == 0
	}
	return &s.data[len(s.data)-1] == &b.buf[b.used-1]
}

func clampLen(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func (c *Chain) nextBlockSize(min, recommended int) int {
	// Grow with the chain, within the configured bounds, so that long chains
	// settle on large blocks while short ones stay compact.
	size := c.size
	if size < c.opts.MinBlockSize {
		size = c.opts.MinBlockSize
	}
	if size > c.opts.MaxBlockSize {
		size = c.opts.MaxBlockSize
	}
	if size < recommended {
		size = recommended
	}
	if size > c.opts.MaxBlockSize {
		size = c.opts.MaxBlockSize
	}
	if size < min {
		size = min
	}
	return size
}

// Invariant of owned blocks: len(buf) == used, with spare capacity behind.
func newOwnedBlock(n int) *block {
	b := &block{buf: make([]byte, 0, n)}
	b.refs.Store(1)
	return b
}

// RemovePrefix drops the first n bytes.
func (c *Chain) RemovePrefix(n int) {
	invariants.Assertf(n <= c.size, "RemovePrefix(%d) of Chain with size %d", n, c.size)
	if n > c.size {
		n = c.size
	}
	c.size -= n
	for n > 0 {
		s := &c.spans[0]
		if n < len(s.data) {
			s.data = s.data[n:]
			return
		}
		n -= len(s.data)
		s.b.unref()
		c.spans = c.spans[1:]
	}
}

// RemoveSuffix drops the last n bytes.
func (c *Chain) RemoveSuffix(n int) {
	invariants.Assertf(n <= c.size, "RemoveSuffix(%d) of Chain with size %d", n, c.size)
	if n > c.size {
		n = c.size
	}
	c.size -= n
	for n > 0 {
		s := &c.spans[len(c.spans)-1]
		if n < len(s.data) {
			s.data = s.data[:len(s.data)-n]
			if s.b.buf != nil && s.b.refs.Load() == 1 && spanEndsBlockBefore(s, s.b, n) {
				// Return the trimmed tail to the block's spare capacity.
				s.b.used -= n
				s.b.buf = s.b.buf[:s.b.used]
			}
			return
		}
		n -= len(s.data)
		s.b.unref()
		c.spans = c.spans[:len(c.spans)-1]
	}
}

// spanEndsBlockBefore reports whether the span ended at the block's used
// boundary before trimmed bytes were cut from it.
func spanEndsBlockBefore(s *span, b *block, trimmed int) bool {
	end := len(s.data) + trimmed
	if end == 0 || b.used < end {
		return false
	}
	return &s.data[0] == &b.buf[b.used-end]
}

// CopyTo copies the Chain's bytes into dst and returns the number copied.
func (c *Chain) CopyTo(dst []byte) int {
	total := 0
	for i := range c.spans {
		if total == len(dst) {
			break
		}
		total += copy(dst[total:], c.spans[i].data)
	}
	return total
}

// Bytes flattens the Chain into a single slice. A single-block Chain returns
// its block without copying.
func (c *Chain) Bytes() []byte {
	if len(c.spans) == 1 {
		return c.spans[0].data
	}
	out := make([]byte, c.size)
	c.CopyTo(out)
	return out
}
