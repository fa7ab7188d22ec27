// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

// prefixLimitingReader hides a prefix of an inner reader: position 0 of the
// wrapper corresponds to the base position of the inner reader.
type prefixLimitingReader struct {
	inner *Reader
	own   Ownership
	base  uint64
}

// NewPrefixLimitingReader returns a Reader whose position 0 is inner's
// position at construction.
func NewPrefixLimitingReader(inner *Reader, own Ownership) *Reader {
	b := &prefixLimitingReader{inner: inner, own: own, base: inner.Pos()}
	r := NewReader(b)
	b.install(r)
	return r
}

func (b *prefixLimitingReader) install(r *Reader) {
	r.SetWindow(b.inner.Window(), 0)
	r.SetLimitPos(b.inner.LimitPos() - b.base)
}

func (b *prefixLimitingReader) sync(r *Reader) {
	if consumed := r.cursor; consumed > 0 {
		b.inner.Advance(consumed)
	}
	b.install(r)
}

func (b *prefixLimitingReader) propagate(r *Reader) {
	if !b.inner.OK() && b.inner.IsOpen() {
		r.Fail(b.inner.Err())
	}
}

func (b *prefixLimitingReader) Done(r *Reader) {
	b.sync(r)
	if b.own == Owned && !b.inner.Close() {
		r.Fail(b.inner.Err())
	}
}

func (b *prefixLimitingReader) PullSlow(r *Reader, min, recommended int) bool {
	b.sync(r)
	ok := b.inner.Pull(min, recommended)
	b.install(r)
	b.propagate(r)
	return ok
}

func (b *prefixLimitingReader) SeekSlow(r *Reader, pos uint64) bool {
	b.sync(r)
	ok := b.inner.Seek(pos + b.base)
	b.install(r)
	b.propagate(r)
	return ok
}

func (b *prefixLimitingReader) SizeSlow(r *Reader) (uint64, bool) {
	b.sync(r)
	size, ok := b.inner.Size()
	b.propagate(r)
	if !ok {
		return 0, false
	}
	if size < b.base {
		size = b.base
	}
	return size - b.base, true
}

func (b *prefixLimitingReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{
		Rewind:       b.inner.SupportsRewind(),
		RandomAccess: b.inner.SupportsRandomAccess(),
		Size:         b.inner.SupportsSize(),
	}
}
