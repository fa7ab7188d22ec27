// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

// innerReader is the shared machinery of reader projections: the projection's
// window aliases the inner reader's window, so refills are a sync of consumed
// bytes followed by a fresh install.
type innerReader struct {
	inner *Reader
	own   Ownership
}

// sync announces the projection's consumed window bytes to the inner reader.
// The projection's window was installed at the inner cursor, so the
// projection cursor is exactly the inner advance.
func (b *innerReader) sync(r *Reader) {
	if consumed := r.cursor; consumed > 0 {
		b.inner.Advance(consumed)
	}
	b.install(r)
}

// install exposes the inner window as the projection window.
func (b *innerReader) install(r *Reader) {
	r.SetWindow(b.inner.Window(), 0)
	r.SetLimitPos(b.inner.LimitPos())
}

// propagate copies a failure of the inner reader, once.
func (b *innerReader) propagate(r *Reader) {
	if !b.inner.OK() && b.inner.IsOpen() {
		r.Fail(b.inner.Err())
	}
}

func (b *innerReader) close(r *Reader) {
	if b.own == Owned && !b.inner.Close() {
		r.Fail(b.inner.Err())
	}
}

// wrappedReader forwards every operation to an inner reader. It is the type
// adapter of the projection family.
type wrappedReader struct {
	innerReader
}

// NewWrappedReader returns a Reader forwarding to inner. With Owned, closing
// the wrapper closes inner.
func NewWrappedReader(inner *Reader, own Ownership) *Reader {
	b := &wrappedReader{innerReader{inner: inner, own: own}}
	r := NewReader(b)
	b.install(r)
	return r
}

func (b *wrappedReader) Done(r *Reader) {
	b.sync(r)
	b.close(r)
}

func (b *wrappedReader) PullSlow(r *Reader, min, recommended int) bool {
	b.sync(r)
	ok := b.inner.Pull(min, recommended)
	b.install(r)
	b.propagate(r)
	return ok
}

func (b *wrappedReader) SeekSlow(r *Reader, pos uint64) bool {
	b.sync(r)
	ok := b.inner.Seek(pos)
	b.install(r)
	b.propagate(r)
	return ok
}

func (b *wrappedReader) SizeSlow(r *Reader) (uint64, bool) {
	b.sync(r)
	size, ok := b.inner.Size()
	b.propagate(r)
	return size, ok
}

func (b *wrappedReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{
		Rewind:       b.inner.SupportsRewind(),
		RandomAccess: b.inner.SupportsRandomAccess(),
		Size:         b.inner.SupportsSize(),
		NewReader:    b.inner.SupportsNewReader(),
	}
}

func (b *wrappedReader) NewReaderSlow(r *Reader, pos uint64) *Reader {
	b.sync(r)
	r2 := b.inner.NewReaderAt(pos)
	b.install(r)
	b.propagate(r)
	return r2
}

func (b *wrappedReader) VerifyEndSlow(r *Reader) {
	b.sync(r)
	b.inner.VerifyEnd()
	b.install(r)
	b.propagate(r)
}
