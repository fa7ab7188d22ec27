// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import "github.com/strandio/strand/chain"

// wrappedWriter forwards every operation to an inner writer. Its window
// aliases the inner window, so the fast path costs nothing extra.
type wrappedWriter struct {
	inner *Writer
	own   Ownership
}

// NewWrappedWriter returns a Writer forwarding to inner. With Owned, closing
// the wrapper closes inner.
func NewWrappedWriter(inner *Writer, own Ownership) *Writer {
	b := &wrappedWriter{inner: inner, own: own}
	w := NewWriter(b)
	b.install(w)
	return w
}

func (b *wrappedWriter) install(w *Writer) {
	w.SetStartPos(b.inner.Pos())
	w.SetWindow(b.inner.Window(), 0)
}

func (b *wrappedWriter) sync(w *Writer) {
	if filled := w.cursor; filled > 0 {
		b.inner.Advance(filled)
	}
	b.install(w)
}

func (b *wrappedWriter) propagate(w *Writer) {
	if !b.inner.OK() && b.inner.IsOpen() {
		w.Fail(b.inner.Err())
	}
}

func (b *wrappedWriter) Done(w *Writer) {
	b.sync(w)
	if b.own == Owned && !b.inner.Close() {
		w.Fail(b.inner.Err())
	}
}

func (b *wrappedWriter) PushSlow(w *Writer, min, recommended int) bool {
	b.sync(w)
	ok := b.inner.Push(min, recommended)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *wrappedWriter) WriteSlow(w *Writer, p []byte) bool {
	b.sync(w)
	ok := b.inner.Write(p)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *wrappedWriter) WriteChainSlow(w *Writer, c *chain.Chain) bool {
	b.sync(w)
	ok := b.inner.WriteChain(c)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *wrappedWriter) FlushSlow(w *Writer, ft FlushType) bool {
	b.sync(w)
	ok := b.inner.Flush(ft)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *wrappedWriter) SeekSlow(w *Writer, pos uint64) bool {
	b.sync(w)
	ok := b.inner.Seek(pos)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *wrappedWriter) TruncateSlow(w *Writer, size uint64) bool {
	b.sync(w)
	ok := b.inner.Truncate(size)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *wrappedWriter) SizeSlow(w *Writer) (uint64, bool) {
	b.sync(w)
	size, ok := b.inner.Size()
	b.propagate(w)
	return size, ok
}

func (b *wrappedWriter) ReadModeSlow(w *Writer, pos uint64) *Reader {
	b.sync(w)
	r := b.inner.ReadMode(pos)
	b.install(w)
	b.propagate(w)
	return r
}
