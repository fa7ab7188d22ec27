// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package digest provides pass-through readers and writers that fold the
// bytes flowing through them into a 64-bit digest, for integrity checks
// above the stream layer. The default digest is XXH64.
package digest

import (
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/strandio/strand/stream"
)

// Hash64 is the digest state: a hash.Hash64 fed incrementally.
type Hash64 = hash.Hash64

// NewXXH64 returns a fresh XXH64 state.
func NewXXH64() Hash64 { return xxhash.New() }

// Reader reads through an inner reader, folding every delivered byte into
// the digest. A forward Seek reads through the skipped bytes, which are
// folded like delivered ones. The reader reports neither rewind nor random
// access; a backward Seek outside the current window fails.
type Reader struct {
	*stream.Reader
	back *digestReader
}

// NewReader returns a digesting Reader over src using h (NewXXH64 if nil).
func NewReader(src *stream.Reader, h Hash64, own stream.Ownership) *Reader {
	if h == nil {
		h = NewXXH64()
	}
	b := &digestReader{inner: src, h: h, own: own}
	r := stream.NewReader(b)
	b.install(r)
	return &Reader{Reader: r, back: b}
}

// Digest returns the digest of all bytes consumed so far.
func (r *Reader) Digest() uint64 {
	r.back.sync(r.Reader)
	return r.back.h.Sum64()
}

type digestReader struct {
	inner *stream.Reader
	h     Hash64
	own   stream.Ownership
	// installed is the window length at install time; the consumed count is
	// recovered from it when syncing.
	installed int
}

func (b *digestReader) install(r *stream.Reader) {
	win := b.inner.Window()
	b.installed = len(win)
	r.SetWindow(win, 0)
	r.SetLimitPos(b.inner.LimitPos())
}

func (b *digestReader) sync(r *stream.Reader) {
	if consumed := b.installed - r.Available(); consumed > 0 {
		_, _ = b.h.Write(b.inner.Window()[:consumed])
		b.inner.Advance(consumed)
	}
	b.install(r)
}

func (b *digestReader) propagate(r *stream.Reader) {
	if !b.inner.OK() && b.inner.IsOpen() {
		r.Fail(b.inner.Err())
	}
}

func (b *digestReader) Done(r *stream.Reader) {
	b.sync(r)
	if b.own == stream.Owned && !b.inner.Close() {
		r.Fail(b.inner.Err())
	}
}

func (b *digestReader) PullSlow(r *stream.Reader, min, recommended int) bool {
	b.sync(r)
	ok := b.inner.Pull(min, recommended)
	b.install(r)
	b.propagate(r)
	return ok
}

func (b *digestReader) SizeSlow(r *stream.Reader) (uint64, bool) {
	size, ok := b.inner.Size()
	b.propagate(r)
	return size, ok
}

func (b *digestReader) Caps(r *stream.Reader) stream.ReaderCaps {
	return stream.ReaderCaps{Size: b.inner.SupportsSize()}
}

// Writer writes through to an inner writer, folding every byte into the
// digest.
type Writer struct {
	*stream.Writer
	back *digestWriter
}

// NewWriter returns a digesting Writer over dst using h (NewXXH64 if nil).
func NewWriter(dst *stream.Writer, h Hash64, own stream.Ownership) *Writer {
	if h == nil {
		h = NewXXH64()
	}
	b := &digestWriter{inner: dst, h: h, own: own}
	w := stream.NewWriter(b)
	b.install(w)
	return &Writer{Writer: w, back: b}
}

// Digest returns the digest of all bytes written so far.
func (w *Writer) Digest() uint64 {
	w.back.sync(w.Writer)
	return w.back.h.Sum64()
}

type digestWriter struct {
	inner     *stream.Writer
	h         Hash64
	own       stream.Ownership
	installed int
}

func (b *digestWriter) install(w *stream.Writer) {
	win := b.inner.Window()
	b.installed = len(win)
	w.SetStartPos(b.inner.Pos())
	w.SetWindow(win, 0)
}

func (b *digestWriter) sync(w *stream.Writer) {
	if filled := b.installed - w.Available(); filled > 0 {
		_, _ = b.h.Write(b.inner.Window()[:filled])
		b.inner.Advance(filled)
	}
	b.install(w)
}

func (b *digestWriter) propagate(w *stream.Writer) {
	if !b.inner.OK() && b.inner.IsOpen() {
		w.Fail(b.inner.Err())
	}
}

func (b *digestWriter) Done(w *stream.Writer) {
	b.sync(w)
	if b.own == stream.Owned {
		if !b.inner.Close() {
			w.Fail(b.inner.Err())
		}
	} else if !b.inner.Flush(stream.FlushFromProcess) {
		w.Fail(b.inner.Err())
	}
}

func (b *digestWriter) PushSlow(w *stream.Writer, min, recommended int) bool {
	b.sync(w)
	ok := b.inner.Push(min, recommended)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *digestWriter) WriteSlow(w *stream.Writer, p []byte) bool {
	b.sync(w)
	_, _ = b.h.Write(p)
	ok := b.inner.Write(p)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *digestWriter) FlushSlow(w *stream.Writer, ft stream.FlushType) bool {
	b.sync(w)
	ok := b.inner.Flush(ft)
	b.install(w)
	b.propagate(w)
	return ok
}

func (b *digestWriter) SizeSlow(w *stream.Writer) (uint64, bool) {
	size, ok := b.inner.Size()
	b.propagate(w)
	return size, ok
}
