// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"github.com/strandio/strand/chain"
)

// chainWriter appends to a Chain. The window is a span reserved inside the
// Chain itself, so syncing is trimming rather than copying.
type chainWriter struct {
	dst *chain.Chain
}

// NewChainWriter returns a Writer appending to dst. It supports read mode;
// the read-mode reader is invalidated by the next write.
func NewChainWriter(dst *chain.Chain) *Writer {
	b := &chainWriter{dst: dst}
	w := NewWriter(b)
	w.SetStartPos(uint64(dst.Len()))
	return w
}

// sync gives the window's free suffix back to the Chain, leaving the Chain
// holding exactly the written bytes.
func (b *chainWriter) sync(w *Writer) {
	free := w.Available()
	if free > 0 {
		b.dst.RemoveSuffix(free)
	}
	w.SetWindow(w.Written(), len(w.Written()))
}

func (b *chainWriter) Done(w *Writer) { b.sync(w) }

func (b *chainWriter) PushSlow(w *Writer, min, recommended int) bool {
	if !w.CheckOverflow(uint64(min)) {
		return false
	}
	b.sync(w)
	span := b.dst.AppendBuffer(min, recommended, maxInt(recommended, chain.DefaultMaxBlockSize))
	w.SetStartPos(uint64(b.dst.Len() - len(span)))
	w.SetWindow(span, 0)
	return true
}

func (b *chainWriter) WriteSlow(w *Writer, p []byte) bool {
	if !w.CheckOverflow(uint64(len(p))) {
		return false
	}
	b.sync(w)
	w.ClearWindow()
	b.dst.Append(p)
	w.SetStartPos(uint64(b.dst.Len()))
	return true
}

func (b *chainWriter) WriteChainSlow(w *Writer, c *chain.Chain) bool {
	if !w.CheckOverflow(uint64(c.Len())) {
		return false
	}
	b.sync(w)
	w.ClearWindow()
	b.dst.AppendChain(c)
	w.SetStartPos(uint64(b.dst.Len()))
	return true
}

func (b *chainWriter) FlushSlow(w *Writer, ft FlushType) bool {
	b.sync(w)
	w.ClearWindow()
	return true
}

func (b *chainWriter) SizeSlow(w *Writer) (uint64, bool) {
	return w.Pos(), true
}

func (b *chainWriter) ReadModeSlow(w *Writer, pos uint64) *Reader {
	b.sync(w)
	w.ClearWindow()
	r := NewChainReader(b.dst)
	r.Seek(pos)
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
