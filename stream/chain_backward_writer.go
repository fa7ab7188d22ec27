// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"github.com/strandio/strand/chain"
)

// chainBackwardWriter prepends to a Chain. The window is a span reserved at
// the front of the Chain; the writer fills it from its end.
type chainBackwardWriter struct {
	dst *chain.Chain
}

// NewChainBackwardWriter returns a BackwardWriter prepending to dst. Pos
// counts only bytes written through this writer.
func NewChainBackwardWriter(dst *chain.Chain) *BackwardWriter {
	return NewBackwardWriter(&chainBackwardWriter{dst: dst})
}

// sync gives the window's free prefix back to the Chain.
func (b *chainBackwardWriter) sync(w *BackwardWriter) {
	occupied := len(w.Occupied())
	free := w.Available()
	if free > 0 {
		b.dst.RemovePrefix(free)
	}
	w.MoveFlushedLen(occupied)
	w.SetWindow(nil, 0)
}

func (b *chainBackwardWriter) Done(w *BackwardWriter) { b.sync(w) }

func (b *chainBackwardWriter) PushSlow(w *BackwardWriter, min, recommended int) bool {
	b.sync(w)
	span := b.dst.PrependBuffer(min, recommended, maxInt(recommended, chain.DefaultMaxBlockSize))
	w.SetWindow(span, len(span))
	return true
}
