// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"github.com/strandio/strand/chain"
)

// chainReader steps through a Chain's blocks, serving each as a zero-copy
// window. Crossing a block boundary under a multi-byte Pull goes through the
// engine's scratch splicing.
type chainReader struct {
	c *chain.Chain
	// nextBlock is the index of the block after the current window.
	nextBlock int
}

// NewChainReader returns a Reader over c. The Chain must not be mutated while
// the reader is in use. It supports rewind, random access, size and new
// readers.
func NewChainReader(c *chain.Chain) *Reader {
	return NewReader(&chainReader{c: c})
}

func (b *chainReader) Done(r *Reader) {}

func (b *chainReader) PullBehind(r *Reader, recommended int) bool {
	if b.nextBlock >= b.c.NumBlocks() {
		return false
	}
	block := b.c.BlockAt(b.nextBlock)
	b.nextBlock++
	r.SetWindow(block, 0)
	return r.MoveLimitPos(len(block))
}

func (b *chainReader) SeekSlow(r *Reader, pos uint64) bool {
	size := uint64(b.c.Len())
	if pos >= size {
		r.ClearWindow()
		r.SetLimitPos(size)
		b.nextBlock = b.c.NumBlocks()
		return pos == size
	}
	var start uint64
	for i := 0; i < b.c.NumBlocks(); i++ {
		block := b.c.BlockAt(i)
		end := start + uint64(len(block))
		if pos < end {
			r.SetWindow(block, int(pos-start))
			r.SetLimitPos(end)
			b.nextBlock = i + 1
			return true
		}
		start = end
	}
	// The loop always finds pos < size.
	return false
}

func (b *chainReader) SizeSlow(r *Reader) (uint64, bool) {
	return uint64(b.c.Len()), true
}

func (b *chainReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{Rewind: true, RandomAccess: true, Size: true, NewReader: true}
}

func (b *chainReader) NewReaderSlow(r *Reader, pos uint64) *Reader {
	r2 := NewChainReader(b.c)
	r2.Seek(pos)
	return r2
}

func (b *chainReader) ReadToChainSlow(r *Reader, n int, dst *chain.Chain) int {
	// Move whole blocks by sharing them instead of copying.
	moved := 0
	for b.nextBlock < b.c.NumBlocks() {
		block := b.c.BlockAt(b.nextBlock)
		if len(block) > n-moved {
			break
		}
		dst.AppendBlockOf(b.c, b.nextBlock)
		b.nextBlock++
		if !r.MoveLimitPos(len(block)) {
			return moved
		}
		r.ClearWindow()
		moved += len(block)
	}
	return moved
}
