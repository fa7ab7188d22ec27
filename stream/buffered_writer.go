// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
)

// BufferedWriterOptions tune a buffered writer.
type BufferedWriterOptions struct {
	// BufferSize is the staging buffer size.
	BufferSize int
	// Ownership says whether Close closes the sink, when it is an io.Closer.
	Ownership Ownership
}

func (o *BufferedWriterOptions) normalize() {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultMaxBufferSize
	}
}

// syncer is the durability hook of a sink, satisfied by *os.File.
type syncer interface {
	Sync() error
}

// bufferedWriter adapts an io.Writer into the cursor contract.
type bufferedWriter struct {
	dst    io.Writer
	opts   BufferedWriterOptions
	buffer chain.Buffer
}

// NewBufferedWriter returns a Writer pushing to dst.
func NewBufferedWriter(dst io.Writer, opts BufferedWriterOptions) *Writer {
	opts.normalize()
	return NewWriter(&bufferedWriter{dst: dst, opts: opts})
}

// writeOut hands the written window prefix to the sink.
func (b *bufferedWriter) writeOut(w *Writer) bool {
	p := w.Written()
	total := 0
	for total < len(p) {
		n, err := b.dst.Write(p[total:])
		total += n
		if err != nil {
			// Only the bytes delivered before the error count toward the
			// position.
			w.SetStartPos(w.StartPos() + uint64(total))
			w.SetWindow(nil, 0)
			return w.Fail(errors.Wrapf(err, "writing to sink"))
		}
	}
	w.ClearWindow()
	return true
}

func (b *bufferedWriter) Done(w *Writer) {
	b.writeOut(w)
	b.buffer.Release()
	if b.opts.Ownership == Owned {
		if c, ok := b.dst.(io.Closer); ok {
			if err := c.Close(); err != nil {
				w.Fail(errors.Wrapf(err, "closing sink"))
			}
		}
	}
}

func (b *bufferedWriter) PushSlow(w *Writer, min, recommended int) bool {
	if !w.CheckOverflow(uint64(min)) {
		return false
	}
	if !b.writeOut(w) {
		return false
	}
	size := b.opts.BufferSize
	if size < min {
		size = min
	}
	b.buffer.Reset(size)
	w.SetWindow(b.buffer.Data(), 0)
	return true
}

func (b *bufferedWriter) WriteSlow(w *Writer, p []byte) bool {
	if !w.CheckOverflow(uint64(len(p))) {
		return false
	}
	if !b.writeOut(w) {
		return false
	}
	if len(p) >= b.opts.BufferSize {
		// Large writes bypass the staging buffer.
		n, err := b.dst.Write(p)
		w.SetStartPos(w.StartPos() + uint64(n))
		if err != nil {
			return w.Fail(errors.Wrapf(err, "writing to sink"))
		}
		return true
	}
	b.buffer.Reset(b.opts.BufferSize)
	w.SetWindow(b.buffer.Data(), copy(b.buffer.Data(), p))
	return true
}

func (b *bufferedWriter) FlushSlow(w *Writer, ft FlushType) bool {
	if ft == FlushFromObject {
		return true
	}
	if !b.writeOut(w) {
		return false
	}
	if ft == FlushFromMachine {
		if s, ok := b.dst.(syncer); ok {
			if err := s.Sync(); err != nil {
				return w.Fail(errors.Wrapf(err, "syncing sink"))
			}
		}
	}
	return true
}
