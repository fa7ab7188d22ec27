// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
	"github.com/strandio/strand/pool"
	"github.com/strandio/strand/stream"
)

// Staging buffer size for uncompressed input, matching the block size most
// of the codecs compress in.
const encodeWindow = 64 << 10

// WriterOptions tune a codec writer.
type WriterOptions struct {
	Codec Codec
	// Ownership says whether Close closes the compressed destination.
	Ownership stream.Ownership
}

// NewWriter returns a Writer that compresses the data pushed to it and hands
// the compressed form to dst. Closing the writer terminates the compressed
// stream; Flush with process strength makes everything written so far
// decodable by a concurrent reader, where the format supports it.
func NewWriter(dst *stream.Writer, opts WriterOptions) *stream.Writer {
	if opts.Codec.Algorithm == Snappy {
		return newSnappyWriter(dst, opts)
	}
	b := &codecWriter{
		dst:   dst,
		own:   opts.Ownership,
		codec: opts.Codec,
	}
	b.out.w = dst
	w := stream.NewWriter(b)
	if !dst.OK() {
		w.Fail(dst.Err())
		return w
	}
	b.enc = encoderPool.GetHandle(opts.Codec.key(), func() compressor {
		c, err := newCompressor(opts.Codec)
		if err != nil {
			return errCompressor{errState{err: errors.Mark(err, stream.ErrInvalidArgument)}}
		}
		return c
	}, nil)
	b.enc.Value().reset(&b.out)
	return w
}

// codecWriter stages uncompressed input in a window and feeds it to a
// streaming compressor writing to the destination.
type codecWriter struct {
	dst    *stream.Writer
	own    stream.Ownership
	codec  Codec
	enc    *pool.Handle[compressor]
	out    dstWriter
	buffer chain.Buffer
	broken bool
}

// dstWriter adapts the compressed destination's cursor window to io.Writer
// for the codec libraries.
type dstWriter struct {
	w *stream.Writer
}

func (d *dstWriter) Write(p []byte) (int, error) {
	if !d.w.Write(p) {
		return 0, d.w.Err()
	}
	return len(p), nil
}

// feed hands the written window prefix to the compressor.
func (b *codecWriter) feed(w *stream.Writer) bool {
	p := w.Written()
	if len(p) > 0 {
		if _, err := b.enc.Value().Write(p); err != nil {
			b.broken = true
			return w.Fail(b.annotate(err, w))
		}
	}
	w.ClearWindow()
	return true
}

func (b *codecWriter) annotate(err error, w *stream.Writer) error {
	if !b.dst.OK() {
		// The failure came from below; keep its kind and add this layer's
		// coordinate.
		return errors.Wrapf(b.dst.Err(), "at uncompressed byte %d", w.Pos())
	}
	return errors.Wrapf(errors.Mark(err, stream.ErrInternal),
		"at uncompressed byte %d", w.Pos())
}

func (b *codecWriter) PushSlow(w *stream.Writer, min, recommended int) bool {
	if !w.CheckOverflow(uint64(min)) {
		return false
	}
	if !b.feed(w) {
		return false
	}
	size := encodeWindow
	if size < min {
		size = min
	}
	b.buffer.Reset(size)
	w.SetWindow(b.buffer.Data(), 0)
	return true
}

func (b *codecWriter) WriteSlow(w *stream.Writer, p []byte) bool {
	if !w.CheckOverflow(uint64(len(p))) {
		return false
	}
	if !b.feed(w) {
		return false
	}
	if len(p) >= encodeWindow {
		if _, err := b.enc.Value().Write(p); err != nil {
			b.broken = true
			return w.Fail(b.annotate(err, w))
		}
		w.SetStartPos(w.StartPos() + uint64(len(p)))
		return true
	}
	b.buffer.Reset(encodeWindow)
	w.SetWindow(b.buffer.Data(), copy(b.buffer.Data(), p))
	return true
}

func (b *codecWriter) FlushSlow(w *stream.Writer, ft stream.FlushType) bool {
	if !b.feed(w) {
		return false
	}
	if ft == stream.FlushFromObject {
		return true
	}
	if err := b.enc.Value().flush(); err != nil {
		b.broken = true
		return w.Fail(b.annotate(err, w))
	}
	if !b.dst.Flush(ft) {
		return w.Fail(b.dst.Err())
	}
	return true
}

func (b *codecWriter) SizeSlow(w *stream.Writer) (uint64, bool) {
	return w.Pos(), true
}

func (b *codecWriter) Done(w *stream.Writer) {
	if b.enc == nil {
		// Construction failed before an encoder state was acquired.
		if b.own == stream.Owned && !b.dst.Close() {
			w.Fail(b.dst.Err())
		}
		return
	}
	if w.OK() {
		if b.feed(w) {
			if err := b.enc.Value().finish(); err != nil {
				b.broken = true
				w.Fail(b.annotate(err, w))
			}
		}
	} else {
		// A failed writer leaves the encoder mid-stream.
		b.broken = true
	}
	if b.broken {
		b.enc.Discard()
	} else {
		b.enc.Release()
	}
	b.buffer.Release()
	if b.own == stream.Owned {
		if !b.dst.Close() {
			w.Fail(b.dst.Err())
		}
	} else if !b.dst.Flush(stream.FlushFromProcess) {
		w.Fail(b.dst.Err())
	}
}
