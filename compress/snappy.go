// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/strandio/strand/chain"
	"github.com/strandio/strand/stream"
)

// snappy.kBlockSize: the compressor reads input in blocks of this size and
// copies a block to scratch when it is not contiguous, so the staging chain
// keeps its blocks at exactly this size.
const snappyBlockSize = 64 << 10

// snappyReader serves the whole decompressed stream as one window. Snappy's
// block format is not incremental: the compressed stream is read and
// decompressed up front.
type snappyReader struct {
	src  *stream.Reader
	own  stream.Ownership
	data []byte
}

func newSnappyReader(src *stream.Reader, opts ReaderOptions) *stream.Reader {
	b := &snappyReader{src: src, own: opts.Ownership}
	r := stream.NewReader(b)
	if len(opts.Codec.Dictionary) > 0 {
		r.Fail(errors.Mark(errors.New("snappy: dictionaries are not supported"),
			stream.ErrInvalidArgument))
		return r
	}
	compressed, ok := src.ReadAllBytes()
	if !ok {
		r.Fail(src.Err())
		return r
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		r.Fail(errors.Wrapf(errors.Mark(err, stream.ErrInvalidArgument),
			"invalid snappy-compressed stream, at uncompressed byte 0"))
		return r
	}
	b.data = data
	r.SetWindow(data, 0)
	r.SetLimitPos(uint64(len(data)))
	return r
}

func (b *snappyReader) Done(r *stream.Reader) {
	if b.own == stream.Owned && !b.src.Close() {
		r.Fail(b.src.Err())
	}
}

func (b *snappyReader) PullSlow(r *stream.Reader, min, recommended int) bool {
	return false
}

func (b *snappyReader) SeekSlow(r *stream.Reader, pos uint64) bool {
	r.SetWindow(b.data, len(b.data))
	return false
}

func (b *snappyReader) SizeSlow(r *stream.Reader) (uint64, bool) {
	return uint64(len(b.data)), true
}

func (b *snappyReader) Caps(r *stream.Reader) stream.ReaderCaps {
	return stream.ReaderCaps{Rewind: true, RandomAccess: true, Size: true, NewReader: true}
}

func (b *snappyReader) NewReaderSlow(r *stream.Reader, pos uint64) *stream.Reader {
	r2 := stream.NewBytesReader(b.data)
	r2.Seek(pos)
	return r2
}

// snappyWriter buffers the whole uncompressed stream in a Chain of
// block-sized pieces and compresses it on Close. Flush cannot make data
// visible early; only object strength is meaningful.
type snappyWriter struct {
	dst *stream.Writer
	own stream.Ownership
	un  *chain.Chain
}

func newSnappyWriter(dst *stream.Writer, opts WriterOptions) *stream.Writer {
	b := &snappyWriter{
		dst: dst,
		own: opts.Ownership,
		un:  chain.New(chain.WithBlockSizes(snappyBlockSize, snappyBlockSize)),
	}
	w := stream.NewWriter(b)
	if len(opts.Codec.Dictionary) > 0 {
		w.Fail(errors.Mark(errors.New("snappy: dictionaries are not supported"),
			stream.ErrInvalidArgument))
		return w
	}
	if !dst.OK() {
		w.Fail(dst.Err())
	}
	return w
}

func (b *snappyWriter) sync(w *stream.Writer) {
	if free := w.Available(); free > 0 {
		b.un.RemoveSuffix(free)
	}
	w.SetWindow(w.Written(), len(w.Written()))
}

func (b *snappyWriter) PushSlow(w *stream.Writer, min, recommended int) bool {
	if !w.CheckOverflow(uint64(min)) {
		return false
	}
	b.sync(w)
	span := b.un.AppendBuffer(min, recommended, snappyBlockSize)
	w.SetStartPos(uint64(b.un.Len() - len(span)))
	w.SetWindow(span, 0)
	return true
}

func (b *snappyWriter) WriteChainSlow(w *stream.Writer, c *chain.Chain) bool {
	if !w.CheckOverflow(uint64(c.Len())) {
		return false
	}
	b.sync(w)
	w.ClearWindow()
	b.un.AppendChain(c)
	w.SetStartPos(uint64(b.un.Len()))
	return true
}

func (b *snappyWriter) FlushSlow(w *stream.Writer, ft stream.FlushType) bool {
	b.sync(w)
	w.ClearWindow()
	return true
}

func (b *snappyWriter) SizeSlow(w *stream.Writer) (uint64, bool) {
	return w.Pos(), true
}

func (b *snappyWriter) ReadModeSlow(w *stream.Writer, pos uint64) *stream.Reader {
	b.sync(w)
	w.ClearWindow()
	r := stream.NewChainReader(b.un)
	r.Seek(pos)
	return r
}

func (b *snappyWriter) Done(w *stream.Writer) {
	b.sync(w)
	if w.OK() {
		compressed := snappy.Encode(nil, b.un.Bytes())
		if !b.dst.Write(compressed) {
			w.Fail(b.dst.Err())
		}
	}
	if b.own == stream.Owned {
		if !b.dst.Close() {
			w.Fail(b.dst.Err())
		}
	} else if !b.dst.Flush(stream.FlushFromProcess) {
		w.Fail(b.dst.Err())
	}
}
