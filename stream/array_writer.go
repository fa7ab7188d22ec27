// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

// ArrayWriter writes into a fixed byte slice. Writing past its end fails
// with ErrResourceExhausted.
type ArrayWriter struct {
	*Writer
	back *arrayWriter
}

type arrayWriter struct {
	dst []byte
	// written is captured at Done, when the engine drops its window.
	written []byte
}

// NewArrayWriter returns a writer over dst. It supports truncation and read
// mode.
func NewArrayWriter(dst []byte) *ArrayWriter {
	b := &arrayWriter{dst: dst}
	w := NewWriter(b)
	w.SetWindow(dst, 0)
	return &ArrayWriter{Writer: w, back: b}
}

// Written returns the prefix of the destination written so far.
func (w *ArrayWriter) Written() []byte {
	if !w.IsOpen() {
		return w.back.written
	}
	return w.Writer.Written()
}

func (b *arrayWriter) Done(w *Writer) {
	b.written = b.dst[:len(w.Written())]
}

func (b *arrayWriter) PushSlow(w *Writer, min, recommended int) bool {
	return w.Fail(errExhausted("destination array"))
}

func (b *arrayWriter) TruncateSlow(w *Writer, size uint64) bool {
	if size > w.Pos() {
		return w.Fail(PreconditionErrorf(
			"truncating to %d past the written size %d", size, w.Pos()))
	}
	w.SetWindow(b.dst, int(size))
	return true
}

func (b *arrayWriter) SizeSlow(w *Writer) (uint64, bool) {
	return w.Pos(), true
}

func (b *arrayWriter) ReadModeSlow(w *Writer, pos uint64) *Reader {
	r := NewBytesReader(b.dst[:len(w.Written())])
	r.Seek(pos)
	return r
}
