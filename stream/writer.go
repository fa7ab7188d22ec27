// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"math"

	"github.com/strandio/strand/chain"
	"github.com/strandio/strand/internal/invariants"
)

// Writer is the cursor-based push interface, symmetric to Reader. The window
// buf[cursor:] is writable; bytes before the cursor are written but possibly
// not yet handed to the backend.
//
// Invariants:
//   - 0 <= cursor <= len(buf)
//   - Pos() == StartPos() + cursor
type Writer struct {
	object
	buf    []byte
	cursor int
	// startPos is the absolute stream position corresponding to buf[0].
	startPos uint64
	back     WriterBackend
	// readMode is the outstanding reader returned by ReadMode. The next
	// mutation invalidates it.
	readMode *Reader
}

// WriterBackend supplies teardown for a Writer. Backends additionally
// implement WriterPusher and any of the optional interfaces.
type WriterBackend interface {
	// Done runs backend teardown during Close, typically handing the written
	// window prefix to the sink.
	Done(w *Writer)
}

// WriterPusher is implemented by backends that can make room in the window.
type WriterPusher interface {
	// PushSlow makes at least min writable bytes available or fails. Called
	// only when fewer than min bytes are free.
	PushSlow(w *Writer, min, recommended int) bool
}

// Optional backend interfaces.
type (
	writerBytes interface {
		// WriteSlow writes p, bypassing the window. Called after the window
		// has been synced.
		WriteSlow(w *Writer, p []byte) bool
	}
	writerChain interface {
		// WriteChainSlow writes c, sharing blocks where possible.
		WriteChainSlow(w *Writer, c *chain.Chain) bool
	}
	writerFlusher interface {
		FlushSlow(w *Writer, ft FlushType) bool
	}
	writerSeeker interface {
		SeekSlow(w *Writer, pos uint64) bool
	}
	writerTruncater interface {
		TruncateSlow(w *Writer, size uint64) bool
	}
	writerSizer interface {
		SizeSlow(w *Writer) (uint64, bool)
	}
	writerReadModer interface {
		// ReadModeSlow returns a reader over the written content, positioned
		// at pos. The engine invalidates it on the next mutation.
		ReadModeSlow(w *Writer, pos uint64) *Reader
	}
)

// NewWriter wires a backend into a Writer engine. Exported for backend
// implementations; applications use the concrete constructors.
func NewWriter(back WriterBackend) *Writer {
	return &Writer{back: back}
}

// Backend returns the installed backend.
func (w *Writer) Backend() WriterBackend { return w.back }

// SetWindow installs buf as the window with cursorIdx bytes already written.
func (w *Writer) SetWindow(buf []byte, cursorIdx int) {
	invariants.CheckBounds(cursorIdx, len(buf)+1)
	w.buf = buf
	w.cursor = cursorIdx
}

// ClearWindow empties the window, moving the start position to the current
// position.
func (w *Writer) ClearWindow() {
	w.startPos = w.Pos()
	w.buf = nil
	w.cursor = 0
}

// StartPos returns the absolute position of the window start.
func (w *Writer) StartPos() uint64 { return w.startPos }

// SetStartPos rewrites the window start position.
func (w *Writer) SetStartPos(pos uint64) { w.startPos = pos }

// Written returns the written-but-unsynced window prefix, for backends.
func (w *Writer) Written() []byte { return w.buf[:w.cursor] }

// Pos returns the absolute position of the next byte to fill.
func (w *Writer) Pos() uint64 { return w.startPos + uint64(w.cursor) }

// Available returns the free space in the window.
func (w *Writer) Available() int { return len(w.buf) - w.cursor }

// Window returns the writable part of the window. After filling n bytes the
// caller announces them with Advance.
func (w *Writer) Window() []byte { return w.buf[w.cursor:] }

// Advance marks n window bytes as written.
func (w *Writer) Advance(n int) {
	invariants.CheckBounds(n, w.Available()+1)
	w.cursor += n
}

// Fail stores err as the sticky status and drops the window, so fast paths
// stop accepting bytes as well. The position is preserved. Always returns
// false so that slow paths can `return w.Fail(...)`.
func (w *Writer) Fail(err error) bool {
	w.startPos = w.Pos()
	w.buf = nil
	w.cursor = 0
	return w.object.Fail(err)
}

// invalidate fails the outstanding read-mode reader, if any. Every mutating
// entry point calls it, making the invalidation checked rather than merely
// documented.
func (w *Writer) invalidate() {
	if w.readMode != nil {
		w.readMode.Fail(PreconditionErrorf(
			"read-mode reader invalidated by a writer mutation"))
		w.readMode = nil
	}
}

// Push ensures at least min writable bytes in the window.
func (w *Writer) Push(min, recommended int) bool {
	w.invalidate()
	if w.Available() >= min {
		return true
	}
	return w.pushSlow(min, recommended)
}

func (w *Writer) pushSlow(min, recommended int) bool {
	if !w.OK() {
		return false
	}
	if recommended < min {
		recommended = min
	}
	if p, ok := w.back.(WriterPusher); ok {
		return p.PushSlow(w, min, recommended)
	}
	return w.Fail(errExhausted("destination"))
}

// PutByte writes one byte.
func (w *Writer) PutByte(b byte) bool {
	w.invalidate()
	if w.Available() == 0 && !w.pushSlow(1, 1) {
		return false
	}
	w.buf[w.cursor] = b
	w.cursor++
	return true
}

// Write writes p.
func (w *Writer) Write(p []byte) bool {
	w.invalidate()
	if len(p) <= w.Available() {
		w.cursor += copy(w.buf[w.cursor:], p)
		return true
	}
	return w.writeSlow(p)
}

// WriteString writes s.
func (w *Writer) WriteString(s string) bool {
	w.invalidate()
	if len(s) <= w.Available() {
		w.cursor += copy(w.buf[w.cursor:], s)
		return true
	}
	return w.writeSlow([]byte(s))
}

func (w *Writer) writeSlow(p []byte) bool {
	if !w.OK() {
		return false
	}
	if wb, ok := w.back.(writerBytes); ok {
		return wb.WriteSlow(w, p)
	}
	for len(p) > 0 {
		if w.Available() == 0 && !w.pushSlow(1, len(p)) {
			return false
		}
		n := copy(w.buf[w.cursor:], p)
		w.cursor += n
		p = p[n:]
	}
	return true
}

// WriteChain writes c's bytes, sharing blocks where the backend can.
func (w *Writer) WriteChain(c *chain.Chain) bool {
	w.invalidate()
	if !w.OK() {
		return false
	}
	if wc, ok := w.back.(writerChain); ok {
		return wc.WriteChainSlow(w, c)
	}
	for _, b := range c.Blocks() {
		if !w.Write(b) {
			return false
		}
	}
	return true
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n uint64) bool {
	w.invalidate()
	for n > 0 {
		if w.Available() == 0 {
			want := copyChunkSize
			if n < uint64(want) {
				want = int(n)
			}
			if !w.pushSlow(1, want) {
				return false
			}
		}
		win := w.Window()
		if uint64(len(win)) > n {
			win = win[:n]
		}
		clear(win)
		w.cursor += len(win)
		n -= uint64(len(win))
	}
	return true
}

// Flush makes written data visible with the given strength. FlushFromObject
// releases caches, FlushFromProcess hands buffered data to the sink,
// FlushFromMachine additionally requests durability.
func (w *Writer) Flush(ft FlushType) bool {
	w.invalidate()
	if !w.OK() {
		return false
	}
	if f, ok := w.back.(writerFlusher); ok {
		return f.FlushSlow(w, ft)
	}
	return true
}

// Seek repositions to pos, where the backend supports it.
func (w *Writer) Seek(pos uint64) bool {
	w.invalidate()
	if !w.OK() {
		return false
	}
	if sk, ok := w.back.(writerSeeker); ok {
		return sk.SeekSlow(w, pos)
	}
	return w.Fail(PreconditionErrorf("seeking not supported by this writer"))
}

// Truncate discards everything written at or after size.
func (w *Writer) Truncate(size uint64) bool {
	w.invalidate()
	if !w.OK() {
		return false
	}
	if t, ok := w.back.(writerTruncater); ok {
		return t.TruncateSlow(w, size)
	}
	return w.Fail(PreconditionErrorf("truncation not supported by this writer"))
}

// Size returns the size of the written destination, if known.
func (w *Writer) Size() (uint64, bool) {
	if !w.OK() {
		return 0, false
	}
	if s, ok := w.back.(writerSizer); ok {
		return s.SizeSlow(w)
	}
	w.Fail(PreconditionErrorf("size not supported by this writer"))
	return 0, false
}

// SupportsReadMode reports whether ReadMode is available.
func (w *Writer) SupportsReadMode() bool {
	_, ok := w.back.(writerReadModer)
	return ok
}

// ReadMode returns a reader over the content written so far, positioned at
// pos, without flushing to the underlying sink. Further writes are permitted;
// the next mutation of the writer invalidates the returned reader, which from
// then on fails with ErrFailedPrecondition.
func (w *Writer) ReadMode(pos uint64) *Reader {
	if !w.OK() {
		return nil
	}
	rm, ok := w.back.(writerReadModer)
	if !ok {
		w.Fail(PreconditionErrorf("read mode not supported by this writer"))
		return nil
	}
	r := rm.ReadModeSlow(w, pos)
	w.readMode = r
	return r
}

// CheckOverflow fails the writer when advancing by n would exceed the
// representable position range.
func (w *Writer) CheckOverflow(n uint64) bool {
	if n > math.MaxUint64-w.Pos() {
		return w.Fail(errOverflow())
	}
	return true
}

// Close closes the writer, handing buffered data to the backend on the first
// call. Returns whether the writer is healthy.
func (w *Writer) Close() bool {
	if w.closed {
		return w.err == nil
	}
	w.invalidate()
	w.back.Done(w)
	w.closed = true
	w.startPos = w.Pos()
	w.buf = nil
	w.cursor = 0
	return w.err == nil
}
