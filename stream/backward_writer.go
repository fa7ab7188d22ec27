// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"github.com/strandio/strand/internal/invariants"
)

// BackwardWriter is a push interface that grows the logical byte sequence
// from the end: the bytes written last end up first. Its cursor moves down
// through the window; buf[cursor:] is occupied and buf[:cursor] is free.
//
// Length-prefixed framing producers use it to emit a payload and then the
// prefix in front of it without knowing the payload size up front.
type BackwardWriter struct {
	object
	buf    []byte
	cursor int
	// flushedLen counts bytes already handed to the backend, which sit after
	// the window's bytes in the logical sequence.
	flushedLen uint64
	back       BackwardWriterBackend
}

// BackwardWriterBackend supplies the slow paths of a BackwardWriter.
type BackwardWriterBackend interface {
	// PushSlow makes at least min free bytes available in front of the
	// occupied region, typically by handing the occupied region downstream.
	PushSlow(w *BackwardWriter, min, recommended int) bool
	// Done runs backend teardown during Close.
	Done(w *BackwardWriter)
}

// NewBackwardWriter wires a backend into a BackwardWriter engine.
func NewBackwardWriter(back BackwardWriterBackend) *BackwardWriter {
	return &BackwardWriter{back: back}
}

// SetWindow installs buf as the window with the cursor at cursorIdx; bytes at
// and after cursorIdx are occupied.
func (w *BackwardWriter) SetWindow(buf []byte, cursorIdx int) {
	invariants.CheckBounds(cursorIdx, len(buf)+1)
	w.buf = buf
	w.cursor = cursorIdx
}

// Occupied returns the occupied window suffix, for backends.
func (w *BackwardWriter) Occupied() []byte { return w.buf[w.cursor:] }

// FlushedLen returns the bytes already handed to the backend.
func (w *BackwardWriter) FlushedLen() uint64 { return w.flushedLen }

// MoveFlushedLen records n window bytes as handed to the backend.
func (w *BackwardWriter) MoveFlushedLen(n int) { w.flushedLen += uint64(n) }

// Fail stores err as the sticky status and drops the window, so fast paths
// stop accepting bytes as well. The position is preserved.
func (w *BackwardWriter) Fail(err error) bool {
	w.flushedLen = w.Pos()
	w.buf = nil
	w.cursor = 0
	return w.object.Fail(err)
}

// Pos returns the total number of bytes written so far.
func (w *BackwardWriter) Pos() uint64 {
	return w.flushedLen + uint64(len(w.buf)-w.cursor)
}

// Available returns the free space in front of the occupied region.
func (w *BackwardWriter) Available() int { return w.cursor }

// Push ensures at least min free bytes in front of the occupied region.
func (w *BackwardWriter) Push(min, recommended int) bool {
	if w.cursor >= min {
		return true
	}
	return w.pushSlow(min, recommended)
}

func (w *BackwardWriter) pushSlow(min, recommended int) bool {
	if !w.OK() {
		return false
	}
	if recommended < min {
		recommended = min
	}
	return w.back.PushSlow(w, min, recommended)
}

// PutByte prepends one byte to the sequence written so far.
func (w *BackwardWriter) PutByte(b byte) bool {
	if w.cursor == 0 && !w.pushSlow(1, 1) {
		return false
	}
	w.cursor--
	w.buf[w.cursor] = b
	return true
}

// Write prepends p to the sequence written so far.
func (w *BackwardWriter) Write(p []byte) bool {
	if len(p) <= w.cursor {
		w.cursor -= len(p)
		copy(w.buf[w.cursor:], p)
		return true
	}
	return w.writeSlow(p)
}

// WriteString prepends s.
func (w *BackwardWriter) WriteString(s string) bool {
	if len(s) <= w.cursor {
		w.cursor -= len(s)
		copy(w.buf[w.cursor:], s)
		return true
	}
	return w.writeSlow([]byte(s))
}

func (w *BackwardWriter) writeSlow(p []byte) bool {
	if !w.OK() {
		return false
	}
	// Fill the window tail-first so the logical order is preserved.
	for len(p) > 0 {
		if w.cursor == 0 && !w.pushSlow(1, len(p)) {
			return false
		}
		n := len(p)
		if n > w.cursor {
			n = w.cursor
		}
		w.cursor -= n
		copy(w.buf[w.cursor:], p[len(p)-n:])
		p = p[:len(p)-n]
	}
	return true
}

// Close closes the writer, handing the occupied region to the backend on the
// first call.
func (w *BackwardWriter) Close() bool {
	if w.closed {
		return w.err == nil
	}
	w.back.Done(w)
	w.closed = true
	w.flushedLen = w.Pos()
	w.buf = nil
	w.cursor = 0
	return w.err == nil
}
