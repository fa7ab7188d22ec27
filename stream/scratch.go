// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"sync"

	"github.com/strandio/strand/internal/invariants"
)

// readerScratch carries a synthetic contiguous window spliced together from
// backend bursts, together with the saved real window. While installed, the
// engine window aliases data; the backend's real window is restored when the
// scratch is exited.
type readerScratch struct {
	data []byte
	// origBuf is the saved real window. Its bytes are fully consumed: they
	// were copied into data, so origCursor == len(origBuf).
	origBuf    []byte
	origCursor int
}

var scratchPool = sync.Pool{
	New: func() interface{} { return new(readerScratch) },
}

// pullWithScratch collects backend bursts into a scratch buffer until at
// least min contiguous bytes are available, then installs the scratch as the
// window. Bytes already collected stay visible even when the backend ends
// early; the return value says whether min was reached.
func (r *Reader) pullWithScratch(min, recommended int) bool {
	s := r.scratch
	if s == nil {
		s = scratchPool.Get().(*readerScratch)
		s.data = s.data[:0]
	} else {
		// The installed scratch has too few bytes. Take its unread remainder
		// as the head of a fresh collection and restore the real window so
		// the backend can refill it.
		remainder := r.buf[r.cursor:]
		s.data = append(s.data[:0], remainder...)
		r.scratch = nil
		r.buf, r.cursor = s.origBuf, s.origCursor
	}
	// Consume whatever the real window still holds.
	s.data = append(s.data, r.Window()...)
	r.Advance(r.Available())

	ok := true
	for len(s.data) < min {
		if !r.pullBurst(recommended - len(s.data)) {
			ok = false
			break
		}
		s.data = append(s.data, r.Window()...)
		r.Advance(r.Available())
	}

	if len(s.data) == 0 {
		// Nothing collected; leave the real window in place.
		releaseScratch(s)
		return false
	}
	// Install the scratch as the window. The collected bytes are already
	// counted in limitPos, so the position rewinds to the first of them.
	s.origBuf, s.origCursor = r.buf, r.cursor
	invariants.Assert(s.origCursor == len(s.origBuf),
		"installing scratch over a window with unread bytes")
	r.buf, r.cursor = s.data, 0
	r.scratch = s
	return ok
}

// pullBurst asks the backend for one more burst against the real window.
func (r *Reader) pullBurst(recommended int) bool {
	if recommended < 1 {
		recommended = 1
	}
	switch back := r.back.(type) {
	case ScratchPuller:
		return back.PullBehind(r, recommended)
	case ReaderPuller:
		return back.PullSlow(r, 1, recommended)
	default:
		return false
	}
}

// exitScratch restores the real window, dropping unread scratch bytes. The
// position becomes the limit position, which is where the backend left off.
func (r *Reader) exitScratch() {
	s := r.scratch
	if s == nil {
		return
	}
	r.scratch = nil
	r.buf, r.cursor = s.origBuf, s.origCursor
	releaseScratch(s)
}

// ScratchUsed reports whether a spliced window is installed, for backends
// whose slow paths must not run behind an installed scratch.
func (r *Reader) ScratchUsed() bool { return r.scratch != nil }

func releaseScratch(s *readerScratch) {
	if cap(s.data) > 8*copyChunkSize {
		// Do not keep oversized staging around.
		s.data = nil
	}
	s.origBuf, s.origCursor = nil, 0
	scratchPool.Put(s)
}
