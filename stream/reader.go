// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"math"

	"github.com/strandio/strand/chain"
	"github.com/strandio/strand/internal/invariants"
)

// copyChunkSize is the window size requested while skipping or copying
// through data that is not otherwise buffered.
const copyChunkSize = 64 << 10

// Reader is the cursor-based pull interface. It exposes a contiguous byte
// window; Pull refills the window, Window returns its unread part, Advance
// consumes bytes from it.
//
// Reader is a single concrete engine. Concrete sources implement
// ReaderBackend (and the optional capability interfaces) and are installed by
// the constructors in this package and by codec packages.
//
// Invariants:
//   - 0 <= cursor <= len(buf)
//   - Pos() == LimitPos() - Available()
//   - LimitPos() only increases, except on Seek, and on Fail and Close,
//     which drop the unread window.
type Reader struct {
	object
	// buf is the current window; buf[cursor:] is unread. The window start is
	// always buf[0], so cursor is an index, never a pointer to patch.
	buf    []byte
	cursor int
	// limitPos is the absolute stream position corresponding to len(buf).
	limitPos uint64
	back     ReaderBackend
	// scratch is non-nil while a synthetic contiguous window spliced from
	// backend bursts is installed.
	scratch     *readerScratch
	readAllHint bool
}

// ReaderBackend supplies teardown for a Reader. Backends additionally
// implement ReaderPuller or ScratchPuller to produce data, and any of the
// optional capability interfaces.
type ReaderBackend interface {
	// Done runs backend teardown during Close. The engine marks the object
	// closed afterwards; Done may Fail the reader to report teardown errors.
	Done(r *Reader)
}

// ReaderPuller is implemented by backends that can refill the window with at
// least min contiguous bytes on their own.
type ReaderPuller interface {
	// PullSlow makes at least min bytes available or reports failure or end
	// of data. Called only when fewer than min bytes are available.
	PullSlow(r *Reader, min, recommended int) bool
}

// ScratchPuller is implemented by backends that produce data in bursts of
// arbitrary size. The engine splices bursts into a contiguous window through
// a scratch buffer when a caller needs more than one burst provides.
type ScratchPuller interface {
	// PullBehind installs the next non-empty burst as the window, advancing
	// the limit position by the burst size, or reports failure or end of
	// data. Called only with an exhausted window and no scratch installed.
	PullBehind(r *Reader, recommended int) bool
}

// ReaderCaps describes optional capabilities of a backend.
type ReaderCaps struct {
	// Rewind reports that Seek may move backward.
	Rewind bool
	// RandomAccess reports that Seek is cheap in both directions.
	RandomAccess bool
	// Size reports that Size is available.
	Size bool
	// NewReader reports that independent readers over the same source can be
	// created.
	NewReader bool
}

// Optional backend interfaces.
type (
	readerCapper interface {
		Caps(r *Reader) ReaderCaps
	}
	readerSeeker interface {
		// SeekSlow repositions the stream. Called with the scratch already
		// exited and the target outside the current window.
		SeekSlow(r *Reader, pos uint64) bool
	}
	readerSizer interface {
		SizeSlow(r *Reader) (uint64, bool)
	}
	readerFactory interface {
		NewReaderSlow(r *Reader, pos uint64) *Reader
	}
	readerToChain interface {
		// ReadToChainSlow moves up to n unread bytes into dst with the least
		// copying, returning the number moved. Called with an exhausted
		// window.
		ReadToChainSlow(r *Reader, n int, dst *chain.Chain) int
	}
	readerVerifier interface {
		// VerifyEndSlow asserts that no data remains, storing a failure
		// otherwise. Implementations usually include VerifyEndDefault.
		VerifyEndSlow(r *Reader)
	}
	readAllHinted interface {
		ReadAllHintChanged(r *Reader, hint bool)
	}
)

// NewReader wires a backend into a Reader engine. It is exported for backend
// implementations in other packages; applications use the concrete
// constructors instead.
func NewReader(back ReaderBackend) *Reader {
	return &Reader{back: back}
}

// Backend returns the installed backend.
func (r *Reader) Backend() ReaderBackend { return r.back }

// Window state, exported for backend implementations.

// SetWindow installs data as the whole window with the cursor at cursorIdx.
// The caller is responsible for keeping the limit position consistent.
func (r *Reader) SetWindow(data []byte, cursorIdx int) {
	invariants.CheckBounds(cursorIdx, len(data)+1)
	r.buf = data
	r.cursor = cursorIdx
}

// ClearWindow empties the window without touching the limit position, so the
// position becomes the limit position.
func (r *Reader) ClearWindow() {
	r.buf = nil
	r.cursor = 0
}

// LimitPos returns the absolute position corresponding to the window end.
func (r *Reader) LimitPos() uint64 { return r.limitPos }

// SetLimitPos rewrites the limit position. Used by seeking backends.
func (r *Reader) SetLimitPos(pos uint64) { r.limitPos = pos }

// MoveLimitPos advances the limit position by exactly the bytes obtained in a
// refill. Advancing it other than once per refill miscounts positions.
func (r *Reader) MoveLimitPos(n int) bool {
	if uint64(n) > math.MaxUint64-r.limitPos {
		return r.Fail(errOverflow())
	}
	r.limitPos += uint64(n)
	return true
}

// Pos returns the absolute position of the next byte to deliver.
func (r *Reader) Pos() uint64 {
	return r.limitPos - uint64(len(r.buf)-r.cursor)
}

// Available returns the number of unread bytes in the window.
func (r *Reader) Available() int { return len(r.buf) - r.cursor }

// Window returns the unread part of the window. Valid until the next
// operation that refills or repositions.
func (r *Reader) Window() []byte { return r.buf[r.cursor:] }

// Advance consumes n bytes from the window.
func (r *Reader) Advance(n int) {
	invariants.CheckBounds(n, r.Available()+1)
	r.cursor += n
}

// Fail stores err as the sticky status and empties the window, so fast paths
// stop delivering bytes as well. The position is preserved. Always returns
// false so that slow paths can `return r.Fail(...)`.
func (r *Reader) Fail(err error) bool {
	if s := r.scratch; s != nil {
		r.scratch = nil
		releaseScratch(s)
	}
	r.limitPos = r.Pos()
	r.ClearWindow()
	return r.object.Fail(err)
}

// ReadAllHint reports the current read-all hint, for backends.
func (r *Reader) ReadAllHint() bool { return r.readAllHint }

// SetReadAllHint announces that the caller intends to read the source to the
// end, permitting a source to map or coalesce the remainder.
func (r *Reader) SetReadAllHint(hint bool) {
	r.readAllHint = hint
	if h, ok := r.back.(readAllHinted); ok {
		h.ReadAllHintChanged(r, hint)
	}
}

// Pull ensures that at least min bytes are available in the window,
// requesting recommended bytes when the backend has a choice. Returns false
// at end of data (OK stays true) or on failure (Err reports it).
func (r *Reader) Pull(min, recommended int) bool {
	if r.Available() >= min {
		return true
	}
	return r.pullSlow(min, recommended)
}

func (r *Reader) pullSlow(min, recommended int) bool {
	if !r.OK() {
		return false
	}
	if recommended < min {
		recommended = min
	}
	if r.scratch != nil {
		return r.pullWithScratch(min, recommended)
	}
	if p, ok := r.back.(ReaderPuller); ok {
		return p.PullSlow(r, min, recommended)
	}
	if sp, ok := r.back.(ScratchPuller); ok {
		if min <= 1 && r.Available() == 0 {
			return sp.PullBehind(r, recommended)
		}
		return r.pullWithScratch(min, recommended)
	}
	return false
}

// NextByte delivers the next byte.
func (r *Reader) NextByte() (byte, bool) {
	if r.Available() == 0 && !r.pullSlow(1, 1) {
		return 0, false
	}
	b := r.buf[r.cursor]
	r.cursor++
	return b, true
}

// ReadSome copies up to len(dst) bytes and returns the number copied. A short
// count at end of data is not a failure.
func (r *Reader) ReadSome(dst []byte) int {
	total := 0
	for total < len(dst) {
		if r.Available() == 0 {
			if rd, ok := r.back.(readerDirect); ok && r.scratch == nil && len(dst)-total >= copyChunkSize {
				requested := len(dst) - total
				n, handled := rd.ReadDirect(r, dst[total:])
				if handled {
					total += n
					if n < requested {
						break
					}
					continue
				}
			}
			if !r.pullSlow(1, len(dst)-total) {
				break
			}
		}
		n := copy(dst[total:], r.Window())
		r.Advance(n)
		total += n
	}
	return total
}

// readerDirect lets a buffering backend bypass its buffer for large reads.
type readerDirect interface {
	// ReadDirect reads into dst, advancing the limit position itself.
	// handled is false if the backend wants the generic path.
	ReadDirect(r *Reader, dst []byte) (n int, handled bool)
}

// Read copies exactly len(dst) bytes. Returns false on failure or if data
// ends early; end of data leaves OK true and the copied prefix in dst.
func (r *Reader) Read(dst []byte) bool {
	return r.ReadSome(dst) == len(dst)
}

// ReadToChain moves n bytes into dst, sharing storage where the backend
// supports it. Returns false on failure or if data ends early.
func (r *Reader) ReadToChain(n int, dst *chain.Chain) bool {
	for n > 0 {
		if r.Available() == 0 {
			if tc, ok := r.back.(readerToChain); ok && r.scratch == nil {
				moved := tc.ReadToChainSlow(r, n, dst)
				n -= moved
				if n == 0 {
					return true
				}
				if moved > 0 {
					continue
				}
			}
			if !r.pullSlow(1, n) {
				return false
			}
		}
		win := r.Window()
		if len(win) > n {
			win = win[:n]
		}
		dst.Append(win)
		r.Advance(len(win))
		n -= len(win)
	}
	return true
}

// ReadAll reads the rest of the source into dst. Returns false only on
// failure; plain end of data returns true.
func (r *Reader) ReadAll(dst *chain.Chain) bool {
	r.SetReadAllHint(true)
	for {
		if r.Available() == 0 && !r.pullSlow(1, copyChunkSize) {
			return r.OK()
		}
		dst.Append(r.Window())
		r.Advance(r.Available())
	}
}

// ReadAllBytes reads the rest of the source into a flat slice.
func (r *Reader) ReadAllBytes() ([]byte, bool) {
	c := chain.NewDefault()
	if !r.ReadAll(c) {
		return nil, false
	}
	return c.Bytes(), true
}

// CopyTo transfers n bytes to w with the least copying. Returns false if the
// source ends early or either side fails; the destination's status tells the
// sides apart.
func (r *Reader) CopyTo(n uint64, w *Writer) bool {
	for n > 0 {
		if r.Available() == 0 {
			want := copyChunkSize
			if n < uint64(want) {
				want = int(n)
			}
			if !r.pullSlow(1, want) {
				return false
			}
		}
		win := r.Window()
		if uint64(len(win)) > n {
			win = win[:n]
		}
		if !w.Write(win) {
			return false
		}
		r.Advance(len(win))
		n -= uint64(len(win))
	}
	return true
}

// CopyToBackward transfers n bytes to w. Because w grows from the end, the
// whole run is staged before writing.
func (r *Reader) CopyToBackward(n int, w *BackwardWriter) bool {
	staged := make([]byte, n)
	if got := r.ReadSome(staged); got != n {
		return false
	}
	return w.Write(staged)
}

// Seek repositions to pos. Within the window it is a cursor move; otherwise
// the backend decides. Forward seeks over non-seekable sources read and
// discard. Returns false when pos is past the end of data.
func (r *Reader) Seek(pos uint64) bool {
	if start := r.limitPos - uint64(len(r.buf)); pos >= start && pos <= r.limitPos {
		r.cursor = int(pos - start)
		return true
	}
	return r.seekSlow(pos)
}

// Skip advances the position by n, reading and discarding where the source
// cannot seek.
func (r *Reader) Skip(n uint64) bool {
	if uint64(r.Available()) >= n {
		r.cursor += int(n)
		return true
	}
	if n > math.MaxUint64-r.Pos() {
		return r.Fail(errOverflow())
	}
	return r.seekSlow(r.Pos() + n)
}

func (r *Reader) seekSlow(pos uint64) bool {
	if !r.OK() {
		return false
	}
	r.exitScratch()
	if sk, ok := r.back.(readerSeeker); ok {
		return sk.SeekSlow(r, pos)
	}
	if pos >= r.limitPos {
		return r.SkipForward(pos)
	}
	return r.Fail(PreconditionErrorf("seeking backward not supported by this reader"))
}

// SkipForward discards bytes from the current position until pos. Exported
// for backends whose SeekSlow has handled the backward case and falls back to
// a forward scan.
func (r *Reader) SkipForward(pos uint64) bool {
	for r.Pos() < pos {
		if r.Available() == 0 {
			remaining := pos - r.Pos()
			want := copyChunkSize
			if remaining < uint64(want) {
				want = int(remaining)
			}
			if !r.pullSlow(1, want) {
				return false
			}
		}
		n := uint64(r.Available())
		if left := pos - r.Pos(); n > left {
			n = left
		}
		r.Advance(int(n))
	}
	return true
}

// Size returns the total stream size, if the backend knows it.
func (r *Reader) Size() (uint64, bool) {
	if !r.OK() {
		return 0, false
	}
	if s, ok := r.back.(readerSizer); ok {
		return s.SizeSlow(r)
	}
	r.Fail(PreconditionErrorf("size not supported by this reader"))
	return 0, false
}

func (r *Reader) caps() ReaderCaps {
	if c, ok := r.back.(readerCapper); ok {
		return c.Caps(r)
	}
	return ReaderCaps{}
}

// SupportsRewind reports whether Seek may move backward.
func (r *Reader) SupportsRewind() bool { return r.caps().Rewind }

// SupportsRandomAccess reports whether Seek is cheap in both directions.
func (r *Reader) SupportsRandomAccess() bool { return r.caps().RandomAccess }

// SupportsSize reports whether Size is available.
func (r *Reader) SupportsSize() bool { return r.caps().Size }

// SupportsNewReader reports whether NewReader is available.
func (r *Reader) SupportsNewReader() bool { return r.caps().NewReader }

// NewReaderAt returns an independent reader over the same source, positioned
// at pos. The returned reader has its own cursor; whether it may be used from
// another goroutine is part of the source's contract.
func (r *Reader) NewReaderAt(pos uint64) *Reader {
	if !r.OK() {
		return nil
	}
	f, ok := r.back.(readerFactory)
	if !ok {
		r.Fail(PreconditionErrorf("new readers not supported by this reader"))
		return nil
	}
	return f.NewReaderSlow(r, pos)
}

// VerifyEnd asserts that no data remains. On violation the reader fails with
// an ErrInvalidArgument status.
func (r *Reader) VerifyEnd() {
	if v, ok := r.back.(readerVerifier); ok {
		v.VerifyEndSlow(r)
		return
	}
	r.VerifyEndDefault()
}

// VerifyEndDefault is the basic end check, exported for backends that extend
// VerifyEnd.
func (r *Reader) VerifyEndDefault() {
	if r.Pull(1, 1) {
		r.Fail(CorruptionErrorf("end of data expected at byte %d", r.Pos()))
	}
}

// VerifyEndAndClose verifies the end and closes, reporting combined health.
func (r *Reader) VerifyEndAndClose() bool {
	r.VerifyEnd()
	return r.Close()
}

// Close closes the reader, running backend teardown on the first call.
// Returns whether the reader is healthy; the failure remains available
// through Err.
func (r *Reader) Close() bool {
	if r.closed {
		return r.err == nil
	}
	r.exitScratch()
	r.back.Done(r)
	r.closed = true
	r.limitPos = r.Pos()
	r.ClearWindow()
	return r.err == nil
}
