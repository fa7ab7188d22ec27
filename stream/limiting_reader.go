// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

// LimitingReaderOptions tune a limiting reader.
type LimitingReaderOptions struct {
	// Length is the number of bytes visible through the wrapper, counted
	// from the inner reader's position at construction.
	Length uint64
	// Exact makes the wrapper fail with ErrInvalidArgument when the inner
	// reader ends before Length bytes, instead of reporting a shorter
	// stream.
	Exact bool
	// Ownership says whether Close closes the inner reader.
	Ownership Ownership
}

// limitingReader caps the visible length of an inner reader. Positions are
// the inner reader's positions.
type limitingReader struct {
	inner *Reader
	own   Ownership
	// limit is the first inner position past the visible range.
	limit uint64
	exact bool
}

// NewLimitingReader returns a Reader exposing at most opts.Length bytes of
// inner, starting at inner's current position.
func NewLimitingReader(inner *Reader, opts LimitingReaderOptions) *Reader {
	b := &limitingReader{
		inner: inner,
		own:   opts.Ownership,
		limit: inner.Pos() + opts.Length,
		exact: opts.Exact,
	}
	r := NewReader(b)
	b.install(r)
	return r
}

// install exposes the inner window, clipped at the limit.
func (b *limitingReader) install(r *Reader) {
	win := b.inner.Window()
	limitPos := b.inner.LimitPos()
	if limitPos > b.limit {
		over := limitPos - b.limit
		if uint64(len(win)) <= over {
			win = win[:0]
		} else {
			win = win[:uint64(len(win))-over]
		}
		limitPos = b.limit
		if pos := b.inner.Pos(); pos > b.limit {
			limitPos = pos
			win = win[:0]
		}
	}
	r.SetWindow(win, 0)
	r.SetLimitPos(limitPos)
}

func (b *limitingReader) sync(r *Reader) {
	if consumed := r.cursor; consumed > 0 {
		b.inner.Advance(consumed)
	}
	b.install(r)
}

func (b *limitingReader) propagate(r *Reader) {
	if !b.inner.OK() && b.inner.IsOpen() {
		r.Fail(b.inner.Err())
	}
}

func (b *limitingReader) Done(r *Reader) {
	b.sync(r)
	if b.own == Owned && !b.inner.Close() {
		r.Fail(b.inner.Err())
	}
}

func (b *limitingReader) PullSlow(r *Reader, min, recommended int) bool {
	b.sync(r)
	remaining := uint64(0)
	if pos := b.inner.Pos(); pos < b.limit {
		remaining = b.limit - pos
	}
	if remaining == 0 {
		return false
	}
	m := min
	if uint64(m) > remaining {
		m = int(remaining)
	}
	rec := recommended
	if uint64(rec) > remaining {
		rec = int(remaining)
	}
	ok := b.inner.Pull(m, rec)
	b.install(r)
	b.propagate(r)
	if !ok && r.OK() && b.exact {
		return r.Fail(CorruptionErrorf(
			"stream ends at byte %d before the declared length %d",
			b.inner.Pos()+uint64(b.inner.Available()), b.limit))
	}
	return ok && r.Available() >= min
}

func (b *limitingReader) SeekSlow(r *Reader, pos uint64) bool {
	b.sync(r)
	target := pos
	overrun := false
	if target > b.limit {
		target = b.limit
		overrun = true
	}
	ok := b.inner.Seek(target)
	b.install(r)
	b.propagate(r)
	return ok && !overrun
}

func (b *limitingReader) SizeSlow(r *Reader) (uint64, bool) {
	if b.exact {
		return b.limit, true
	}
	b.sync(r)
	size, ok := b.inner.Size()
	b.propagate(r)
	if !ok {
		return 0, false
	}
	if size > b.limit {
		size = b.limit
	}
	return size, true
}

func (b *limitingReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{
		Rewind:       b.inner.SupportsRewind(),
		RandomAccess: b.inner.SupportsRandomAccess(),
		Size:         b.inner.SupportsSize() || b.exact,
	}
}

func (b *limitingReader) VerifyEndSlow(r *Reader) {
	r.VerifyEndDefault()
	if r.OK() && b.exact && r.Pos() < b.limit {
		r.Fail(CorruptionErrorf(
			"stream ends at byte %d before the declared length %d",
			r.Pos(), b.limit))
	}
}
