// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

// bytesReader serves a byte slice as a single fixed window. The slice must
// not be mutated while the reader is in use.
type bytesReader struct {
	data []byte
}

// NewBytesReader returns a Reader over data. It supports rewind, random
// access, size and new readers; new readers are safe to use concurrently
// because the data is never mutated by the reader.
func NewBytesReader(data []byte) *Reader {
	b := &bytesReader{data: data}
	r := NewReader(b)
	r.SetWindow(data, 0)
	r.SetLimitPos(uint64(len(data)))
	return r
}

// NewStringReader returns a Reader over a copy of s.
func NewStringReader(s string) *Reader {
	return NewBytesReader([]byte(s))
}

func (b *bytesReader) Done(r *Reader) {}

func (b *bytesReader) PullSlow(r *Reader, min, recommended int) bool {
	// The whole source is the window; anything past it is end of data.
	return false
}

func (b *bytesReader) SeekSlow(r *Reader, pos uint64) bool {
	// The fast path covers the whole window, so pos is past the end.
	r.SetWindow(b.data, len(b.data))
	return false
}

func (b *bytesReader) SizeSlow(r *Reader) (uint64, bool) {
	return uint64(len(b.data)), true
}

func (b *bytesReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{Rewind: true, RandomAccess: true, Size: true, NewReader: true}
}

func (b *bytesReader) NewReaderSlow(r *Reader, pos uint64) *Reader {
	r2 := NewBytesReader(b.data)
	r2.Seek(pos)
	return r2
}
