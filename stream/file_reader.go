// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
)

// FileReaderOptions tune a file reader.
type FileReaderOptions struct {
	// MinBufferSize is the smallest refill request.
	MinBufferSize int
	// MaxBufferSize caps the refill request.
	MaxBufferSize int
	// Ownership says whether Close closes the file.
	Ownership Ownership
}

func (o *FileReaderOptions) normalize() {
	if o.MinBufferSize <= 0 {
		o.MinBufferSize = DefaultMinBufferSize
	}
	if o.MaxBufferSize <= 0 {
		o.MaxBufferSize = DefaultMaxBufferSize
	}
	if o.MaxBufferSize < o.MinBufferSize {
		o.MaxBufferSize = o.MinBufferSize
	}
}

// fileReader reads a file through positional reads, so independent readers
// over the same file never disturb each other's offsets.
type fileReader struct {
	f      *os.File
	name   string
	opts   FileReaderOptions
	buffer chain.Buffer
	tuned  int
}

// NewFileReader returns a Reader over f. It supports rewind, random access,
// size and new readers; new readers use positional reads and are safe to use
// from other goroutines.
func NewFileReader(f *os.File, opts FileReaderOptions) *Reader {
	opts.normalize()
	b := &fileReader{f: f, name: f.Name(), opts: opts, tuned: opts.MinBufferSize}
	return NewReader(b)
}

// OpenFileReader opens name for reading. An open error is reported through
// the returned reader's status.
func OpenFileReader(name string, opts FileReaderOptions) *Reader {
	f, err := os.Open(name)
	if err != nil {
		opts.normalize()
		r := NewReader(&fileReader{name: name, opts: opts})
		r.Fail(errors.Wrapf(err, "reading %q", name))
		return r
	}
	opts.Ownership = Owned
	return NewFileReader(f, opts)
}

func (b *fileReader) fail(r *Reader, err error, op string) bool {
	return r.Fail(errors.Wrapf(err, "%s %q", op, b.name))
}

func (b *fileReader) Done(r *Reader) {
	b.buffer.Release()
	if b.opts.Ownership == Owned && b.f != nil {
		if err := b.f.Close(); err != nil {
			b.fail(r, err, "closing")
		}
	}
}

func (b *fileReader) PullSlow(r *Reader, min, recommended int) bool {
	want := recommended
	if want < b.tuned {
		want = b.tuned
	}
	if want > b.opts.MaxBufferSize {
		want = b.opts.MaxBufferSize
	}
	if want < min {
		want = min
	}
	b.buffer.Reset(want)
	data := b.buffer.Data()
	filled := copy(data, r.Window())
	for filled < min {
		n, err := b.f.ReadAt(data[filled:], int64(r.LimitPos()))
		filled += n
		if n > 0 && !r.MoveLimitPos(n) {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			r.SetWindow(data[:filled], 0)
			return b.fail(r, err, "reading")
		}
	}
	r.SetWindow(data[:filled], 0)
	if filled == len(data) && b.tuned < b.opts.MaxBufferSize {
		b.tuned = 2 * b.tuned
		if b.tuned > b.opts.MaxBufferSize {
			b.tuned = b.opts.MaxBufferSize
		}
	}
	return r.OK() && r.Available() >= min
}

func (b *fileReader) ReadDirect(r *Reader, dst []byte) (int, bool) {
	total := 0
	for total < len(dst) {
		n, err := b.f.ReadAt(dst[total:], int64(r.LimitPos()))
		total += n
		if n > 0 && !r.MoveLimitPos(n) {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			b.fail(r, err, "reading")
			break
		}
	}
	return total, true
}

func (b *fileReader) SeekSlow(r *Reader, pos uint64) bool {
	size, ok := b.SizeSlow(r)
	if !ok {
		return false
	}
	r.ClearWindow()
	if pos > size {
		r.SetLimitPos(size)
		return false
	}
	r.SetLimitPos(pos)
	return true
}

func (b *fileReader) SizeSlow(r *Reader) (uint64, bool) {
	st, err := b.f.Stat()
	if err != nil {
		b.fail(r, err, "sizing")
		return 0, false
	}
	return uint64(st.Size()), true
}

func (b *fileReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{Rewind: true, RandomAccess: true, Size: true, NewReader: true}
}

func (b *fileReader) NewReaderSlow(r *Reader, pos uint64) *Reader {
	opts := b.opts
	opts.Ownership = Borrowed
	r2 := NewFileReader(b.f, opts)
	r2.Seek(pos)
	return r2
}
