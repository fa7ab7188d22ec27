// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
)

// Default buffer size bounds for buffered readers and writers.
const (
	DefaultMinBufferSize = 4 << 10
	DefaultMaxBufferSize = 64 << 10
)

// BufferedReaderOptions tune a buffered reader.
type BufferedReaderOptions struct {
	// MinBufferSize is the smallest refill request.
	MinBufferSize int
	// MaxBufferSize caps the refill request.
	MaxBufferSize int
	// Ownership says whether Close closes the source, when it is an
	// io.Closer.
	Ownership Ownership
}

func (o *BufferedReaderOptions) normalize() {
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

// bufferedReader adapts an io.Reader into the cursor contract. It keeps a
// reusable flat buffer and tunes the refill size to the observed read-ahead.
type bufferedReader struct {
	src       io.Reader
	opts      BufferedReaderOptions
	buffer    chain.Buffer
	tuned     int
	exhausted bool
}

// NewBufferedReader returns a Reader pulling from src. The resulting reader
// seeks only forward (by reading and discarding) and does not know its size.
func NewBufferedReader(src io.Reader, opts BufferedReaderOptions) *Reader {
	opts.normalize()
	return NewReader(&bufferedReader{src: src, opts: opts, tuned: opts.MinBufferSize})
}

func (b *bufferedReader) Done(r *Reader) {
	b.buffer.Release()
	if b.opts.Ownership == Owned {
		if c, ok := b.src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				r.Fail(errors.Wrapf(err, "closing source"))
			}
		}
	}
}

func (b *bufferedReader) PullSlow(r *Reader, min, recommended int) bool {
	if b.exhausted {
		return false
	}
	if r.ReadAllHint() {
		return b.pullAll(r, min)
	}
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
	// Unread bytes of the old window move to the front of the new one; the
	// limit position already counts them.
	filled := copy(data, r.Window())
	for filled < min {
		n, err := b.src.Read(data[filled:])
		filled += n
		if n > 0 && !r.MoveLimitPos(n) {
			break
		}
		if err == io.EOF {
			b.exhausted = true
			break
		}
		if err != nil {
			r.SetWindow(data[:filled], 0)
			return r.Fail(errors.Wrapf(err, "reading from source"))
		}
	}
	r.SetWindow(data[:filled], 0)
	if filled == len(data) && b.tuned < b.opts.MaxBufferSize {
		// The source kept up with a full buffer; read further ahead next
		// time.
		b.tuned = 2 * b.tuned
		if b.tuned > b.opts.MaxBufferSize {
			b.tuned = b.opts.MaxBufferSize
		}
	}
	return r.OK() && r.Available() >= min
}

// pullAll coalesces the remaining source into a single window, honouring the
// read-all hint.
func (b *bufferedReader) pullAll(r *Reader, min int) bool {
	data := append([]byte(nil), r.Window()...)
	for {
		if len(data) == cap(data) {
			data = append(data, 0)[:len(data)]
		}
		n, err := b.src.Read(data[len(data):cap(data)])
		data = data[:len(data)+n]
		if n > 0 && !r.MoveLimitPos(n) {
			break
		}
		if err == io.EOF {
			b.exhausted = true
			break
		}
		if err != nil {
			r.SetWindow(data, 0)
			return r.Fail(errors.Wrapf(err, "reading from source"))
		}
	}
	r.SetWindow(data, 0)
	return r.Available() >= min
}

func (b *bufferedReader) ReadDirect(r *Reader, dst []byte) (int, bool) {
	if b.exhausted || r.ReadAllHint() {
		return 0, false
	}
	total := 0
	for total < len(dst) {
		n, err := b.src.Read(dst[total:])
		total += n
		if n > 0 && !r.MoveLimitPos(n) {
			break
		}
		if err == io.EOF {
			b.exhausted = true
			break
		}
		if err != nil {
			r.Fail(errors.Wrapf(err, "reading from source"))
			break
		}
	}
	return total, true
}
