// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compress

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
	"github.com/strandio/strand/pool"
	"github.com/strandio/strand/stream"
)

// Decoded window size bounds.
const (
	minDecodeWindow = 4 << 10
	maxDecodeWindow = 64 << 10
)

// ReaderOptions tune a codec reader.
type ReaderOptions struct {
	Codec Codec
	// Ownership says whether Close closes the compressed source.
	Ownership stream.Ownership
}

// NewReader returns a Reader yielding the decompressed form of the data
// pulled from src. src must be positioned at the start of a compressed
// stream; its position at construction is remembered for backward seeks,
// which reinitialise the decoder and replay from there.
func NewReader(src *stream.Reader, opts ReaderOptions) *stream.Reader {
	if opts.Codec.Algorithm == Snappy {
		return newSnappyReader(src, opts)
	}
	b := &codecReader{
		src:   src,
		own:   opts.Ownership,
		codec: opts.Codec,
	}
	b.in.r = src
	b.initialCompressedPos = src.Pos()
	r := stream.NewReader(b)
	if !src.OK() && src.Available() == 0 {
		r.Fail(src.Err())
		return r
	}
	b.dec = decoderPool.GetHandle(opts.Codec.key(), func() decompressor {
		d, err := newDecompressor(opts.Codec)
		if err != nil {
			return errDecompressor{errState{err: errors.Mark(err, stream.ErrInvalidArgument)}}
		}
		return d
	}, nil)
	b.resetDecoder(r)
	return r
}

// codecReader drives a streaming decompressor over the source window. It is
// a ScratchPuller: each burst is whatever the decoder produced, and the
// engine splices bursts when a caller needs more.
type codecReader struct {
	src   *stream.Reader
	own   stream.Ownership
	codec Codec
	dec   *pool.Handle[decompressor]
	in    srcReader
	// buffer stages decoded output; the window aliases it between pulls.
	buffer chain.Buffer
	// initialCompressedPos is where the compressed stream starts in src,
	// the replay point for backward seeks.
	initialCompressedPos uint64
	// truncated records that the source ended before the decoder saw the
	// stream end. Close converts it into an ErrInvalidArgument status.
	truncated bool
	// finished records that the decoder reported a clean stream end.
	finished bool
	// broken records a decoder state that must not be recycled.
	broken bool
}

// srcReader adapts the compressed source's cursor window to io.Reader for
// the codec libraries. It pulls at most what one refill provides, so decoded
// output written before a producer's flush becomes visible without waiting
// for the producer to finish.
type srcReader struct {
	r      *stream.Reader
	sawEOF bool
}

func (s *srcReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.r.Available() == 0 && !s.r.Pull(1, len(p)) {
		if !s.r.OK() {
			return 0, s.r.Err()
		}
		s.sawEOF = true
		return 0, io.EOF
	}
	n := copy(p, s.r.Window())
	s.r.Advance(n)
	return n, nil
}

func (b *codecReader) resetDecoder(r *stream.Reader) {
	b.in.sawEOF = false
	b.truncated = false
	b.finished = false
	if err := b.dec.Value().reset(&b.in); err != nil {
		b.broken = true
		r.Fail(annotateUncompressed(markInit(err), r))
	}
}

func markInit(err error) error {
	if errors.Is(err, stream.ErrInvalidArgument) {
		return err
	}
	return errors.Mark(err, stream.ErrInternal)
}

func annotateUncompressed(err error, r *stream.Reader) error {
	return errors.Wrapf(err, "at uncompressed byte %d", r.Pos())
}

func (b *codecReader) PullBehind(r *stream.Reader, recommended int) bool {
	if b.finished {
		return false
	}
	size := recommended
	if size < minDecodeWindow {
		size = minDecodeWindow
	}
	if size > maxDecodeWindow {
		size = maxDecodeWindow
	}
	b.buffer.Reset(size)
	data := b.buffer.Data()[:size]
	for {
		n, err := b.dec.Value().Read(data)
		if n > 0 {
			r.SetWindow(data[:n], 0)
			if !r.MoveLimitPos(n) {
				return false
			}
			switch {
			case err == io.EOF:
				b.finished = true
			case err == io.ErrUnexpectedEOF || (err != nil && b.in.sawEOF):
				b.truncated = true
			case err != nil:
				// Surface the decoded output first; the failure lands on
				// the next pull.
				b.broken = true
			}
			return true
		}
		switch {
		case err == io.EOF:
			b.finished = true
			return false
		case err == io.ErrUnexpectedEOF || (err != nil && b.in.sawEOF):
			b.truncated = true
			return false
		case err != nil:
			b.broken = true
			return r.Fail(annotateUncompressed(
				errors.Mark(errors.Wrapf(err, "invalid %s-compressed stream", b.codec.Algorithm),
					stream.ErrInvalidArgument), r))
		}
	}
}

func (b *codecReader) truncatedErr(r *stream.Reader) error {
	return annotateUncompressed(errors.Mark(
		errors.Newf("truncated %s-compressed stream", b.codec.Algorithm),
		stream.ErrInvalidArgument), r)
}

func (b *codecReader) SeekSlow(r *stream.Reader, pos uint64) bool {
	if pos <= r.LimitPos() {
		// Backward: reinitialise the decoder and replay from the recorded
		// start of the compressed stream.
		r.ClearWindow()
		r.SetLimitPos(0)
		if !b.src.Seek(b.initialCompressedPos) {
			if !b.src.OK() {
				return r.Fail(b.src.Err())
			}
			return r.Fail(errors.Mark(
				errors.Newf("%s-compressed stream got truncated", b.codec.Algorithm),
				stream.ErrDataLoss))
		}
		b.resetDecoder(r)
		if !r.OK() {
			return false
		}
		// Only skip the forward scan once re-initialisation really restored
		// position zero.
		if pos == 0 && r.LimitPos() == 0 {
			return true
		}
	}
	return r.SkipForward(pos)
}

func (b *codecReader) Caps(r *stream.Reader) stream.ReaderCaps {
	return stream.ReaderCaps{
		Rewind:    b.src.SupportsRewind(),
		NewReader: b.src.SupportsNewReader(),
	}
}

func (b *codecReader) NewReaderSlow(r *stream.Reader, pos uint64) *stream.Reader {
	src2 := b.src.NewReaderAt(b.initialCompressedPos)
	if src2 == nil {
		r.Fail(b.src.Err())
		return nil
	}
	r2 := NewReader(src2, ReaderOptions{
		Codec:     b.codec,
		Ownership: stream.Owned,
	})
	r2.Seek(pos)
	return r2
}

func (b *codecReader) VerifyEndSlow(r *stream.Reader) {
	r.VerifyEndDefault()
	if b.truncated && r.OK() {
		r.Fail(b.truncatedErr(r))
	}
}

func (b *codecReader) Done(r *stream.Reader) {
	if b.truncated {
		r.Fail(b.truncatedErr(r))
	}
	if b.dec == nil {
		// Construction failed before a decoder state was acquired.
		if b.own == stream.Owned && !b.src.Close() {
			r.Fail(b.src.Err())
		}
		return
	}
	if b.broken {
		// A state in error is not trusted for reuse.
		b.dec.Discard()
	} else {
		// Reset makes mid-stream states reusable, so truncation alone does
		// not forfeit recycling.
		b.dec.Release()
	}
	b.buffer.Release()
	if b.own == stream.Owned && !b.src.Close() {
		r.Fail(b.src.Err())
	}
}
