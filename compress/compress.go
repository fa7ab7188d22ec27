// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compress

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/pool"
)

// Algorithm identifies a compression algorithm.
type Algorithm uint8

const (
	// Snappy is the Snappy block format. Snappy streams are buffered whole
	// rather than decompressed incrementally.
	Snappy Algorithm = iota + 1
	// Brotli is the Brotli stream format.
	Brotli
	// Zstd is the Zstandard stream format.
	Zstd
	// MinLZ is the MinLZ stream format.
	MinLZ
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case Snappy:
		return "snappy"
	case Brotli:
		return "brotli"
	case Zstd:
		return "zstd"
	case MinLZ:
		return "minlz"
	default:
		return "unknown"
	}
}

// Codec names an algorithm together with its parameters. Streams written
// with a Codec are read back with an equal Codec.
type Codec struct {
	Algorithm Algorithm
	// Level is the algorithm-specific compression level; 0 selects the
	// algorithm's default. Ignored when reading.
	Level int
	// Dictionary primes the codec state where the algorithm supports it
	// (Zstd). Other algorithms fail with ErrInvalidArgument when one is set.
	Dictionary []byte
}

// key is the recycling pool key: equal keys mean interchangeable states.
type key struct {
	algorithm  Algorithm
	level      int
	dictionary string
}

func (c Codec) key() key {
	return key{algorithm: c.Algorithm, level: c.Level, dictionary: string(c.Dictionary)}
}

// decompressor is a per-stream decoder state, reusable via reset.
type decompressor interface {
	io.Reader
	reset(src io.Reader) error
	// closeState destroys the state; the pool calls it on eviction.
	closeState()
}

// compressor is a per-stream encoder state, reusable via reset.
type compressor interface {
	io.Writer
	reset(dst io.Writer)
	// flush emits what the format can make visible mid-stream.
	flush() error
	// finish terminates the stream, writing any trailer.
	finish() error
	// closeState destroys the state; the pool calls it on eviction.
	closeState()
}

// Decoder and encoder states are shared process-wide per codec key. The
// pools never fail; a factory error is carried by the returned state. A
// decoder's error surfaces when the reader is initialised, an encoder's on
// the writer's first write, flush or close.
var (
	decoderPool = pool.NewKeyed[key, decompressor](pool.DefaultMaxSize,
		func(d decompressor) { d.closeState() })
	encoderPool = pool.NewKeyed[key, compressor](pool.DefaultMaxSize,
		func(c compressor) { c.closeState() })
)

// EnsurePoolMaxSize grows the shared codec state pools to at least maxSize
// states each. Merging configurations takes the largest requested size.
func EnsurePoolMaxSize(maxSize int) {
	decoderPool.EnsureMaxSize(maxSize)
	encoderPool.EnsureMaxSize(maxSize)
}

// DecoderPoolMetrics snapshots the shared decoder pool, e.g. for a
// pool.NewCollector.
func DecoderPoolMetrics() pool.Metrics { return decoderPool.Metrics() }

// EncoderPoolMetrics snapshots the shared encoder pool.
func EncoderPoolMetrics() pool.Metrics { return encoderPool.Metrics() }

func newDecompressor(c Codec) (decompressor, error) {
	switch c.Algorithm {
	case Brotli:
		return newBrotliDecompressor(c)
	case Zstd:
		return newZstdDecompressor(c)
	case MinLZ:
		return newMinlzDecompressor(c)
	default:
		return nil, errors.Newf("no streaming decompressor for %s", c.Algorithm)
	}
}

func newCompressor(c Codec) (compressor, error) {
	switch c.Algorithm {
	case Brotli:
		return newBrotliCompressor(c)
	case Zstd:
		return newZstdCompressor(c)
	case MinLZ:
		return newMinlzCompressor(c)
	default:
		return nil, errors.Newf("no streaming compressor for %s", c.Algorithm)
	}
}

// errState carries a factory error through the pool, per the pools' no-fail
// contract.
type errState struct {
	err error
}

func (e errState) Read(p []byte) (int, error)  { return 0, e.err }
func (e errState) Write(p []byte) (int, error) { return 0, e.err }
func (e errState) reset(io.Reader) error       { return e.err }
func (e errState) flush() error                { return e.err }
func (e errState) finish() error               { return e.err }
func (e errState) closeState()                 {}

type errDecompressor struct{ errState }

type errCompressor struct{ errState }

func (e errCompressor) reset(io.Writer) {}
