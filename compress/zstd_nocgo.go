// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build !cgo

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

type zstdDecompressor struct {
	d *zstd.Decoder
}

func newZstdDecompressor(c Codec) (decompressor, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if len(c.Dictionary) > 0 {
		opts = append(opts, zstd.WithDecoderDicts(c.Dictionary))
	}
	d, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, err
	}
	return &zstdDecompressor{d: d}, nil
}

func (z *zstdDecompressor) reset(src io.Reader) error { return z.d.Reset(src) }
func (z *zstdDecompressor) Read(p []byte) (int, error) {
	return z.d.Read(p)
}
func (z *zstdDecompressor) closeState() { z.d.Close() }

type zstdCompressor struct {
	e *zstd.Encoder
}

func newZstdCompressor(c Codec) (compressor, error) {
	level := zstd.SpeedDefault
	if c.Level != 0 {
		level = zstd.EncoderLevelFromZstd(c.Level)
	}
	opts := []zstd.EOption{zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1)}
	if len(c.Dictionary) > 0 {
		opts = append(opts, zstd.WithEncoderDict(c.Dictionary))
	}
	e, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, err
	}
	return &zstdCompressor{e: e}, nil
}

func (z *zstdCompressor) reset(dst io.Writer) { z.e.Reset(dst) }
func (z *zstdCompressor) Write(p []byte) (int, error) {
	return z.e.Write(p)
}
func (z *zstdCompressor) flush() error  { return z.e.Flush() }
func (z *zstdCompressor) finish() error { return z.e.Close() }
func (z *zstdCompressor) closeState()   { _ = z.e.Close() }
