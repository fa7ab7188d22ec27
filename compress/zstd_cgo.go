// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build cgo

package compress

import (
	"io"

	"github.com/DataDog/zstd"
)

// The cgo zstd bindings have no resettable stream state, so reset recreates
// the underlying stream. The pooled wrapper still pays off: recycling keeps
// the wrapper and its configuration, and the create cost is low on the cgo
// side.

type zstdDecompressor struct {
	dict []byte
	rc   io.ReadCloser
}

func newZstdDecompressor(c Codec) (decompressor, error) {
	return &zstdDecompressor{dict: c.Dictionary}, nil
}

func (z *zstdDecompressor) reset(src io.Reader) error {
	z.dropStream()
	if len(z.dict) > 0 {
		z.rc = zstd.NewReaderDict(src, z.dict)
	} else {
		z.rc = zstd.NewReader(src)
	}
	return nil
}

func (z *zstdDecompressor) Read(p []byte) (int, error) {
	return z.rc.Read(p)
}

func (z *zstdDecompressor) dropStream() {
	if z.rc != nil {
		_ = z.rc.Close()
		z.rc = nil
	}
}

func (z *zstdDecompressor) closeState() { z.dropStream() }

type zstdCompressor struct {
	level int
	dict  []byte
	w     *zstd.Writer
}

func newZstdCompressor(c Codec) (compressor, error) {
	level := c.Level
	if level == 0 {
		level = zstd.DefaultCompression
	}
	return &zstdCompressor{level: level, dict: c.Dictionary}, nil
}

func (z *zstdCompressor) reset(dst io.Writer) {
	if len(z.dict) > 0 {
		z.w = zstd.NewWriterLevelDict(dst, z.level, z.dict)
	} else {
		z.w = zstd.NewWriterLevel(dst, z.level)
	}
}

func (z *zstdCompressor) Write(p []byte) (int, error) {
	return z.w.Write(p)
}

func (z *zstdCompressor) flush() error { return z.w.Flush() }

func (z *zstdCompressor) finish() error {
	err := z.w.Close()
	z.w = nil
	return err
}

func (z *zstdCompressor) closeState() {
	if z.w != nil {
		_ = z.w.Close()
		z.w = nil
	}
}
