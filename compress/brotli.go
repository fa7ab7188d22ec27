// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compress

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
)

type brotliDecompressor struct {
	r *brotli.Reader
}

func newBrotliDecompressor(c Codec) (decompressor, error) {
	if len(c.Dictionary) > 0 {
		return nil, errors.New("brotli: dictionaries are not supported")
	}
	return &brotliDecompressor{r: brotli.NewReader(nil)}, nil
}

func (b *brotliDecompressor) reset(src io.Reader) error { return b.r.Reset(src) }
func (b *brotliDecompressor) Read(p []byte) (int, error) {
	return b.r.Read(p)
}
func (b *brotliDecompressor) closeState() {}

type brotliCompressor struct {
	w *brotli.Writer
}

func newBrotliCompressor(c Codec) (compressor, error) {
	if len(c.Dictionary) > 0 {
		return nil, errors.New("brotli: dictionaries are not supported")
	}
	level := c.Level
	if level == 0 {
		level = brotli.DefaultCompression
	}
	return &brotliCompressor{w: brotli.NewWriterLevel(nil, level)}, nil
}

func (b *brotliCompressor) reset(dst io.Writer) { b.w.Reset(dst) }
func (b *brotliCompressor) Write(p []byte) (int, error) {
	return b.w.Write(p)
}
func (b *brotliCompressor) flush() error  { return b.w.Flush() }
func (b *brotliCompressor) finish() error { return b.w.Close() }
func (b *brotliCompressor) closeState()   {}
