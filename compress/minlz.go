// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package compress

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/minio/minlz"
)

type minlzDecompressor struct {
	r *minlz.Reader
}

func newMinlzDecompressor(c Codec) (decompressor, error) {
	if len(c.Dictionary) > 0 {
		return nil, errors.New("minlz: dictionaries are not supported")
	}
	return &minlzDecompressor{r: minlz.NewReader(nil)}, nil
}

func (m *minlzDecompressor) reset(src io.Reader) error {
	m.r.Reset(src)
	return nil
}
func (m *minlzDecompressor) Read(p []byte) (int, error) {
	return m.r.Read(p)
}
func (m *minlzDecompressor) closeState() {}

type minlzCompressor struct {
	w *minlz.Writer
}

func newMinlzCompressor(c Codec) (compressor, error) {
	if len(c.Dictionary) > 0 {
		return nil, errors.New("minlz: dictionaries are not supported")
	}
	level := c.Level
	if level == 0 {
		level = minlz.LevelBalanced
	}
	return &minlzCompressor{w: minlz.NewWriter(nil, minlz.WriterLevel(level))}, nil
}

func (m *minlzCompressor) reset(dst io.Writer) { m.w.Reset(dst) }
func (m *minlzCompressor) Write(p []byte) (int, error) {
	return m.w.Write(p)
}
func (m *minlzCompressor) flush() error  { return m.w.Flush() }
func (m *minlzCompressor) finish() error { return m.w.Close() }
func (m *minlzCompressor) closeState()   {}
