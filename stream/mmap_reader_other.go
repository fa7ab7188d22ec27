// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build !unix

package stream

import "os"

// NewMmapReader falls back to a positional file reader on platforms without
// memory mapping support.
func NewMmapReader(f *os.File) *Reader {
	return NewFileReader(f, FileReaderOptions{})
}
