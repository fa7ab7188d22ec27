// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package compress provides transparent compression codecs over the stream
// cursor contract: a codec Reader decompresses data pulled from a compressed
// source, a codec Writer compresses data pushed to it before handing it
// downstream.
//
// Brotli, Zstd and MinLZ decompress and compress incrementally; Snappy uses
// its block format, buffering the whole stream the way its library expects.
// Per-stream decoder and encoder states are recycled through keyed pools, so
// opening many short streams with the same codec parameters does not pay the
// codec's setup cost each time.
package compress
