// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package stream provides the cursor-window reader and writer tower that the
// rest of the module builds on.
//
// A Reader exposes a contiguous window of bytes and a cursor; callers pull to
// refill the window and advance the cursor as they consume. A Writer is the
// symmetric push interface, and a BackwardWriter grows the logical sequence
// from the end for length-prefixed producers. Both sides are single concrete
// engines; concrete sources and sinks (byte slices, Chains, files, memory
// maps) plug in as backends, and projections (wrapped, limiting, prefix
// limiting) wrap an inner reader or writer without owning its bytes.
//
// Failures are sticky: the first failure is stored and every later operation
// fails fast with it. Reaching the end of data is not a failure; a Pull that
// cannot be satisfied returns false while OK still reports true.
//
// Objects are not safe for concurrent use. Independent readers over one
// source come from Reader.NewReaderAt where the source supports it.
package stream
