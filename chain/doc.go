// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package chain provides a segmented byte sequence built from shared and
// externally owned blocks, and a flat reusable Buffer.
//
// A Chain is the carrier used when a stream layer wants to yield ownership of
// possibly-large data without copying: appending another Chain or an external
// block shares the underlying bytes instead of copying them. Small appends are
// packed into owned tail blocks to keep per-block overhead low.
//
// Because Go has no destructors, sharing is explicit: copy a Chain with Clone,
// and drop bytes with RemovePrefix, RemoveSuffix or Clear. Release callbacks
// of external blocks run when the last Chain referencing the block drops it.
package chain
