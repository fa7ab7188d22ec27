// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

// object carries the open/closed state and the sticky failure status shared
// by every reader and writer.
type object struct {
	// err is the sticky status. The first failure wins; later failures are
	// dropped.
	err    error
	closed bool
}

// IsOpen reports whether Close has not been called.
func (o *object) IsOpen() bool { return !o.closed }

// OK reports whether the object is open and healthy.
func (o *object) OK() bool { return !o.closed && o.err == nil }

// Err returns the stored status: nil while healthy, the first failure after
// one occurred, or a closed-object status after a clean Close.
func (o *object) Err() error {
	if o.err != nil {
		return o.err
	}
	if o.closed {
		return errClosed
	}
	return nil
}

// Fail stores err as the sticky status unless a failure is already stored.
// Always returns false so that slow paths can `return r.Fail(...)`.
func (o *object) Fail(err error) bool {
	if o.err == nil {
		o.err = err
	}
	return false
}

// FlushType distinguishes the strengths of Writer.Flush, from weakest to
// strongest.
type FlushType uint8

const (
	// FlushFromObject releases internal caches but keeps buffered data in
	// memory.
	FlushFromObject FlushType = iota
	// FlushFromProcess hands buffered data to the next layer's sink, with no
	// durability guarantee.
	FlushFromProcess
	// FlushFromMachine additionally requests durability where the sink
	// supports it.
	FlushFromMachine
)

// Ownership says whether a layer closes its inner stream when it is closed.
type Ownership uint8

const (
	// Borrowed leaves the inner stream open for the caller.
	Borrowed Ownership = iota
	// Owned closes the inner stream during Close.
	Owned
)
