// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package chain

// Buffer is a reusable flat byte region. It never grows inside hot paths; the
// caller announces the needed capacity with Reset and works directly on the
// returned storage. The zero value is an empty Buffer ready for use.
type Buffer struct {
	data []byte
}

// Reset discards the contents and ensures capacity for at least minCapacity
// bytes. Growth is by powers of two so that repeated Resets with slowly
// increasing demands reallocate O(log n) times.
func (b *Buffer) Reset(minCapacity int) {
	if cap(b.data) >= minCapacity {
		b.data = b.data[:cap(b.data)]
		return
	}
	capacity := cap(b.data)
	if capacity == 0 {
		capacity = 64
	}
	for capacity < minCapacity {
		capacity *= 2
	}
	b.data = make([]byte, capacity)
}

// Data returns the full capacity of the buffer as a writable slice. Valid
// until the next Reset.
func (b *Buffer) Data() []byte { return b.data }

// Cap returns the current capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// Release drops the storage so that it can be reclaimed.
func (b *Buffer) Release() { b.data = nil }
