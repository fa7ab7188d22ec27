// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package pool provides recycling pools of reusable objects, so that instead
// of constructing a new object an existing one can be refurbished. Codec
// packages use them to keep decoder and encoder state across streams.
//
// Two variants exist: Pool is an unkeyed ring, Keyed finds a reusable object
// only among objects registered under an equal key. Both are thread-safe
// behind a single mutex; factories, refurbishers and the closers of evicted
// objects always run outside the lock, because they may take other locks or
// re-enter the pool.
//
// Pools never fail. A factory that produces a broken object reports that
// through the object itself.
package pool
