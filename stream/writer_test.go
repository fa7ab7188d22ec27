// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestChainWriterRoundTrip(t *testing.T) {
	dst := chain.NewDefault()
	w := NewChainWriter(dst)
	require.True(t, w.Write([]byte("hello")))
	require.True(t, w.PutByte(' '))
	require.True(t, w.WriteString("world"))
	require.EqualValues(t, 11, w.Pos())
	require.True(t, w.Close())
	require.Equal(t, []byte("hello world"), dst.Bytes())
}

func TestChainWriterWriteChainShares(t *testing.T) {
	released := 0
	big := chain.FromExternal(bytes.Repeat([]byte("x"), 1<<16), func() { released++ })
	dst := chain.NewDefault()
	w := NewChainWriter(dst)
	require.True(t, w.Write([]byte("head ")))
	require.True(t, w.WriteChain(big))
	require.True(t, w.Close())
	require.Equal(t, 5+(1<<16), dst.Len())
	big.Clear()
	require.Equal(t, 0, released, "the destination still shares the block")
}

func TestWriterReadModeRoundTrip(t *testing.T) {
	payload := []byte("some bytes that went through the writer")
	dst := chain.NewDefault()
	w := NewChainWriter(dst)
	require.True(t, w.Write(payload))

	r := w.ReadMode(0)
	require.NotNil(t, r)
	got := make([]byte, len(payload))
	require.True(t, r.Read(got))
	require.Equal(t, payload, got)

	// Writing again is permitted and invalidates the reader.
	require.True(t, w.Write([]byte(" more")))
	require.False(t, r.Pull(1, 1))
	require.True(t, errors.Is(r.Err(), ErrFailedPrecondition), "%v", r.Err())

	r2 := w.ReadMode(5)
	got = make([]byte, 5)
	require.True(t, r2.Read(got))
	require.Equal(t, []byte("bytes"), got)
	require.True(t, w.Close())
}

func TestWriterWriteZeros(t *testing.T) {
	dst := chain.NewDefault()
	w := NewChainWriter(dst)
	require.True(t, w.Write([]byte("a")))
	require.True(t, w.WriteZeros(100_000))
	require.True(t, w.Write([]byte("z")))
	require.True(t, w.Close())
	require.Equal(t, 100_002, dst.Len())
	flat := dst.Bytes()
	require.Equal(t, byte('a'), flat[0])
	require.Equal(t, byte('z'), flat[len(flat)-1])
	for i := 1; i < len(flat)-1; i += 7919 {
		require.Zero(t, flat[i])
	}
}

func TestArrayWriter(t *testing.T) {
	buf := make([]byte, 8)
	w := NewArrayWriter(buf)
	require.True(t, w.Write([]byte("abcd")))
	require.Equal(t, []byte("abcd"), w.Written())

	require.True(t, w.Truncate(2))
	require.True(t, w.Write([]byte("xyz")))
	require.Equal(t, []byte("abxyz"), w.Written())

	require.False(t, w.Write([]byte("too much data")), "past the array end")
	require.True(t, errors.Is(w.Err(), ErrResourceExhausted), "%v", w.Err())
}

func TestArrayWriterReadMode(t *testing.T) {
	buf := make([]byte, 16)
	w := NewArrayWriter(buf)
	require.True(t, w.Write([]byte("0123456789")))
	r := w.ReadMode(3)
	got := make([]byte, 4)
	require.True(t, r.Read(got))
	require.Equal(t, []byte("3456"), got)
	require.True(t, w.Close())
	require.Equal(t, []byte("0123456789"), w.Written())
}

func TestBackwardWriter(t *testing.T) {
	dst := chain.NewDefault()
	w := NewChainBackwardWriter(dst)
	require.True(t, w.Write([]byte("world")))
	require.EqualValues(t, 5, w.Pos())
	require.True(t, w.WriteString("hello "))
	require.EqualValues(t, 11, w.Pos())
	require.True(t, w.Close())
	require.Equal(t, []byte("hello world"), dst.Bytes())
}

func TestBackwardWriterLengthPrefix(t *testing.T) {
	// The use case backward writers exist for: emit a payload, then its
	// length in front without knowing the length up front.
	dst := chain.NewDefault()
	w := NewChainBackwardWriter(dst)
	payload := []byte("length-prefixed payload")
	require.True(t, w.Write(payload))
	require.True(t, w.PutByte(byte(len(payload))))
	require.True(t, w.Close())
	flat := dst.Bytes()
	require.Equal(t, byte(len(payload)), flat[0])
	require.Equal(t, payload, flat[1:])
}

func TestBackwardWriterRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dst := chain.NewDefault()
	w := NewChainBackwardWriter(dst)
	var ref []byte
	for i := 0; i < 500; i++ {
		p := make([]byte, rng.Intn(40))
		for j := range p {
			p[j] = byte(rng.Intn(256))
		}
		require.True(t, w.Write(p))
		ref = append(append([]byte(nil), p...), ref...)
	}
	require.True(t, w.Close())
	require.Equal(t, ref, dst.Bytes())
}

func TestWriterStickyFailure(t *testing.T) {
	w := NewArrayWriter(make([]byte, 2))
	require.False(t, w.Write([]byte("abc")))
	require.False(t, w.OK())
	require.False(t, w.PutByte('x'))
	require.False(t, w.Flush(FlushFromProcess))
	require.False(t, w.Close())
	require.True(t, errors.Is(w.Err(), ErrResourceExhausted), "%v", w.Err())
}

func TestWrappedWriter(t *testing.T) {
	dst := chain.NewDefault()
	inner := NewChainWriter(dst)
	w := NewWrappedWriter(inner, Owned)
	require.True(t, w.Write([]byte("through the wrapper")))
	require.True(t, w.Flush(FlushFromProcess))
	require.Equal(t, []byte("through the wrapper"), dst.Bytes())
	require.True(t, w.Close())
	require.False(t, inner.IsOpen(), "owned inner writer is closed")
}
