// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
	"github.com/stretchr/testify/require"
)

func TestBytesReaderBasics(t *testing.T) {
	r := NewBytesReader([]byte("hello world"))
	require.True(t, r.OK())
	require.EqualValues(t, 0, r.Pos())
	require.Equal(t, 11, r.Available())

	require.True(t, r.Pull(5, 5))
	require.Equal(t, []byte("hello world"), r.Window())
	r.Advance(6)
	require.EqualValues(t, 6, r.Pos())

	dst := make([]byte, 5)
	require.True(t, r.Read(dst))
	require.Equal(t, []byte("world"), dst)
	require.EqualValues(t, 11, r.Pos())

	require.False(t, r.Pull(1, 1), "end of data is a soft failure")
	require.True(t, r.OK())
	r.VerifyEnd()
	require.True(t, r.Close())
}

func TestReaderPositionConsistency(t *testing.T) {
	r := NewBytesReader(make([]byte, 100))
	for _, n := range []int{0, 10, 35, 55} {
		r.Advance(n - int(r.Pos()))
		require.Equal(t, r.LimitPos()-uint64(r.Available()), r.Pos())
	}
}

func TestReaderShortReadAtEnd(t *testing.T) {
	r := NewBytesReader([]byte("abc"))
	dst := make([]byte, 10)
	require.Equal(t, 3, r.ReadSome(dst))
	require.False(t, r.Read(dst), "exact read past the end fails")
	require.True(t, r.OK(), "a short read at the end is not a failure")
}

func TestReaderStickyFailure(t *testing.T) {
	r := NewBytesReader([]byte("abc"))
	boom := errors.New("boom")
	require.False(t, r.Fail(boom))
	require.False(t, r.OK())
	require.ErrorIs(t, r.Err(), boom)

	// Later failures do not replace the first one.
	r.Fail(errors.New("later"))
	require.ErrorIs(t, r.Err(), boom)
	require.False(t, r.Pull(1, 1))
	var c chain.Chain
	require.False(t, r.ReadToChain(1, &c))
	require.False(t, r.Close())
	require.ErrorIs(t, r.Err(), boom)
}

func TestReaderSeek(t *testing.T) {
	data := []byte("0123456789")
	r := NewBytesReader(data)
	require.True(t, r.Seek(7))
	b, ok := r.NextByte()
	require.True(t, ok)
	require.Equal(t, byte('7'), b)

	require.True(t, r.Seek(2), "backward seek within the window")
	b, _ = r.NextByte()
	require.Equal(t, byte('2'), b)

	require.False(t, r.Seek(100), "seek past the end reports false")
	require.True(t, r.OK())
	require.EqualValues(t, 10, r.Pos())
}

func TestReaderSize(t *testing.T) {
	r := NewBytesReader([]byte("hello"))
	require.True(t, r.SupportsSize())
	size, ok := r.Size()
	require.True(t, ok)
	require.EqualValues(t, 5, size)
}

func TestReaderVerifyEndFailsOnRemaining(t *testing.T) {
	r := NewBytesReader([]byte("hello"))
	r.Advance(3)
	r.VerifyEnd()
	require.False(t, r.OK())
	require.True(t, errors.Is(r.Err(), ErrInvalidArgument), "%v", r.Err())
}

func TestReaderNewReaderAt(t *testing.T) {
	r := NewBytesReader([]byte("abcdef"))
	require.True(t, r.SupportsNewReader())
	r.Advance(2)

	r2 := r.NewReaderAt(4)
	require.NotNil(t, r2)
	b, _ := r2.NextByte()
	require.Equal(t, byte('e'), b)
	// The original cursor is untouched.
	b, _ = r.NextByte()
	require.Equal(t, byte('c'), b)
	require.True(t, r2.Close())
	require.True(t, r.Close())
}

func TestReaderReadToChain(t *testing.T) {
	r := NewBytesReader([]byte("hello world"))
	c := chain.NewDefault()
	require.True(t, r.ReadToChain(5, c))
	require.Equal(t, []byte("hello"), c.Bytes())
	require.EqualValues(t, 5, r.Pos())
	require.False(t, r.ReadToChain(100, c), "chain read past the end")
	require.Equal(t, []byte("hello world"), c.Bytes())
	require.True(t, r.OK())
}

func TestReaderCopyTo(t *testing.T) {
	r := NewBytesReader([]byte("copy me please"))
	dst := chain.NewDefault()
	w := NewChainWriter(dst)
	require.True(t, r.CopyTo(7, w))
	require.True(t, w.Flush(FlushFromObject))
	require.Equal(t, []byte("copy me"), dst.Bytes())
	require.True(t, w.Close())
}

func TestReaderCopyToBackward(t *testing.T) {
	r := NewBytesReader([]byte("tail head"))
	dst := chain.NewDefault()
	w := NewChainBackwardWriter(dst)
	require.True(t, r.CopyTo(0, NewChainWriter(chain.NewDefault())))
	require.True(t, r.CopyToBackward(4, w))
	require.True(t, r.Skip(1))
	require.True(t, r.CopyToBackward(4, w))
	require.True(t, w.Close())
	require.Equal(t, []byte("headtail"), dst.Bytes())
}

func TestReaderSkip(t *testing.T) {
	r := NewBytesReader([]byte("0123456789"))
	require.True(t, r.Skip(4))
	require.EqualValues(t, 4, r.Pos())
	b, _ := r.NextByte()
	require.Equal(t, byte('4'), b)
}

func TestReaderCloseIsIdempotent(t *testing.T) {
	r := NewBytesReader([]byte("x"))
	require.True(t, r.Close())
	require.True(t, r.Close())
	require.False(t, r.IsOpen())
	require.True(t, errors.Is(r.Err(), ErrFailedPrecondition), "%v", r.Err())
}
