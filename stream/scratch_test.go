// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"testing"

	"github.com/strandio/strand/chain"
	"github.com/stretchr/testify/require"
)

// threeBurstChain returns a Chain of three 3-byte blocks, so its reader can
// only produce 3-byte bursts.
func threeBurstChain() *chain.Chain {
	c := chain.NewDefault()
	c.AppendExternal([]byte("abc"), nil)
	c.AppendExternal([]byte("def"), nil)
	c.AppendExternal([]byte("ghi"), nil)
	return c
}

func TestScratchSplicesBursts(t *testing.T) {
	r := NewChainReader(threeBurstChain())
	// A pull spanning several bursts must still yield one contiguous
	// window.
	require.True(t, r.Pull(7, 7))
	require.True(t, r.ScratchUsed())
	require.GreaterOrEqual(t, r.Available(), 7)
	require.Equal(t, []byte("abcdefg"), r.Window()[:7])
	require.EqualValues(t, 9, r.LimitPos())
	require.EqualValues(t, 0, r.Pos())
}

func TestScratchConsumeAndContinue(t *testing.T) {
	r := NewChainReader(threeBurstChain())
	require.True(t, r.Pull(5, 5))
	dst := make([]byte, 9)
	require.True(t, r.Read(dst))
	require.Equal(t, []byte("abcdefghi"), dst)
	require.False(t, r.Pull(1, 1))
	require.True(t, r.OK())
	r.VerifyEnd()
	require.True(t, r.VerifyEndAndClose())
}

func TestScratchSeekWithinWindow(t *testing.T) {
	r := NewChainReader(threeBurstChain())
	require.True(t, r.Pull(7, 7))
	r.Advance(7)
	require.True(t, r.Seek(2), "seek within the spliced window")
	dst := make([]byte, 3)
	require.True(t, r.Read(dst))
	require.Equal(t, []byte("cde"), dst)
}

func TestScratchSeekBack(t *testing.T) {
	r := NewChainReader(threeBurstChain())
	require.True(t, r.Pull(9, 9))
	r.Advance(9)
	require.True(t, r.Seek(1), "the spliced window covers the whole run")
	b, ok := r.NextByte()
	require.True(t, ok)
	require.Equal(t, byte('b'), b)
}

func TestScratchRecollects(t *testing.T) {
	c := chain.NewDefault()
	for _, s := range []string{"ab", "cd", "ef", "gh", "ij"} {
		c.AppendExternal([]byte(s), nil)
	}
	r := NewChainReader(c)
	require.True(t, r.Pull(3, 3))
	require.True(t, r.ScratchUsed())
	r.Advance(1)
	// More than the scratch still holds: the remainder is carried into a
	// fresh collection.
	require.True(t, r.Pull(6, 6))
	require.GreaterOrEqual(t, r.Available(), 6)
	require.Equal(t, []byte("bcdefg"), r.Window()[:6])
	require.EqualValues(t, 1, r.Pos())
}

func TestScratchPartialCollection(t *testing.T) {
	c := chain.NewDefault()
	c.AppendExternal([]byte("ab"), nil)
	c.AppendExternal([]byte("cd"), nil)
	r := NewChainReader(c)
	// Asking for more than the stream holds fails softly but still exposes
	// what was collected.
	require.False(t, r.Pull(10, 10))
	require.True(t, r.OK())
	require.Equal(t, 4, r.Available())
	require.Equal(t, []byte("abcd"), r.Window())
}
