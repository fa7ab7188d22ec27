// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package chain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestAppendAndBytes(t *testing.T) {
	c := NewDefault()
	require.Equal(t, 0, c.Len())
	c.Append([]byte("hello"))
	c.AppendString(" world")
	require.Equal(t, 11, c.Len())
	require.Equal(t, []byte("hello world"), c.Bytes())
}

func TestAppendByte(t *testing.T) {
	c := NewDefault()
	for _, b := range []byte("abc") {
		c.AppendByte(b)
	}
	require.Equal(t, []byte("abc"), c.Bytes())
}

func TestAppendBufferNarrowing(t *testing.T) {
	c := NewDefault()
	span := c.AppendBuffer(10, 20, 100)
	require.GreaterOrEqual(t, len(span), 10)
	require.LessOrEqual(t, len(span), 100)
	require.Equal(t, len(span), c.Len())
	n := copy(span, "0123456789")
	c.RemoveSuffix(len(span) - n)
	require.Equal(t, []byte("0123456789"), c.Bytes())
}

func TestAppendBufferExtendsTailBlock(t *testing.T) {
	c := NewDefault()
	span := c.AppendBuffer(4, 4, 4)
	copy(span, "abcd")
	blocks := c.NumBlocks()
	// The tail block has spare capacity, so a small follow-up append must
	// not start a new block.
	span = c.AppendBuffer(4, 4, 4)
	copy(span, "efgh")
	require.Equal(t, blocks, c.NumBlocks())
	require.Equal(t, []byte("abcdefgh"), c.Bytes())
}

func TestSliceRestoresOriginal(t *testing.T) {
	// Removing a prefix and prepending it back yields a byte-equal Chain.
	orig := []byte("the quick brown fox jumps over the lazy dog")
	for _, n := range []int{0, 1, 7, len(orig)} {
		c := FromBytes(orig)
		c.RemovePrefix(n)
		c.Prepend(orig[:n])
		require.Equal(t, orig, c.Bytes(), "n=%d", n)
	}
}

func TestRemoveSuffix(t *testing.T) {
	c := FromBytes([]byte("abcdef"))
	c.RemoveSuffix(2)
	require.Equal(t, []byte("abcd"), c.Bytes())
	c.RemoveSuffix(4)
	require.Equal(t, 0, c.Len())
}

func TestExternalBlockRelease(t *testing.T) {
	released := 0
	data := []byte("external data")
	c := FromExternal(data, func() { released++ })
	require.Equal(t, data, c.Bytes())

	clone := c.Clone()
	c.Clear()
	require.Equal(t, 0, released, "clone still references the block")
	require.Equal(t, data, clone.Bytes())
	clone.Clear()
	require.Equal(t, 1, released)
}

func TestExternalEmptyReleasesImmediately(t *testing.T) {
	released := 0
	c := NewDefault()
	c.AppendExternal(nil, func() { released++ })
	require.Equal(t, 1, released)
	require.Equal(t, 0, c.Len())
}

func TestAppendChainShares(t *testing.T) {
	released := 0
	a := FromExternal([]byte("shared"), func() { released++ })
	b := NewDefault()
	b.AppendString("head ")
	b.AppendChain(a)
	require.Equal(t, []byte("head shared"), b.Bytes())
	a.Clear()
	require.Equal(t, 0, released)
	b.Clear()
	require.Equal(t, 1, released)
}

func TestPrependChain(t *testing.T) {
	a := FromBytes([]byte("world"))
	b := FromBytes([]byte("hello "))
	a.PrependChain(b)
	require.Equal(t, []byte("hello world"), a.Bytes())
}

func TestCopyTo(t *testing.T) {
	c := NewDefault()
	c.AppendString("abc")
	c.AppendExternal([]byte("defgh"), nil)
	dst := make([]byte, 8)
	require.Equal(t, 8, c.CopyTo(dst))
	require.Equal(t, []byte("abcdefgh"), dst)
	short := make([]byte, 4)
	require.Equal(t, 4, c.CopyTo(short))
	require.Equal(t, []byte("abcd"), short)
}

func TestBlockAt(t *testing.T) {
	c := NewDefault()
	c.AppendExternal([]byte("one"), nil)
	c.AppendExternal([]byte("two"), nil)
	require.Equal(t, 2, c.NumBlocks())
	require.Equal(t, []byte("one"), c.BlockAt(0))
	require.Equal(t, []byte("two"), c.BlockAt(1))
}

func TestAppendBlockOf(t *testing.T) {
	released := 0
	src := FromExternal([]byte("block"), func() { released++ })
	dst := NewDefault()
	dst.AppendBlockOf(src, 0)
	src.Clear()
	require.Equal(t, 0, released)
	require.Equal(t, []byte("block"), dst.Bytes())
	dst.Clear()
	require.Equal(t, 1, released)
}

// TestRandomOps drives a Chain against a flat reference slice.
func TestRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := New(WithBlockSizes(16, 256))
	var ref []byte
	for i := 0; i < 2000; i++ {
		switch rng.Intn(6) {
		case 0:
			p := randBytes(rng, rng.Intn(64))
			c.Append(p)
			ref = append(ref, p...)
		case 1:
			p := randBytes(rng, rng.Intn(64))
			c.Prepend(p)
			ref = append(append([]byte(nil), p...), ref...)
		case 2:
			p := randBytes(rng, rng.Intn(512))
			c.AppendExternal(p, nil)
			ref = append(ref, p...)
		case 3:
			if len(ref) > 0 {
				n := rng.Intn(len(ref) + 1)
				c.RemovePrefix(n)
				ref = ref[n:]
			}
		case 4:
			if len(ref) > 0 {
				n := rng.Intn(len(ref) + 1)
				c.RemoveSuffix(n)
				ref = ref[:len(ref)-n]
			}
		case 5:
			span := c.AppendBuffer(1, 32, 64)
			p := randBytes(rng, rng.Intn(len(span)+1))
			copy(span, p)
			c.RemoveSuffix(len(span) - len(p))
			ref = append(ref, p...)
		}
		require.Equal(t, len(ref), c.Len(), "op %d", i)
	}
	if !bytes.Equal(ref, c.Bytes()) {
		t.Fatalf("chain diverged from reference after random ops")
	}
}

func randBytes(rng *rand.Rand, n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(rng.Intn(256))
	}
	return p
}

func TestBufferReset(t *testing.T) {
	var b Buffer
	require.Equal(t, 0, b.Cap())
	b.Reset(100)
	require.GreaterOrEqual(t, b.Cap(), 100)
	require.Len(t, b.Data(), b.Cap())
	prev := b.Cap()
	b.Reset(10)
	require.Equal(t, prev, b.Cap(), "shrinking demand keeps capacity")
	b.Reset(prev + 1)
	require.GreaterOrEqual(t, b.Cap(), prev+1)
}
