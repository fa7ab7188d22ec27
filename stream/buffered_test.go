// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"bytes"
	"testing"
	"testing/iotest"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func testPattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte('a' + i%26)
	}
	return p
}

func TestBufferedReaderBasics(t *testing.T) {
	data := testPattern(100_000)
	r := NewBufferedReader(bytes.NewReader(data), BufferedReaderOptions{})
	got := make([]byte, len(data))
	require.True(t, r.Read(got))
	require.Equal(t, data, got)
	require.False(t, r.Pull(1, 1))
	require.True(t, r.VerifyEndAndClose())
}

func TestBufferedReaderOneByteSource(t *testing.T) {
	// A source that trickles one byte per call still satisfies multi-byte
	// pulls.
	data := testPattern(1000)
	r := NewBufferedReader(iotest.OneByteReader(bytes.NewReader(data)), BufferedReaderOptions{
		MinBufferSize: 7, MaxBufferSize: 64,
	})
	require.True(t, r.Pull(13, 13))
	require.Equal(t, data[:13], r.Window()[:13])
	got := make([]byte, len(data))
	require.True(t, r.Read(got))
	require.Equal(t, data, got)
	require.True(t, r.Close())
}

func TestBufferedReaderForwardSkip(t *testing.T) {
	data := testPattern(10_000)
	r := NewBufferedReader(bytes.NewReader(data), BufferedReaderOptions{MaxBufferSize: 512})
	require.True(t, r.Skip(7000))
	require.EqualValues(t, 7000, r.Pos())
	b, ok := r.NextByte()
	require.True(t, ok)
	require.Equal(t, data[7000], b)

	// The generic adapter cannot rewind.
	require.False(t, r.Seek(10))
	require.True(t, errors.Is(r.Err(), ErrFailedPrecondition), "%v", r.Err())
}

func TestBufferedReaderReadAllHint(t *testing.T) {
	data := testPattern(50_000)
	r := NewBufferedReader(bytes.NewReader(data), BufferedReaderOptions{MaxBufferSize: 256})
	c := chain.NewDefault()
	require.True(t, r.ReadAll(c))
	require.Equal(t, data, c.Bytes())
	require.True(t, r.Close())
}

func TestBufferedReaderLargeReadBypassesBuffer(t *testing.T) {
	data := testPattern(300_000)
	r := NewBufferedReader(bytes.NewReader(data), BufferedReaderOptions{MaxBufferSize: 4096})
	got := make([]byte, len(data))
	require.True(t, r.Read(got))
	require.Equal(t, data, got)
	require.True(t, r.Close())
}

func TestBufferedWriter(t *testing.T) {
	var sink bytes.Buffer
	w := NewBufferedWriter(&sink, BufferedWriterOptions{BufferSize: 64})
	require.True(t, w.Write([]byte("small ")))
	require.Zero(t, sink.Len(), "small writes stay buffered")
	require.True(t, w.Flush(FlushFromProcess))
	require.Equal(t, "small ", sink.String())

	big := testPattern(1000)
	require.True(t, w.Write(big))
	require.True(t, w.WriteString(" tail"))
	require.True(t, w.Close())
	require.Equal(t, "small "+string(big)+" tail", sink.String())
}

func TestBufferedWriterRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var sink bytes.Buffer
	w := NewBufferedWriter(&sink, BufferedWriterOptions{BufferSize: 128})
	var ref []byte
	for i := 0; i < 300; i++ {
		p := make([]byte, rng.Intn(300))
		for j := range p {
			p[j] = byte(rng.Intn(256))
		}
		require.True(t, w.Write(p))
		ref = append(ref, p...)
		require.EqualValues(t, len(ref), w.Pos())
	}
	require.True(t, w.Close())
	require.Equal(t, ref, sink.Bytes())
}

func TestWrappedReader(t *testing.T) {
	inner := NewBytesReader([]byte("wrapped content"))
	r := NewWrappedReader(inner, Owned)
	require.True(t, r.SupportsRandomAccess())
	size, ok := r.Size()
	require.True(t, ok)
	require.EqualValues(t, 15, size)

	got := make([]byte, 7)
	require.True(t, r.Read(got))
	require.Equal(t, []byte("wrapped"), got)
	require.True(t, r.Seek(8))
	got = got[:7]
	require.True(t, r.Read(got))
	require.Equal(t, []byte("content"), got)
	require.True(t, r.VerifyEndAndClose())
	require.False(t, inner.IsOpen())
}

func TestLimitingReader(t *testing.T) {
	inner := NewBytesReader([]byte("0123456789"))
	r := NewLimitingReader(inner, LimitingReaderOptions{Length: 4})
	size, ok := r.Size()
	require.True(t, ok)
	require.EqualValues(t, 4, size)

	got := make([]byte, 4)
	require.True(t, r.Read(got))
	require.Equal(t, []byte("0123"), got)
	require.False(t, r.Pull(1, 1), "the limit reads as end of data")
	require.True(t, r.OK())
	require.True(t, r.Close())

	// The inner reader continues where the wrapper stopped.
	b, _ := inner.NextByte()
	require.Equal(t, byte('4'), b)
}

func TestLimitingReaderStartsMidStream(t *testing.T) {
	inner := NewBytesReader([]byte("0123456789"))
	inner.Advance(3)
	r := NewLimitingReader(inner, LimitingReaderOptions{Length: 4})
	require.EqualValues(t, 3, r.Pos(), "positions are the inner positions")
	got := make([]byte, 4)
	require.True(t, r.Read(got))
	require.Equal(t, []byte("3456"), got)
	require.False(t, r.Pull(1, 1))
	require.True(t, r.Close())
}

func TestLimitingReaderExactUnderrun(t *testing.T) {
	inner := NewBytesReader([]byte("ab"))
	r := NewLimitingReader(inner, LimitingReaderOptions{Length: 5, Exact: true})
	got := make([]byte, 5)
	require.False(t, r.Read(got))
	require.False(t, r.OK(), "an exact-length underrun is a failure")
	require.True(t, errors.Is(r.Err(), ErrInvalidArgument), "%v", r.Err())
}

func TestPrefixLimitingReader(t *testing.T) {
	inner := NewBytesReader([]byte("0123456789"))
	require.True(t, inner.Seek(3))
	r := NewPrefixLimitingReader(inner, Borrowed)
	require.EqualValues(t, 0, r.Pos(), "the hidden prefix shifts positions")

	b, ok := r.NextByte()
	require.True(t, ok)
	require.Equal(t, byte('3'), b)

	require.True(t, r.Seek(5))
	b, _ = r.NextByte()
	require.Equal(t, byte('8'), b)

	size, ok := r.Size()
	require.True(t, ok)
	require.EqualValues(t, 7, size)
	require.True(t, r.Close())
}
