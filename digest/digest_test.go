// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package digest

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/strandio/strand/chain"
	"github.com/strandio/strand/stream"
	"github.com/stretchr/testify/require"
)

func TestReaderDigest(t *testing.T) {
	data := []byte("bytes flowing through the digesting reader")
	r := NewReader(stream.NewBytesReader(data), nil, stream.Owned)
	got := make([]byte, len(data))
	require.True(t, r.Read(got))
	require.Equal(t, data, got)
	require.Equal(t, xxhash.Sum64(data), r.Digest())
	require.True(t, r.VerifyEndAndClose())
}

func TestReaderDigestIncremental(t *testing.T) {
	data := []byte("0123456789")
	r := NewReader(stream.NewBytesReader(data), nil, stream.Owned)
	got := make([]byte, 4)
	require.True(t, r.Read(got))
	require.Equal(t, xxhash.Sum64(data[:4]), r.Digest())
	require.True(t, r.Read(got))
	require.Equal(t, xxhash.Sum64(data[:8]), r.Digest())
	require.True(t, r.Close())
}

func TestWriterDigest(t *testing.T) {
	data := []byte("bytes flowing through the digesting writer")
	dst := chain.NewDefault()
	w := NewWriter(stream.NewChainWriter(dst), nil, stream.Owned)
	require.True(t, w.Write(data[:10]))
	require.True(t, w.Write(data[10:]))
	require.Equal(t, xxhash.Sum64(data), w.Digest())
	require.True(t, w.Close())
	require.Equal(t, data, dst.Bytes())
}

func TestReaderWriterAgree(t *testing.T) {
	data := []byte("the reader and the writer fold the same bytes")
	dst := chain.NewDefault()
	w := NewWriter(stream.NewChainWriter(dst), nil, stream.Owned)
	require.True(t, w.WriteString(string(data)))
	wantDigest := w.Digest()
	require.True(t, w.Close())

	r := NewReader(stream.NewChainReader(dst), nil, stream.Owned)
	c := chain.NewDefault()
	require.True(t, r.ReadAll(c))
	require.Equal(t, data, c.Bytes())
	require.Equal(t, wantDigest, r.Digest())
	require.True(t, r.Close())
}

func TestReaderDoesNotSeek(t *testing.T) {
	r := NewReader(stream.NewBytesReader([]byte("abcdef")), nil, stream.Owned)
	require.False(t, r.SupportsRewind())
	require.False(t, r.SupportsRandomAccess())
}
