// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build unix

package stream

import (
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// mmapping is a shared read-only mapping. The last reader unmaps it.
type mmapping struct {
	data []byte
	refs atomic.Int32
}

func (m *mmapping) unref(r *Reader, name string) {
	if m.refs.Add(-1) != 0 || m.data == nil {
		return
	}
	if err := unix.Munmap(m.data); err != nil {
		r.Fail(errors.Wrapf(err, "unmapping %q", name))
	}
	m.data = nil
}

// mmapReader serves a memory-mapped file as a single window. New readers
// share the mapping and are safe to use concurrently.
type mmapReader struct {
	m    *mmapping
	name string
}

// NewMmapReader maps f and returns a Reader over the mapping. A mapping
// error is reported through the returned reader's status.
func NewMmapReader(f *os.File) *Reader {
	name := f.Name()
	st, err := f.Stat()
	if err != nil {
		r := NewReader(&mmapReader{m: &mmapping{}, name: name})
		r.Fail(errors.Wrapf(err, "sizing %q", name))
		return r
	}
	var data []byte
	if st.Size() > 0 {
		data, err = unix.Mmap(int(f.Fd()), 0, int(st.Size()),
			unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			r := NewReader(&mmapReader{m: &mmapping{}, name: name})
			r.Fail(errors.Wrapf(err, "mapping %q", name))
			return r
		}
	}
	m := &mmapping{data: data}
	m.refs.Store(1)
	return newMmapReaderOver(m, name, 0)
}

func newMmapReaderOver(m *mmapping, name string, pos uint64) *Reader {
	r := NewReader(&mmapReader{m: m, name: name})
	r.SetWindow(m.data, 0)
	r.SetLimitPos(uint64(len(m.data)))
	r.Seek(pos)
	return r
}

func (b *mmapReader) Done(r *Reader) {
	b.m.unref(r, b.name)
}

func (b *mmapReader) PullSlow(r *Reader, min, recommended int) bool {
	return false
}

func (b *mmapReader) SeekSlow(r *Reader, pos uint64) bool {
	r.SetWindow(b.m.data, len(b.m.data))
	return false
}

func (b *mmapReader) SizeSlow(r *Reader) (uint64, bool) {
	return uint64(len(b.m.data)), true
}

func (b *mmapReader) Caps(r *Reader) ReaderCaps {
	return ReaderCaps{Rewind: true, RandomAccess: true, Size: true, NewReader: true}
}

func (b *mmapReader) NewReaderSlow(r *Reader, pos uint64) *Reader {
	b.m.refs.Add(1)
	return newMmapReaderOver(b.m, b.name, pos)
}
