// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/strandio/strand/chain"
)

// FileWriterOptions tune a file writer.
type FileWriterOptions struct {
	// BufferSize is the staging buffer size.
	BufferSize int
	// Ownership says whether Close closes the file.
	Ownership Ownership
	// Logger, if set, receives a message when a durability flush takes
	// longer than SyncWarnLatency.
	Logger Logger
	// SyncWarnLatency is the fsync latency above which Logger is notified.
	// Zero disables the warning.
	SyncWarnLatency time.Duration
}

func (o *FileWriterOptions) normalize() {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultMaxBufferSize
	}
}

// fileWriter writes a file through positional writes.
type fileWriter struct {
	f      *os.File
	name   string
	opts   FileWriterOptions
	buffer chain.Buffer
}

// NewFileWriter returns a Writer over f, writing at f's beginning. It
// supports seek, truncate, size and machine-strength flush.
func NewFileWriter(f *os.File, opts FileWriterOptions) *Writer {
	opts.normalize()
	b := &fileWriter{f: f, name: f.Name(), opts: opts}
	return NewWriter(b)
}

// CreateFileWriter creates or truncates name for writing. A create error is
// reported through the returned writer's status.
func CreateFileWriter(name string, opts FileWriterOptions) *Writer {
	f, err := os.Create(name)
	if err != nil {
		opts.normalize()
		w := NewWriter(&fileWriter{name: name, opts: opts})
		w.Fail(errors.Wrapf(err, "writing %q", name))
		return w
	}
	opts.Ownership = Owned
	return NewFileWriter(f, opts)
}

func (b *fileWriter) fail(w *Writer, err error, op string) bool {
	return w.Fail(errors.Wrapf(err, "%s %q", op, b.name))
}

// writeOut hands the written window prefix to the file at the window's
// position.
func (b *fileWriter) writeOut(w *Writer) bool {
	p := w.Written()
	total := 0
	for total < len(p) {
		n, err := b.f.WriteAt(p[total:], int64(w.StartPos())+int64(total))
		total += n
		if err != nil {
			w.SetStartPos(w.StartPos() + uint64(total))
			w.SetWindow(nil, 0)
			return b.fail(w, err, "writing")
		}
	}
	w.ClearWindow()
	return true
}

func (b *fileWriter) Done(w *Writer) {
	b.writeOut(w)
	b.buffer.Release()
	if b.opts.Ownership == Owned && b.f != nil {
		if err := b.f.Close(); err != nil {
			b.fail(w, err, "closing")
		}
	}
}

func (b *fileWriter) PushSlow(w *Writer, min, recommended int) bool {
	if !w.CheckOverflow(uint64(min)) {
		return false
	}
	if !b.writeOut(w) {
		return false
	}
	size := b.opts.BufferSize
	if size < min {
		size = min
	}
	b.buffer.Reset(size)
	w.SetWindow(b.buffer.Data(), 0)
	return true
}

func (b *fileWriter) WriteSlow(w *Writer, p []byte) bool {
	if !w.CheckOverflow(uint64(len(p))) {
		return false
	}
	if !b.writeOut(w) {
		return false
	}
	if len(p) < b.opts.BufferSize {
		b.buffer.Reset(b.opts.BufferSize)
		w.SetWindow(b.buffer.Data(), copy(b.buffer.Data(), p))
		return true
	}
	total := 0
	for total < len(p) {
		n, err := b.f.WriteAt(p[total:], int64(w.StartPos())+int64(total))
		total += n
		if err != nil {
			w.SetStartPos(w.StartPos() + uint64(total))
			return b.fail(w, err, "writing")
		}
	}
	w.SetStartPos(w.StartPos() + uint64(total))
	return true
}

func (b *fileWriter) FlushSlow(w *Writer, ft FlushType) bool {
	if ft == FlushFromObject {
		return true
	}
	if !b.writeOut(w) {
		return false
	}
	if ft == FlushFromMachine {
		start := time.Now()
		if err := b.f.Sync(); err != nil {
			return b.fail(w, err, "syncing")
		}
		if d := time.Since(start); b.opts.Logger != nil &&
			b.opts.SyncWarnLatency > 0 && d > b.opts.SyncWarnLatency {
			b.opts.Logger.Infof("slow fsync of %q: %s", b.name, d)
		}
	}
	return true
}

func (b *fileWriter) SeekSlow(w *Writer, pos uint64) bool {
	if !b.writeOut(w) {
		return false
	}
	size, ok := b.statSize(w)
	if !ok {
		return false
	}
	if pos > size {
		w.SetStartPos(size)
		return false
	}
	w.SetStartPos(pos)
	return true
}

func (b *fileWriter) TruncateSlow(w *Writer, size uint64) bool {
	if !b.writeOut(w) {
		return false
	}
	if err := b.f.Truncate(int64(size)); err != nil {
		return b.fail(w, err, "truncating")
	}
	if size < w.StartPos() {
		w.SetStartPos(size)
	}
	return true
}

func (b *fileWriter) SizeSlow(w *Writer) (uint64, bool) {
	if !b.writeOut(w) {
		return 0, false
	}
	return b.statSize(w)
}

func (b *fileWriter) statSize(w *Writer) (uint64, bool) {
	st, err := b.f.Stat()
	if err != nil {
		b.fail(w, err, "sizing")
		return 0, false
	}
	return uint64(st.Size()), true
}
