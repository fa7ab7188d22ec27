// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package stream

import "github.com/cockroachdb/errors"

// Error kinds carried by failed readers and writers. A stored status is
// associated with a kind by errors.Mark; test with errors.Is.
var (
	// ErrInvalidArgument marks malformed input: a corrupted codec stream, a
	// truncated frame, a bad dictionary.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDataLoss marks unexpected truncation of the underlying data,
	// detected on seek or verify-end.
	ErrDataLoss = errors.New("data loss")
	// ErrOutOfRange marks a position or size exceeding the representable
	// range.
	ErrOutOfRange = errors.New("out of range")
	// ErrResourceExhausted marks a size exceeding in-memory limits, such as
	// writing past the end of a fixed destination.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrInternal marks an unexpected state reported by a codec library.
	ErrInternal = errors.New("internal error")
	// ErrFailedPrecondition marks API misuse, such as seeking a non-seekable
	// source or using a read-mode reader after the writer mutated.
	ErrFailedPrecondition = errors.New("failed precondition")
)

var errClosed = errors.Mark(errors.New("object closed"), ErrFailedPrecondition)

// CorruptionErrorf formats an ErrInvalidArgument-marked error.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

// DataLossErrorf formats an ErrDataLoss-marked error.
func DataLossErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrDataLoss)
}

// PreconditionErrorf formats an ErrFailedPrecondition-marked error.
func PreconditionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrFailedPrecondition)
}

func errOverflow() error {
	return errors.Mark(errors.New("position overflows"), ErrOutOfRange)
}

func errExhausted(what string) error {
	return errors.Mark(errors.Newf("%s exhausted", what), ErrResourceExhausted)
}
