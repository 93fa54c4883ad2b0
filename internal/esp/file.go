// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"github.com/diskfs/go-diskfs/filesystem"
)

// File is a file of a [Volume] open for writing.
type File struct {
	volume  *Volume
	path    string
	handle  filesystem.File
	written int64
	closed  bool
}

// Path returns the absolute path of the file.
func (f *File) Path() string {
	return f.path
}

// Written returns the number of bytes written so far.
func (f *File) Written() int64 {
	return f.written
}

// Write appends p to the file.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, &PathError{Op: "write", Path: f.path, Err: ErrHandleClosed}
	}

	n, err := f.handle.Write(p)
	f.written += int64(n)

	if err != nil {
		return n, &PathError{
			Op:   "write",
			Path: f.path,
			Err:  classify(f.volume.storage, err),
		}
	}

	return n, nil
}

// Close closes the file. The handle is released even if closing fails.
// Closing an already closed file returns [ErrHandleClosed].
func (f *File) Close() error {
	if f.closed {
		return &PathError{Op: "close", Path: f.path, Err: ErrHandleClosed}
	}

	f.closed = true
	f.volume.openHandles--

	if err := f.handle.Close(); err != nil {
		return &PathError{
			Op:   "close",
			Path: f.path,
			Err:  classify(f.volume.storage, err),
		}
	}

	return nil
}
