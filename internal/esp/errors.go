// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"errors"
	"io/fs"
)

var (
	// ErrFileExist is returned if a directory entry with the same name
	// exists already.
	ErrFileExist = fs.ErrExist

	// ErrFileNotExist is returned if a directory entry does not exist.
	ErrFileNotExist = fs.ErrNotExist

	// ErrInvalidName is returned if a name violates FAT naming rules.
	ErrInvalidName = errors.New("invalid FAT file name")

	// ErrCapacity is returned if the volume is too small for the requested
	// content.
	ErrCapacity = errors.New("insufficient volume capacity")

	// ErrIO is returned if the underlying buffer can not be read or written.
	ErrIO = errors.New("volume buffer I/O failed")

	// ErrHandleOpen is returned if the volume's buffer is requested while
	// file handles are still open.
	ErrHandleOpen = errors.New("file handles still open")

	// ErrHandleClosed is returned if a closed file handle is used.
	ErrHandleClosed = errors.New("file handle closed")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
