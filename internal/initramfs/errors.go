// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"errors"
	"io/fs"
)

var (
	// ErrFileExist is returned if an entry with the same path has already
	// been added to the archive.
	ErrFileExist = fs.ErrExist

	// ErrEncoding is returned if an entry can not be encoded into a valid
	// header.
	ErrEncoding = errors.New("entry encoding failed")

	// ErrArchiveFinished is returned if entries are added after the archive
	// has been finished.
	ErrArchiveFinished = errors.New("archive already finished")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
