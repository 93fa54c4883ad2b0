// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cavaliergopher/cpio"
)

const (
	fileMode    = 0o755
	dirMode     = 0o755
	symlinkMode = 0o777

	fileLinks    = 1
	dirLinks     = 2
	symlinkLinks = 1

	firstInode = 1
)

// modTime is the modification time of all entries.
//
//nolint:gochecknoglobals
var modTime = time.Unix(0, 0)

// Archive builds a CPIO newc archive in memory.
//
// Entries are written in the order they are added. All entries are owned by
// root, have a modification time of 0 and get a unique inode number starting
// at 1. Once [Archive.Finish] has been called, no further entries can be
// added.
type Archive struct {
	buf        bytes.Buffer
	cpioWriter *cpio.Writer
	paths      map[string]struct{}
	nextInode  int64
	finished   bool
	err        error
}

// NewArchive creates a new empty [Archive].
func NewArchive() *Archive {
	archive := &Archive{
		paths:     make(map[string]struct{}),
		nextInode: firstInode,
	}
	archive.cpioWriter = cpio.NewWriter(&archive.buf)

	return archive
}

// Len returns the number of entries added so far.
func (a *Archive) Len() int {
	return len(a.paths)
}

// Contains returns true if an entry for the given path has been added.
func (a *Archive) Contains(name string) bool {
	key, err := entryKey(name)
	if err != nil {
		return false
	}

	_, exists := a.paths[key]

	return exists
}

// AddFile adds a regular file with the given content.
func (a *Archive) AddFile(name string, data []byte) error {
	header := &cpio.Header{
		Name:    name,
		Mode:    cpio.TypeReg | fileMode,
		Links:   fileLinks,
		ModTime: modTime,
		Size:    int64(len(data)),
	}

	return a.writeEntry("add file", header, data)
}

// AddDirectory adds a directory entry. Parent directories are not created
// automatically.
func (a *Archive) AddDirectory(name string) error {
	header := &cpio.Header{
		Name:    name,
		Mode:    cpio.TypeDir | dirMode,
		Links:   dirLinks,
		ModTime: modTime,
	}

	return a.writeEntry("add directory", header, nil)
}

// AddSymlink adds a symbolic link at name pointing to target.
func (a *Archive) AddSymlink(name, target string) error {
	if target == "" {
		return &PathError{
			Op:   "add symlink",
			Path: name,
			Err:  fmt.Errorf("%w: empty link target", ErrEncoding),
		}
	}

	header := &cpio.Header{
		Name:    name,
		Mode:    cpio.TypeSymlink | symlinkMode,
		Links:   symlinkLinks,
		ModTime: modTime,
		Size:    int64(len(target)),
	}

	// Body of a link is the path of the target file.
	return a.writeEntry("add symlink", header, []byte(target))
}

// Finish writes the archive trailer and returns the complete archive.
//
// The [Archive] is consumed. Any further call fails with
// [ErrArchiveFinished].
func (a *Archive) Finish() ([]byte, error) {
	if err := a.usable(); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}

	a.finished = true

	// Close writes the trailer record and flushes the padding.
	if err := a.cpioWriter.Close(); err != nil {
		return nil, fmt.Errorf("finish: %w: %w", ErrEncoding, err)
	}

	return a.buf.Bytes(), nil
}

func (a *Archive) usable() error {
	if a.err != nil {
		return a.err
	}

	if a.finished {
		return ErrArchiveFinished
	}

	return nil
}

func (a *Archive) writeEntry(op string, header *cpio.Header, body []byte) error {
	if err := a.usable(); err != nil {
		return &PathError{Op: op, Path: header.Name, Err: err}
	}

	key, err := entryKey(header.Name)
	if err != nil {
		return &PathError{Op: op, Path: header.Name, Err: err}
	}

	if _, exists := a.paths[key]; exists {
		return &PathError{Op: op, Path: header.Name, Err: ErrFileExist}
	}

	header.Inode = a.nextInode

	if err := a.cpioWriter.WriteHeader(header); err != nil {
		a.err = fmt.Errorf("%w: write header: %w", ErrEncoding, err)
		return &PathError{Op: op, Path: header.Name, Err: a.err}
	}

	if len(body) > 0 {
		if _, err := a.cpioWriter.Write(body); err != nil {
			a.err = fmt.Errorf("%w: write body: %w", ErrEncoding, err)
			return &PathError{Op: op, Path: header.Name, Err: a.err}
		}
	}

	a.paths[key] = struct{}{}
	a.nextInode++

	return nil
}

// entryKey returns the normalized path used for detecting duplicates. A
// leading slash is irrelevant for the kernel as it unpacks relative to "/".
func entryKey(name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: path contains NUL byte", ErrEncoding)
	}

	key := strings.TrimPrefix(path.Clean("/"+name), "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty path", ErrEncoding)
	}

	return key, nil
}
