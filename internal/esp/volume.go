// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/diskfs/go-diskfs/filesystem/fat32"
)

// Volume is a FAT32 filesystem on an in-memory buffer.
type Volume struct {
	storage     *memStorage
	fs          *fat32.FileSystem
	openHandles int
}

// Format formats buf in place as FAT32 with the given volume label. The
// buffer must be at least [MinSize] bytes.
func Format(buf []byte, label string) (*Volume, error) {
	if len(buf) < MinSize {
		return nil, fmt.Errorf("format: %w: %d bytes is below minimum of %d bytes",
			ErrCapacity, len(buf), MinSize)
	}

	if err := validateLabel(label); err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}

	storage := newMemStorage(buf)

	fileSystem, err := fat32.Create(storage, storage.size(), 0, SectorSize, label)
	if err != nil {
		return nil, fmt.Errorf("format: %w", classify(storage, err))
	}

	return &Volume{storage: storage, fs: fileSystem}, nil
}

// Open opens an existing FAT32 filesystem in buf.
func Open(buf []byte) (*Volume, error) {
	storage := newMemStorage(buf)

	fileSystem, err := fat32.Read(storage, storage.size(), 0, SectorSize)
	if err != nil {
		return nil, fmt.Errorf("open: %w", classify(storage, err))
	}

	return &Volume{storage: storage, fs: fileSystem}, nil
}

// Label returns the volume label.
func (v *Volume) Label() string {
	return strings.TrimRight(v.fs.Label(), " ")
}

// Size returns the size of the volume in bytes.
func (v *Volume) Size() int64 {
	return v.storage.size()
}

// Root returns the root directory of the volume.
func (v *Volume) Root() *Dir {
	return &Dir{volume: v, path: "/"}
}

// Bytes returns the underlying buffer. It fails with [ErrHandleOpen] while any
// [File] is still open and returns the first recorded write failure, if any.
func (v *Volume) Bytes() ([]byte, error) {
	if v.openHandles > 0 {
		return nil, fmt.Errorf("%w: %d", ErrHandleOpen, v.openHandles)
	}

	if v.storage.fault != nil {
		return nil, v.storage.fault
	}

	return v.storage.buf, nil
}

// ReadFile reads the file at the given absolute path.
func (v *Volume) ReadFile(name string) ([]byte, error) {
	dir, base := path.Split(path.Clean("/" + name))

	d, err := v.lookupDir(dir)
	if err != nil {
		return nil, &PathError{Op: "read", Path: name, Err: err}
	}

	return d.ReadFile(base)
}

// WalkFunc is called by [Volume.Walk] for every entry. name is the absolute
// path of the entry.
type WalkFunc func(name string, info fs.FileInfo) error

// Walk calls fn for every entry of the volume in depth-first order. Entries
// of a directory are visited in on-disk order, directories before their
// content. The root directory itself is not visited.
func (v *Volume) Walk(fn WalkFunc) error {
	return v.Root().walk(fn)
}

func (v *Volume) lookupDir(name string) (*Dir, error) {
	dir := v.Root()

	for _, elem := range strings.Split(strings.Trim(name, "/"), "/") {
		if elem == "" {
			continue
		}

		info, err := dir.lookup(elem)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("%s: %w", elem, fs.ErrInvalid)
		}

		dir = &Dir{volume: v, path: path.Join(dir.path, info.Name())}
	}

	return dir, nil
}

// classify maps errors of the filesystem implementation to package errors.
// Failed writes to the buffer are recorded by the storage, so a capacity
// problem is detected even if the error chain does not carry it.
func classify(storage *memStorage, err error) error {
	switch {
	case errors.Is(err, ErrCapacity), errors.Is(err, ErrIO):
		return err
	case errors.Is(storage.fault, ErrCapacity):
		return fmt.Errorf("%w: %w", ErrCapacity, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
