// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Dir is a directory of a [Volume].
type Dir struct {
	volume *Volume
	path   string
}

// Path returns the absolute path of the directory.
func (d *Dir) Path() string {
	return d.path
}

// CreateDirectory creates a new directory in d. Names are compared case
// insensitively, as FAT does.
func (d *Dir) CreateDirectory(name string) (*Dir, error) {
	fullPath := path.Join(d.path, name)

	if err := d.checkNew(name); err != nil {
		return nil, &PathError{Op: "mkdir", Path: fullPath, Err: err}
	}

	if err := d.volume.fs.Mkdir(fullPath); err != nil {
		return nil, &PathError{
			Op:   "mkdir",
			Path: fullPath,
			Err:  classify(d.volume.storage, err),
		}
	}

	return &Dir{volume: d.volume, path: fullPath}, nil
}

// CreateFile creates a new empty file in d and opens it for writing. An
// existing file of the same name is truncated to zero length. The returned
// [File] must be closed.
func (d *Dir) CreateFile(name string) (*File, error) {
	fullPath := path.Join(d.path, name)

	if err := ValidateName(name); err != nil {
		return nil, &PathError{Op: "create", Path: fullPath, Err: err}
	}

	openPath := fullPath

	info, err := d.lookup(name)

	switch {
	case err == nil && info.IsDir():
		return nil, &PathError{Op: "create", Path: fullPath, Err: ErrFileExist}
	case err == nil:
		openPath = path.Join(d.path, info.Name())
	case !errors.Is(err, ErrFileNotExist):
		return nil, &PathError{Op: "create", Path: fullPath, Err: err}
	default:
		if err := d.checkAlias(name); err != nil {
			return nil, &PathError{Op: "create", Path: fullPath, Err: err}
		}
	}

	handle, err := d.volume.fs.OpenFile(openPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC)
	if err != nil {
		return nil, &PathError{
			Op:   "create",
			Path: fullPath,
			Err:  classify(d.volume.storage, err),
		}
	}

	d.volume.openHandles++

	return &File{volume: d.volume, path: fullPath, handle: handle}, nil
}

// ReadFile returns the content of the file name in d.
func (d *Dir) ReadFile(name string) (data []byte, err error) {
	fullPath := path.Join(d.path, name)

	info, err := d.lookup(name)
	if err != nil {
		return nil, &PathError{Op: "read", Path: fullPath, Err: err}
	}

	if info.IsDir() {
		return nil, &PathError{Op: "read", Path: fullPath, Err: fs.ErrInvalid}
	}

	handle, err := d.volume.fs.OpenFile(path.Join(d.path, info.Name()), os.O_RDONLY)
	if err != nil {
		return nil, &PathError{
			Op:   "read",
			Path: fullPath,
			Err:  classify(d.volume.storage, err),
		}
	}

	defer func() {
		if closeErr := handle.Close(); closeErr != nil && err == nil {
			err = &PathError{Op: "close", Path: fullPath, Err: closeErr}
		}
	}()

	data, err = io.ReadAll(handle)
	if err != nil {
		return nil, &PathError{
			Op:   "read",
			Path: fullPath,
			Err:  classify(d.volume.storage, err),
		}
	}

	return data, nil
}

// ReadDir returns the entries of d in on-disk order. The "." and ".." entries
// are omitted.
func (d *Dir) ReadDir() ([]fs.FileInfo, error) {
	infos, err := d.volume.fs.ReadDir(d.path)
	if err != nil {
		return nil, &PathError{
			Op:   "readdir",
			Path: d.path,
			Err:  classify(d.volume.storage, err),
		}
	}

	entries := make([]fs.FileInfo, 0, len(infos))

	for _, info := range infos {
		switch info.Name() {
		case "", ".", "..":
			continue
		}

		entries = append(entries, info)
	}

	return entries, nil
}

// checkNew checks that name is valid and neither name nor its 8.3 alias is
// taken yet.
func (d *Dir) checkNew(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	_, err := d.lookup(name)

	switch {
	case err == nil:
		return ErrFileExist
	case errors.Is(err, ErrFileNotExist):
		return d.checkAlias(name)
	default:
		return err
	}
}

// checkAlias fails with [ErrFileExist] if a different entry of d has the same
// 8.3 alias as name. The filesystem does not number aliases, so both entries
// would end up with the same short name.
func (d *Dir) checkAlias(name string) error {
	entries, err := d.ReadDir()
	if err != nil {
		return err
	}

	alias := ShortAlias(name)

	for _, entry := range entries {
		if ShortAlias(entry.Name()) == alias {
			return fmt.Errorf("%w: alias %s taken by %s", ErrFileExist, alias,
				entry.Name())
		}
	}

	return nil
}

// lookup finds the entry name in d, ignoring case.
func (d *Dir) lookup(name string) (fs.FileInfo, error) {
	entries, err := d.ReadDir()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), name) {
			return entry, nil
		}
	}

	return nil, ErrFileNotExist
}

func (d *Dir) walk(fn WalkFunc) error {
	entries, err := d.ReadDir()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fullPath := path.Join(d.path, entry.Name())

		if err := fn(fullPath, entry); err != nil {
			return err
		}

		if entry.IsDir() {
			sub := &Dir{volume: d.volume, path: fullPath}
			if err := sub.walk(fn); err != nil {
				return err
			}
		}
	}

	return nil
}
