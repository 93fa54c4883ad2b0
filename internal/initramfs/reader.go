// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/cavaliergopher/cpio"
)

// typeMask masks the file type bits of a mode.
const typeMask cpio.FileMode = 0o170000

// Entry is a single entry read from a CPIO archive.
type Entry struct {
	Name  string
	Mode  cpio.FileMode
	Links int
	Inode int64
	Size  int64
	// Data is the content of a regular file.
	Data []byte
	// Linkname is the target of a symbolic link.
	Linkname string
}

// Type returns the file type bits of the entry.
func (e Entry) Type() fs.FileMode {
	switch e.Mode & typeMask {
	case cpio.TypeDir:
		return fs.ModeDir
	case cpio.TypeSymlink:
		return fs.ModeSymlink
	case cpio.TypeReg:
		return 0
	default:
		return fs.ModeIrregular
	}
}

// ReadEntries reads all entries of the CPIO archive in archive order. Reading
// stops at the trailer record.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cpioReader := cpio.NewReader(r)
	entries := []Entry{}

	for {
		hdr, err := cpioReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		entry := Entry{
			Name:     hdr.Name,
			Mode:     hdr.Mode,
			Links:    hdr.Links,
			Inode:    hdr.Inode,
			Size:     hdr.Size,
			Linkname: hdr.Linkname,
		}

		if hdr.Mode&typeMask == cpio.TypeReg {
			entry.Data, err = io.ReadAll(cpioReader)
			if err != nil {
				return nil, fmt.Errorf("read body for %s: %w", hdr.Name, err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
