// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs_test

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/aibor/bootlet/internal/initramfs"
	"github.com/cavaliergopher/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveEntries(t *testing.T) {
	regularFileBody := make([]byte, 201)
	for idx := range regularFileBody {
		regularFileBody[idx] = byte(idx)
	}

	tests := []struct {
		name     string
		run      func(a *initramfs.Archive) error
		expected []rawEntry
	}{
		{
			name: "empty",
			run: func(_ *initramfs.Archive) error {
				return nil
			},
			expected: []rawEntry{},
		},
		{
			name: "directory",
			run: func(a *initramfs.Archive) error {
				return a.AddDirectory("bin")
			},
			expected: []rawEntry{
				{ino: 1, mode: 0o40755, nlink: 2, name: "bin", data: []byte{}},
			},
		},
		{
			name: "regular file unaligned",
			run: func(a *initramfs.Archive) error {
				return a.AddFile("bin/busybox", regularFileBody)
			},
			expected: []rawEntry{
				{
					ino:      1,
					mode:     0o100755,
					nlink:    1,
					filesize: 201,
					name:     "bin/busybox",
					data:     regularFileBody,
				},
			},
		},
		{
			name: "symlink",
			run: func(a *initramfs.Archive) error {
				return a.AddSymlink("bin/sh", "busybox")
			},
			expected: []rawEntry{
				{
					ino:      1,
					mode:     0o120777,
					nlink:    1,
					filesize: 7,
					name:     "bin/sh",
					data:     []byte("busybox"),
				},
			},
		},
		{
			name: "mixed in insertion order",
			run: func(a *initramfs.Archive) error {
				for _, dir := range []string{"bin", "etc", "tmp"} {
					if err := a.AddDirectory(dir); err != nil {
						return err
					}
				}

				if err := a.AddFile("bin/busybox", []byte("bb")); err != nil {
					return err
				}

				if err := a.AddSymlink("bin/ls", "busybox"); err != nil {
					return err
				}

				return a.AddFile("/init", []byte("#!/bin/sh\n"))
			},
			expected: []rawEntry{
				{ino: 1, mode: 0o40755, nlink: 2, name: "bin", data: []byte{}},
				{ino: 2, mode: 0o40755, nlink: 2, name: "etc", data: []byte{}},
				{ino: 3, mode: 0o40755, nlink: 2, name: "tmp", data: []byte{}},
				{
					ino:      4,
					mode:     0o100755,
					nlink:    1,
					filesize: 2,
					name:     "bin/busybox",
					data:     []byte("bb"),
				},
				{
					ino:      5,
					mode:     0o120777,
					nlink:    1,
					filesize: 7,
					name:     "bin/ls",
					data:     []byte("busybox"),
				},
				{
					ino:      6,
					mode:     0o100755,
					nlink:    1,
					filesize: 10,
					name:     "/init",
					data:     []byte("#!/bin/sh\n"),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := initramfs.NewArchive()

			err := tt.run(archive)
			require.NoError(t, err)

			data, err := archive.Finish()
			require.NoError(t, err)

			assert.Zero(t, len(data)%4, "archive length must be aligned")

			actual := parseNewc(t, data)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestArchiveErrors(t *testing.T) {
	tests := []struct {
		name        string
		run         func(a *initramfs.Archive) error
		expectedErr error
	}{
		{
			name: "duplicate directory",
			run: func(a *initramfs.Archive) error {
				_ = a.AddDirectory("bin")
				return a.AddDirectory("bin")
			},
			expectedErr: initramfs.ErrFileExist,
		},
		{
			name: "duplicate with leading slash",
			run: func(a *initramfs.Archive) error {
				_ = a.AddFile("init", nil)
				return a.AddFile("/init", nil)
			},
			expectedErr: initramfs.ErrFileExist,
		},
		{
			name: "file over symlink",
			run: func(a *initramfs.Archive) error {
				_ = a.AddSymlink("bin/sh", "busybox")
				return a.AddFile("bin/sh", []byte("sh"))
			},
			expectedErr: fs.ErrExist,
		},
		{
			name: "empty path",
			run: func(a *initramfs.Archive) error {
				return a.AddDirectory("")
			},
			expectedErr: initramfs.ErrEncoding,
		},
		{
			name: "root path",
			run: func(a *initramfs.Archive) error {
				return a.AddDirectory("/")
			},
			expectedErr: initramfs.ErrEncoding,
		},
		{
			name: "NUL in path",
			run: func(a *initramfs.Archive) error {
				return a.AddFile("bin/a\x00b", nil)
			},
			expectedErr: initramfs.ErrEncoding,
		},
		{
			name: "empty symlink target",
			run: func(a *initramfs.Archive) error {
				return a.AddSymlink("bin/sh", "")
			},
			expectedErr: initramfs.ErrEncoding,
		},
		{
			name: "add after finish",
			run: func(a *initramfs.Archive) error {
				_, err := a.Finish()
				require.NoError(t, err)

				return a.AddDirectory("bin")
			},
			expectedErr: initramfs.ErrArchiveFinished,
		},
		{
			name: "finish twice",
			run: func(a *initramfs.Archive) error {
				_, err := a.Finish()
				require.NoError(t, err)

				_, err = a.Finish()

				return err
			},
			expectedErr: initramfs.ErrArchiveFinished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := initramfs.NewArchive()

			err := tt.run(archive)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestArchiveFailedEntryIsNotAdded(t *testing.T) {
	archive := initramfs.NewArchive()

	require.NoError(t, archive.AddDirectory("bin"))
	require.Error(t, archive.AddDirectory("bin"))
	require.NoError(t, archive.AddDirectory("etc"))

	assert.Equal(t, 2, archive.Len())
	assert.True(t, archive.Contains("/bin"))
	assert.False(t, archive.Contains("dev"))

	data, err := archive.Finish()
	require.NoError(t, err)

	actual := parseNewc(t, data)
	require.Len(t, actual, 2)
	assert.Equal(t, "etc", actual[1].name)
	assert.EqualValues(t, 2, actual[1].ino, "inode must not skip failed entries")
}

func TestArchiveReadableByCPIOReader(t *testing.T) {
	archive := initramfs.NewArchive()

	require.NoError(t, archive.AddDirectory("bin"))
	require.NoError(t, archive.AddFile("bin/busybox", []byte("busybox binary")))
	require.NoError(t, archive.AddSymlink("bin/sh", "busybox"))

	data, err := archive.Finish()
	require.NoError(t, err)

	r := cpio.NewReader(bytes.NewReader(data))

	hdr, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bin", hdr.Name)
	assert.EqualValues(t, cpio.TypeDir|0o755, hdr.Mode)

	hdr, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bin/busybox", hdr.Name)
	assert.EqualValues(t, cpio.TypeReg|0o755, hdr.Mode)
	assert.EqualValues(t, 14, hdr.Size)

	hdr, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bin/sh", hdr.Name)
	assert.EqualValues(t, cpio.TypeSymlink|0o777, hdr.Mode)
	assert.Equal(t, "busybox", hdr.Linkname)
}
