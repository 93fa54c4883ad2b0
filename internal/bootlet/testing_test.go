// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootlet_test

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/aibor/bootlet/internal/esp"
	"github.com/aibor/bootlet/internal/initramfs"
	"github.com/stretchr/testify/require"
)

// entry is the comparable essence of an archive entry.
type entry struct {
	name string
	typ  fs.FileMode
	data string
}

func file(name, data string) entry {
	return entry{name: name, data: data}
}

func dir(name string) entry {
	return entry{name: name, typ: fs.ModeDir}
}

func symlink(name, target string) entry {
	return entry{name: name, typ: fs.ModeSymlink, data: target}
}

func baseDirs() []entry {
	return []entry{
		dir("bin"), dir("etc"), dir("proc"), dir("syc"), dir("dev"), dir("tmp"),
	}
}

func readArchive(t *testing.T, archive []byte) []entry {
	t.Helper()

	entries, err := initramfs.ReadEntries(bytes.NewReader(archive))
	require.NoError(t, err)

	actual := make([]entry, 0, len(entries))

	for _, e := range entries {
		actual = append(actual, entry{
			name: e.Name,
			typ:  e.Type(),
			data: string(e.Data) + e.Linkname,
		})
	}

	return actual
}

func openImage(t *testing.T, image []byte) *esp.Volume {
	t.Helper()

	volume, err := esp.Open(image)
	require.NoError(t, err)

	return volume
}

func readImageFile(t *testing.T, volume *esp.Volume, name string) []byte {
	t.Helper()

	data, err := volume.ReadFile(name)
	require.NoError(t, err, name)

	return data
}
