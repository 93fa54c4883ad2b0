// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	newcMagic      = "070701"
	newcHeaderSize = 110
	newcFieldSize  = 8
	trailerName    = "TRAILER!!!"
)

// rawEntry holds the header fields of a newc record as found in the archive.
type rawEntry struct {
	ino      uint64
	mode     uint64
	uid      uint64
	gid      uint64
	nlink    uint64
	mtime    uint64
	filesize uint64
	name     string
	data     []byte
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// parseNewc decodes the archive byte by byte without any CPIO library. It
// fails if a record is malformed, misaligned or if anything but zero padding
// follows the first trailer. The trailer is not part of the result.
func parseNewc(tb testing.TB, archive []byte) []rawEntry {
	tb.Helper()

	entries := []rawEntry{}
	offset := 0

	for {
		require.LessOrEqual(tb, offset+newcHeaderSize, len(archive),
			"header at offset %d must not be truncated", offset)

		hdr := archive[offset : offset+newcHeaderSize]
		require.Equal(tb, newcMagic, string(hdr[:len(newcMagic)]),
			"magic at offset %d", offset)

		field := func(idx int) uint64 {
			start := len(newcMagic) + idx*newcFieldSize
			value, err := strconv.ParseUint(
				string(hdr[start:start+newcFieldSize]), 16, 32)
			require.NoError(tb, err, "field %d at offset %d", idx, offset)

			return value
		}

		entry := rawEntry{
			ino:      field(0),
			mode:     field(1),
			uid:      field(2),
			gid:      field(3),
			nlink:    field(4),
			mtime:    field(5),
			filesize: field(6),
		}
		nameSize := int(field(11))

		nameStart := offset + newcHeaderSize
		require.LessOrEqual(tb, nameStart+nameSize, len(archive))
		require.Equal(tb, byte(0), archive[nameStart+nameSize-1],
			"name must be NUL terminated")

		entry.name = string(archive[nameStart : nameStart+nameSize-1])

		dataStart := align4(nameStart + nameSize)
		dataEnd := dataStart + int(entry.filesize)
		require.LessOrEqual(tb, dataEnd, len(archive))

		entry.data = archive[dataStart:dataEnd]
		offset = align4(dataEnd)

		if entry.name == trailerName {
			rest := archive[min(offset, len(archive)):]
			require.Equal(tb, make([]byte, len(rest)), rest,
				"only padding may follow the trailer")

			return entries
		}

		entries = append(entries, entry)
	}
}
