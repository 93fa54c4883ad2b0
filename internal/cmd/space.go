// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// checkFreeSpace fails with [ErrInsufficientSpace] if the host filesystem
// holding dir has less than size bytes available for unprivileged users.
// Other filesystems are not checked.
func checkFreeSpace(fsys afero.Fs, dir string, size int64) error {
	if _, isOS := fsys.(*afero.OsFs); !isOS {
		return nil
	}

	var stat unix.Statfs_t

	if err := unix.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", dir, err)
	}

	//nolint:gosec
	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < size {
		return fmt.Errorf("%w: %s needed, %s available in %s",
			ErrInsufficientSpace,
			humanize.IBytes(uint64(size)),
			humanize.IBytes(uint64(available)),
			dir,
		)
	}

	return nil
}
