// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

const outputFileMode = 0o644

// writeOutput writes data to name. The data is written to a temporary file in
// the same directory first that is renamed once complete, so name is either
// fully written or not touched at all.
func writeOutput(fsys afero.Fs, name string, data []byte) error {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	if err := checkFreeSpace(fsys, dir, int64(len(data))); err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}

	file, err := afero.TempFile(fsys, dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := file.Name()

	_, err = file.Write(data)

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = fsys.Chmod(tempName, outputFileMode)
	}

	if err == nil {
		err = fsys.Rename(tempName, name)
	}

	if err != nil {
		removeTempFile(fsys, tempName)
		return fmt.Errorf("write output %s: %w", name, err)
	}

	return nil
}

func removeTempFile(fsys afero.Fs, name string) {
	slog.Debug("Removing temporary output file", slog.String("path", name))

	err := fsys.Remove(name)
	if err != nil {
		slog.Error(
			"Failed to remove temporary output file",
			slog.String("path", name),
			slog.Any("error", err),
		)
	}
}
