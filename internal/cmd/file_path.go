// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/spf13/afero"
)

// ValidateFilePath checks that name is an existing regular file in fsys.
func ValidateFilePath(fsys afero.Fs, name string) error {
	if name == "" {
		return ErrEmptyFilePath
	}

	stat, err := fsys.Stat(name)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	if !stat.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", name, ErrNotRegularFile)
	}

	return nil
}
