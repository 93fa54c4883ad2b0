// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/aibor/bootlet/internal/config"
	"github.com/spf13/afero"
)

// Validate checks that all local files referenced by cfg are present, so the
// build fails before anything is downloaded.
func Validate(fsys afero.Fs, cfg config.Config) error {
	sources := []struct {
		name   string
		source config.FileSource
	}{
		{"busybox", cfg.Busybox},
		{"linux kernel", cfg.LinuxKernel},
		{"systemd-boot binary", cfg.SystemdBootBinary},
	}

	for _, s := range sources {
		if s.source.Type != config.SourcePath {
			continue
		}

		if err := ValidateFilePath(fsys, s.source.Path); err != nil {
			return fmt.Errorf("%s file: %w", s.name, err)
		}
	}

	for _, file := range cfg.ExtraBinFiles {
		if err := ValidateFilePath(fsys, file.File); err != nil {
			return fmt.Errorf("extra file for %s: %w", file.Target, err)
		}
	}

	return nil
}
