// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
)

var (
	ErrMissingOutput  = errors.New("output path must be given with --output-path")
	ErrEmptyFilePath  = errors.New("file path must not be empty")
	ErrNotRegularFile = errors.New("not a regular file")

	ErrInsufficientSpace = errors.New("insufficient space for output")
)
