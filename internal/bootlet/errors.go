// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootlet

import (
	"errors"

	"github.com/aibor/bootlet/internal/esp"
	"github.com/aibor/bootlet/internal/initramfs"
)

var (
	ErrInvalidState    = errors.New("step not allowed in current state")
	ErrValueOutOfRange = errors.New("value is outside of range")
	ErrEmptyInput      = errors.New("input must not be empty")
	ErrUnknownValue    = errors.New("unknown value")
)

// Errors of the underlying builders, re-exported so callers only have to deal
// with this package.
var (
	ErrEncoding      = initramfs.ErrEncoding
	ErrNameCollision = initramfs.ErrFileExist
	ErrCapacity      = esp.ErrCapacity
	ErrIO            = esp.ErrIO
)
