// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	maxNameUnits  = 255
	maxLabelBytes = 11

	invalidNameChars = "\"*/:<>?\\|"

	maxAliasBase     = 8
	maxAliasExt      = 3
	validAliasChars  = "!#$%&'()-@^_`{}~"
	aliasReplacement = '_'
)

// ValidateName checks that name is a valid FAT long file name for a single
// path component.
func ValidateName(name string) error {
	switch name {
	case "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case ".", "..":
		return fmt.Errorf("%w: reserved name %q", ErrInvalidName, name)
	}

	if units := len(utf16.Encode([]rune(name))); units > maxNameUnits {
		return fmt.Errorf("%w: name has %d UTF-16 units, maximum is %d",
			ErrInvalidName, units, maxNameUnits)
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: control character %U", ErrInvalidName, r)
		}

		if strings.ContainsRune(invalidNameChars, r) {
			return fmt.Errorf("%w: forbidden character %q", ErrInvalidName, r)
		}
	}

	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return fmt.Errorf("%w: trailing dot or space", ErrInvalidName)
	}

	return nil
}

// validateLabel checks the volume label. It is stored in the 11 byte label
// field of the boot sector, so only printable ASCII fits.
func validateLabel(label string) error {
	if len(label) > maxLabelBytes {
		return fmt.Errorf("%w: label longer than %d bytes", ErrInvalidName,
			maxLabelBytes)
	}

	for _, r := range label {
		if r < 0x20 || r > 0x7e || strings.ContainsRune(invalidNameChars, r) {
			return fmt.Errorf("%w: label character %q", ErrInvalidName, r)
		}
	}

	return nil
}

// ShortAlias returns the 8.3 name the filesystem stores for name: upper case,
// characters not allowed in short names replaced by "_", the extension cut
// to three characters and a base longer than eight characters shortened to
// six characters plus "~1".
func ShortAlias(name string) string {
	base, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx > -1 {
		base, ext = name[:idx], name[idx+1:]
	}

	base = aliasChars(base)
	if len(base) > maxAliasBase {
		base = base[:maxAliasBase-2] + "~1"
	}

	ext = aliasChars(ext)
	if len(ext) > maxAliasExt {
		ext = ext[:maxAliasExt]
	}

	if ext == "" {
		return base
	}

	return base + "." + ext
}

func aliasChars(s string) string {
	var builder strings.Builder

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			builder.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case strings.ContainsRune(validAliasChars, r):
			builder.WriteRune(r)
		default:
			builder.WriteRune(aliasReplacement)
		}
	}

	return builder.String()
}
