// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package esp builds FAT32 volumes in memory, as used for EFI system
// partitions.
//
// A [Volume] formats a caller provided fixed-size buffer in place. The buffer
// never grows. Directories and files are created through [Dir] handles
// starting at [Volume.Root]. File content is written through [File] handles
// that must be closed before the buffer is read with [Volume.Bytes].
package esp
