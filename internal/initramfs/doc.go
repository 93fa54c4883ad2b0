// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package initramfs provides an in-memory builder for the initramfs of
// bootlet. The initramfs is a CPIO archive in the "new ASCII" (newc) format
// as expected by the Linux kernel.
//
// The archive is a flat list of entries. The kernel unpacks it sequentially,
// so directories must be added before any entry nested in them.
package initramfs
