// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bootlet assembles bootable FAT32 partition images.
//
// An image is built in two stages. [Rootfs] lays out an initramfs with
// busybox, an init script and optional extra files. [Partition] formats a
// FAT32 volume and installs systemd-boot, its configuration, the kernel and
// the initramfs. [Build] runs both stages. All input is already resolved into
// memory; nothing in this package touches the host filesystem or the network.
package bootlet
