// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/aibor/bootlet/internal/bootlet"
	"github.com/aibor/bootlet/internal/esp"
	"github.com/aibor/bootlet/internal/initramfs"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const initrdPath = "/initrd.img"

func newInspectCommand(cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect IMAGE",
		Short: "List the content of a partition image and its initramfs",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return inspect(cfg.Stdout, cfg.FS, args[0])
		},
	}
}

func inspect(w io.Writer, fsys afero.Fs, name string) error {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	volume, err := esp.Open(data)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	fmt.Fprintf(w, "FAT32 volume %q, %s\n", volume.Label(),
		humanize.IBytes(uint64(volume.Size())))

	err = volume.Walk(func(name string, info fs.FileInfo) error {
		if info.IsDir() {
			fmt.Fprintf(w, "  %s/\n", name)
		} else {
			fmt.Fprintf(w, "  %-40s %10s\n", name,
				humanize.IBytes(uint64(info.Size())))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk image: %w", err)
	}

	initrd, err := volume.ReadFile(initrdPath)
	if errors.Is(err, esp.ErrFileNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read initrd: %w", err)
	}

	return inspectInitrd(w, initrd)
}

func inspectInitrd(w io.Writer, initrd []byte) error {
	compression := bootlet.DetectCompression(initrd)

	archive, err := compression.Decompress(initrd)
	if err != nil {
		return fmt.Errorf("decompress initrd: %w", err)
	}

	entries, err := initramfs.ReadEntries(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("read initrd: %w", err)
	}

	fmt.Fprintf(w, "\nInitramfs %s, compression %s, %d entries\n",
		initrdPath, compression, len(entries))

	for _, entry := range entries {
		mode := fs.FileMode(entry.Mode&0o777) | entry.Type()

		switch entry.Type() {
		case fs.ModeSymlink:
			fmt.Fprintf(w, "  %s %4d %s -> %s\n", mode, entry.Inode,
				entry.Name, entry.Linkname)
		case 0:
			fmt.Fprintf(w, "  %s %4d %s (%s)\n", mode, entry.Inode,
				entry.Name, humanize.IBytes(uint64(entry.Size)))
		default:
			fmt.Fprintf(w, "  %s %4d %s\n", mode, entry.Inode, entry.Name)
		}
	}

	return nil
}
