// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootlet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Spec describes a single [Build].
type Spec struct {
	Rootfs      RootfsSpec
	Compression Compression
	SizeMB      int
	Bootloader  BootloaderSpec
	Kernel      []byte
}

// Build builds the root filesystem archive, compresses it as requested and
// installs it together with the boot loader and the kernel into a new
// partition image. The context is checked between the stages.
func Build(ctx context.Context, spec Spec) ([]byte, error) {
	rootfs, err := BuildRootfs(spec.Rootfs)
	if err != nil {
		return nil, fmt.Errorf("rootfs: %w", err)
	}

	slog.DebugContext(ctx, "Rootfs archive built",
		slog.String("size", humanize.IBytes(uint64(len(rootfs)))),
		slog.Int("extra_files", len(spec.Rootfs.ExtraFiles)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	initrd, err := spec.Compression.Compress(rootfs)
	if err != nil {
		return nil, fmt.Errorf("compress rootfs: %w", err)
	}

	if spec.Compression != CompressionNone && spec.Compression != "" {
		slog.DebugContext(ctx, "Rootfs archive compressed",
			slog.String("compression", string(spec.Compression)),
			slog.String("size", humanize.IBytes(uint64(len(initrd)))),
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	image, err := SetupPartition(PartitionSpec{
		SizeMB:     spec.SizeMB,
		Bootloader: spec.Bootloader,
		Kernel:     spec.Kernel,
		Initrd:     initrd,
	})
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}

	slog.DebugContext(ctx, "Partition image built",
		slog.String("size", humanize.IBytes(uint64(len(image)))),
	)

	return image, nil
}
