// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootlet

import (
	"fmt"
	"slices"

	"github.com/aibor/bootlet/internal/esp"
)

const (
	MinPartitionSizeMB = 1
	MaxPartitionSizeMB = 65535

	// VolumeLabel is the FAT32 label of all partitions.
	VolumeLabel = "BOOTLET"

	bytesPerMB = 1024 * 1024
)

// Boot layout. Directories are created in this order.
const (
	efiDir     = "EFI"
	efiBootDir = "BOOT"
	systemdDir = "systemd"
	loaderDir  = "loader"
	entriesDir = "entries"

	fallbackLoaderName = "BOOTX64.EFI"
	systemdLoaderName  = "systemd-bootx64.efi"
	loaderConfName     = "loader.conf"
	entryConfName      = "bootlet.conf"
	kernelName         = "bzImage"
	initrdName         = "initrd.img"

	layoutDirCount = 5
)

type partitionState int

const (
	partitionAllocated partitionState = iota
	partitionFormatted
	partitionBootloaderInstalled
	partitionKernelCopied
	partitionInitrdCopied
	partitionComplete
	partitionFailed
)

func (s partitionState) String() string {
	switch s {
	case partitionAllocated:
		return "allocated"
	case partitionFormatted:
		return "formatted"
	case partitionBootloaderInstalled:
		return "bootloader installed"
	case partitionKernelCopied:
		return "kernel copied"
	case partitionInitrdCopied:
		return "initrd copied"
	case partitionComplete:
		return "complete"
	case partitionFailed:
		return "failed"
	default:
		return fmt.Sprintf("partitionState(%d)", int(s))
	}
}

// BootloaderSpec is the systemd-boot installation.
type BootloaderSpec struct {
	// Binary is the systemd-boot EFI binary.
	Binary []byte
	// LoaderConf is the content of loader/loader.conf.
	LoaderConf string
	// EntryConf is the content of loader/entries/bootlet.conf.
	EntryConf string
}

// Partition assembles the FAT32 boot partition.
//
// The steps must be called in order: [Partition.Format],
// [Partition.InstallBootloader], [Partition.CopyKernel],
// [Partition.CopyInitrd] and finally [Partition.Image]. Calling a step out of
// order fails with [ErrInvalidState]. Once a step failed, all further steps
// fail.
type Partition struct {
	buf    []byte
	volume *esp.Volume
	state  partitionState
}

// AllocatePartition allocates a zeroed partition buffer of sizeMB mebibytes.
func AllocatePartition(sizeMB int) (*Partition, error) {
	if err := checkSizeMB(sizeMB); err != nil {
		return nil, err
	}

	return &Partition{
		buf:   make([]byte, sizeMB*bytesPerMB),
		state: partitionAllocated,
	}, nil
}

// Size returns the size of the partition in bytes.
func (p *Partition) Size() int64 {
	return int64(len(p.buf))
}

// Format formats the buffer in place as FAT32 with [VolumeLabel].
func (p *Partition) Format() error {
	return p.step("format", partitionFormatted, func() error {
		volume, err := esp.Format(p.buf, VolumeLabel)
		if err != nil {
			return err
		}

		p.volume = volume

		return nil
	}, partitionAllocated)
}

// InstallBootloader creates the EFI and loader directories and installs the
// boot loader at the fallback path and the systemd-boot path, together with
// its configuration.
func (p *Partition) InstallBootloader(spec BootloaderSpec) error {
	return p.step("install bootloader", partitionBootloaderInstalled, func() error {
		root := p.volume.Root()

		efi, err := root.CreateDirectory(efiDir)
		if err != nil {
			return err
		}

		efiBoot, err := efi.CreateDirectory(efiBootDir)
		if err != nil {
			return err
		}

		systemd, err := efi.CreateDirectory(systemdDir)
		if err != nil {
			return err
		}

		loader, err := root.CreateDirectory(loaderDir)
		if err != nil {
			return err
		}

		entries, err := loader.CreateDirectory(entriesDir)
		if err != nil {
			return err
		}

		files := []struct {
			dir  *esp.Dir
			name string
			data []byte
		}{
			{efiBoot, fallbackLoaderName, spec.Binary},
			{systemd, systemdLoaderName, spec.Binary},
			{loader, loaderConfName, []byte(spec.LoaderConf)},
			{entries, entryConfName, []byte(spec.EntryConf)},
		}

		for _, file := range files {
			if err := writeFile(file.dir, file.name, file.data); err != nil {
				return err
			}
		}

		return nil
	}, partitionFormatted)
}

// CopyKernel writes the kernel image to the root directory.
func (p *Partition) CopyKernel(data []byte) error {
	return p.step("copy kernel", partitionKernelCopied, func() error {
		return writeFile(p.volume.Root(), kernelName, data)
	}, partitionBootloaderInstalled)
}

// CopyInitrd writes the initramfs to the root directory.
func (p *Partition) CopyInitrd(data []byte) error {
	return p.step("copy initrd", partitionInitrdCopied, func() error {
		return writeFile(p.volume.Root(), initrdName, data)
	}, partitionKernelCopied)
}

// Image returns the complete partition image.
func (p *Partition) Image() ([]byte, error) {
	var image []byte

	err := p.step("image", partitionComplete, func() error {
		var err error

		image, err = p.volume.Bytes()

		return err
	}, partitionInitrdCopied)
	if err != nil {
		return nil, err
	}

	return image, nil
}

func (p *Partition) step(
	op string,
	next partitionState,
	fn func() error,
	allowed ...partitionState,
) error {
	if !slices.Contains(allowed, p.state) {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidState, p.state)
	}

	if err := fn(); err != nil {
		p.state = partitionFailed
		return fmt.Errorf("%s: %w", op, err)
	}

	p.state = next

	return nil
}

// writeFile writes data to a new file name in dir. The file is closed on all
// paths.
func writeFile(dir *esp.Dir, name string, data []byte) (err error) {
	file, err := dir.CreateFile(name)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := file.Close()
		if err == nil {
			err = closeErr
		}
	}()

	if _, err := file.Write(data); err != nil {
		return err
	}

	return nil
}

// PartitionSpec describes the content of the boot partition.
type PartitionSpec struct {
	SizeMB     int
	Bootloader BootloaderSpec
	Kernel     []byte
	Initrd     []byte
}

// CheckPartitionCapacity fails with [ErrCapacity] if the content of spec does
// not fit into a partition of spec.SizeMB.
func CheckPartitionCapacity(spec PartitionSpec) error {
	if err := checkSizeMB(spec.SizeMB); err != nil {
		return err
	}

	bootloaderSize := int64(len(spec.Bootloader.Binary))

	err := esp.CheckCapacity(
		int64(spec.SizeMB)*bytesPerMB,
		layoutDirCount,
		bootloaderSize,
		bootloaderSize,
		int64(len(spec.Bootloader.LoaderConf)),
		int64(len(spec.Bootloader.EntryConf)),
		int64(len(spec.Kernel)),
		int64(len(spec.Initrd)),
	)
	if err != nil {
		return fmt.Errorf("partition of %d MB: %w", spec.SizeMB, err)
	}

	return nil
}

// SetupPartition checks the capacity and runs all [Partition] steps for the
// given [PartitionSpec]. The boot loader and the kernel must not be empty.
func SetupPartition(spec PartitionSpec) ([]byte, error) {
	if len(spec.Bootloader.Binary) == 0 {
		return nil, fmt.Errorf("bootloader: %w", ErrEmptyInput)
	}

	if len(spec.Kernel) == 0 {
		return nil, fmt.Errorf("kernel: %w", ErrEmptyInput)
	}

	if err := CheckPartitionCapacity(spec); err != nil {
		return nil, err
	}

	partition, err := AllocatePartition(spec.SizeMB)
	if err != nil {
		return nil, err
	}

	if err := partition.Format(); err != nil {
		return nil, err
	}

	if err := partition.InstallBootloader(spec.Bootloader); err != nil {
		return nil, err
	}

	if err := partition.CopyKernel(spec.Kernel); err != nil {
		return nil, err
	}

	if err := partition.CopyInitrd(spec.Initrd); err != nil {
		return nil, err
	}

	return partition.Image()
}

func checkSizeMB(sizeMB int) error {
	if sizeMB < MinPartitionSizeMB || sizeMB > MaxPartitionSizeMB {
		return fmt.Errorf("partition size %d MB: %w [%d, %d]",
			sizeMB, ErrValueOutOfRange, MinPartitionSizeMB, MaxPartitionSizeMB)
	}

	return nil
}
