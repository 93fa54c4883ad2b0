// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"fmt"
)

const (
	// SectorSize is the logical sector size of all volumes.
	SectorSize = 512

	// MinSize is the smallest buffer size [Format] accepts. Smaller volumes
	// can not hold the 65,525 clusters required for FAT32.
	MinSize = 33 * 1024 * 1024

	reservedSectors = 32
	fatCount        = 2
	fatEntrySize    = 4
)

const (
	mib = 1024 * 1024
	gib = 1024 * mib
)

// ClusterSize returns the cluster size used for a volume of the given size,
// following the default FAT32 cluster size table.
func ClusterSize(size int64) int64 {
	switch {
	case size <= 260*mib:
		return SectorSize
	case size <= 8*gib:
		return 8 * SectorSize
	case size <= 16*gib:
		return 16 * SectorSize
	case size <= 32*gib:
		return 32 * SectorSize
	default:
		return 64 * SectorSize
	}
}

// CheckCapacity estimates if a freshly formatted volume of the given size can
// hold dirs directories besides the root directory and files of the given
// sizes. Every directory is assumed to fit into a single cluster. Returns
// [ErrCapacity] if the content does not fit.
func CheckCapacity(size int64, dirs int, fileSizes ...int64) error {
	if size < MinSize {
		return fmt.Errorf("%w: %d bytes is below minimum of %d bytes",
			ErrCapacity, size, MinSize)
	}

	clusterSize := ClusterSize(size)
	available := dataClusters(size, clusterSize)

	// Root directory plus one cluster per directory.
	required := int64(1 + dirs)

	for _, fileSize := range fileSizes {
		required += (fileSize + clusterSize - 1) / clusterSize
	}

	if required > available {
		return fmt.Errorf("%w: %d clusters of %d bytes required, %d available",
			ErrCapacity, required, clusterSize, available)
	}

	return nil
}

// dataClusters returns the number of clusters in the data region. Every FAT
// is sized for all sectors behind the reserved sectors, like the formatter
// does, so the data region starts after those.
func dataClusters(size, clusterSize int64) int64 {
	sectorsPerCluster := clusterSize / SectorSize
	fatSectors := (size/SectorSize - reservedSectors) / sectorsPerCluster /
		(SectorSize / fatEntrySize)
	dataStart := (reservedSectors + fatCount*fatSectors) * SectorSize

	return (size - dataStart) / clusterSize
}
