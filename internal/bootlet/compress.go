// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootlet

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression is the compression applied to the initramfs archive before it
// is copied to the partition.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

//nolint:gochecknoglobals
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// DetectCompression returns the [Compression] data is compressed with, based
// on its magic number.
func DetectCompression(data []byte) Compression {
	if bytes.HasPrefix(data, zstdMagic) {
		return CompressionZstd
	}

	return CompressionNone
}

// ParseCompression parses a [Compression]. The empty string is
// [CompressionNone].
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd:
		return c, nil
	default:
		return "", fmt.Errorf("compression %q: %w", s, ErrUnknownValue)
	}
}

// Compress returns data compressed with c.
func (c Compression) Compress(data []byte) ([]byte, error) {
	switch c {
	case "", CompressionNone:
		return data, nil
	case CompressionZstd:
		// Single threaded, so no encoder goroutines outlive the call.
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer encoder.Close()

		return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	default:
		return nil, fmt.Errorf("compression %q: %w", string(c), ErrUnknownValue)
	}
}

// Decompress returns data decompressed with c.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	switch c {
	case "", CompressionNone:
		return data, nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer decoder.Close()

		decoded, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}

		return decoded, nil
	default:
		return nil, fmt.Errorf("compression %q: %w", string(c), ErrUnknownValue)
	}
}
