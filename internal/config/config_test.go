// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config_test

import (
	"io/fs"
	"testing"

	"github.com/aibor/bootlet/internal/bootlet"
	"github.com/aibor/bootlet/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, config.SourceAutoDownload, cfg.Busybox.Type)
	assert.Equal(t, config.SourceAutoDownload, cfg.LinuxKernel.Type)
	assert.Equal(t, config.SourcePath, cfg.SystemdBootBinary.Type)
	assert.Equal(t, config.DefaultSystemdBootPath, cfg.SystemdBootBinary.Path)
	assert.Equal(t, 512, cfg.RootfsSizeMB)
	assert.Equal(t, "quiet", cfg.ExtraKernelCmdline)
	assert.Empty(t, cfg.ExtraInitScript)
	assert.Empty(t, cfg.ExtraBinFiles)
	require.NoError(t, cfg.Validate())

	cfg.ExtraBinFiles = append(cfg.ExtraBinFiles, config.ExtraFile{})
	assert.Empty(t, config.Default().ExtraBinFiles, "defaults must not be shared")
}

func TestSaveLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()

	require.NoError(t, config.Save(fsys, "config.yaml", config.Default()))

	cfg, err := config.Load(fsys, "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected func(cfg *config.Config)
	}{
		{
			name:     "empty document",
			input:    "",
			expected: func(_ *config.Config) {},
		},
		{
			name: "full",
			input: `
busybox:
  type: path
  path: ./busybox
linux_kernel:
  type: auto_download
  url: https://example.com/bzImage
systemd_boot_binary:
  type: auto_download
  url: https://example.com/systemd-bootx64.efi
rootfs_size_mb: 64
extra_kernel_cmdline: console=ttyS0
extra_init_script: echo hello
extra_bin_files:
  - target: bin/hello
    file: ./hello
initrd_compression: zstd
`,
			expected: func(cfg *config.Config) {
				cfg.Busybox = config.FileSource{Type: config.SourcePath, Path: "./busybox"}
				cfg.LinuxKernel.URL = "https://example.com/bzImage"
				cfg.SystemdBootBinary = config.FileSource{
					Type: config.SourceAutoDownload,
					URL:  "https://example.com/systemd-bootx64.efi",
				}
				cfg.RootfsSizeMB = 64
				cfg.ExtraKernelCmdline = "console=ttyS0"
				cfg.ExtraInitScript = "echo hello"
				cfg.ExtraBinFiles = []config.ExtraFile{
					{Target: "bin/hello", File: "./hello"},
				}
				cfg.InitrdCompression = "zstd"
			},
		},
		{
			name:  "explicit empty kernel cmdline",
			input: `extra_kernel_cmdline: ""`,
			expected: func(cfg *config.Config) {
				cfg.ExtraKernelCmdline = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := config.Default()
			tt.expected(&expected)

			actual, err := config.Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectedErr error
	}{
		{
			name:        "unknown field",
			input:       "rootfs_size: 64",
			expectedErr: config.ErrInvalid,
		},
		{
			name:        "unknown source type",
			input:       "busybox: {type: ftp}",
			expectedErr: config.ErrUnknownType,
		},
		{
			name:        "path without path",
			input:       "linux_kernel: {type: path}",
			expectedErr: config.ErrMissingValue,
		},
		{
			name:        "auto download without any url",
			input:       "systemd_boot_binary: {type: auto_download}",
			expectedErr: config.ErrMissingValue,
		},
		{
			name:        "unknown source field",
			input:       "busybox: {type: path, path: ./busybox, sha256: abc}",
			expectedErr: config.ErrInvalid,
		},
		{
			name:        "size zero",
			input:       "rootfs_size_mb: 0",
			expectedErr: config.ErrValueOutOfRange,
		},
		{
			name:        "size too large",
			input:       "rootfs_size_mb: 65536",
			expectedErr: config.ErrValueOutOfRange,
		},
		{
			name: "duplicate extra targets",
			input: `extra_bin_files:
  - {target: bin/a, file: ./a}
  - {target: /bin/a, file: ./b}`,
			expectedErr: config.ErrDuplicateTarget,
		},
		{
			name:        "extra file without target",
			input:       "extra_bin_files: [{file: ./a}]",
			expectedErr: config.ErrMissingValue,
		},
		{
			name:        "unknown compression",
			input:       "initrd_compression: lz4",
			expectedErr: bootlet.ErrUnknownValue,
		},
		{
			name:        "malformed",
			input:       "busybox: [",
			expectedErr: config.ErrInvalid,
		},
		{
			name:        "multiple documents",
			input:       "rootfs_size_mb: 64\n---\nrootfs_size_mb: 32\n",
			expectedErr: config.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.input))
			require.ErrorIs(t, err, tt.expectedErr)
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load(afero.NewMemMapFs(), "config.yaml")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseReplacesDefaultSource(t *testing.T) {
	cfg, err := config.Parse([]byte("systemd_boot_binary: {type: path, path: ./sd.efi}"))
	require.NoError(t, err)
	assert.Equal(t, config.FileSource{Type: config.SourcePath, Path: "./sd.efi"},
		cfg.SystemdBootBinary)

	cfg, err = config.Parse([]byte("systemd_boot_binary: {type: auto_download, url: https://example.com/sd.efi}"))
	require.NoError(t, err)
	assert.Empty(t, cfg.SystemdBootBinary.Path, "default path must not be kept")
}

func TestFileSourceURLOr(t *testing.T) {
	source := config.FileSource{Type: config.SourceAutoDownload}
	assert.Equal(t, "fallback", source.URLOr("fallback"))

	source.URL = "https://example.com"
	assert.Equal(t, "https://example.com", source.URLOr("fallback"))
}
