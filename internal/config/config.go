// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config defines the YAML configuration file of an image build.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aibor/bootlet/internal/bootlet"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Default download locations of the auto downloaded sources. systemd-boot is
// not published as plain EFI binary, so it has no default URL and is read
// from the host's systemd-boot installation by default.
const (
	DefaultBusyboxURL     = "https://busybox.net/downloads/binaries/1.35.0-x86_64-linux-musl/busybox"
	DefaultLinuxKernelURL = "https://dl-cdn.alpinelinux.org/alpine/v3.20/releases/x86_64/netboot/vmlinuz-virt"
	DefaultSystemdBootURL = ""

	DefaultSystemdBootPath = "/usr/lib/systemd/boot/efi/systemd-bootx64.efi"
)

const (
	DefaultRootfsSizeMB       = 512
	DefaultExtraKernelCmdline = "quiet"

	minRootfsSizeMB = 1
	maxRootfsSizeMB = 65535

	fileMode = 0o644
)

var (
	ErrInvalid         = errors.New("invalid configuration")
	ErrUnknownType     = errors.New("unknown source type")
	ErrDuplicateTarget = errors.New("duplicate extra file target")
	ErrValueOutOfRange = errors.New("value is outside of range")
	ErrMissingValue    = errors.New("missing value")

	errTrailingDocument = errors.New("more than one YAML document")
)

// SourceType selects how a [FileSource] is resolved.
type SourceType string

const (
	// SourceAutoDownload downloads the file from the source's URL or the
	// built-in default URL.
	SourceAutoDownload SourceType = "auto_download"
	// SourcePath reads the file from the source's local path.
	SourcePath SourceType = "path"
)

// FileSource is a binary input of the build.
type FileSource struct {
	Type SourceType `yaml:"type"`
	Path string     `yaml:"path,omitempty"`
	URL  string     `yaml:"url,omitempty"`
}

// URLOr returns the source's URL, or fallback if none is set.
func (s FileSource) URLOr(fallback string) string {
	if s.URL != "" {
		return s.URL
	}

	return fallback
}

// UnmarshalYAML decodes a source as a whole, so a source given in the file
// replaces the default one instead of being merged into it.
func (s *FileSource) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			switch key := node.Content[idx]; key.Value {
			case "type", "path", "url":
			default:
				return fmt.Errorf("line %d: field %s not found in source",
					key.Line, key.Value)
			}
		}
	}

	type plain FileSource

	var decoded plain

	if err := node.Decode(&decoded); err != nil {
		return err
	}

	*s = FileSource(decoded)

	return nil
}

func (s FileSource) validate(defaultURL string) error {
	switch s.Type {
	case SourceAutoDownload:
		if s.URLOr(defaultURL) == "" {
			return fmt.Errorf("url: %w", ErrMissingValue)
		}

		return nil
	case SourcePath:
		if s.Path == "" {
			return fmt.Errorf("path: %w", ErrMissingValue)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}
}

// ExtraFile is a local file installed into the root filesystem.
type ExtraFile struct {
	// Target is the path in the root filesystem.
	Target string `yaml:"target"`
	// File is the local path of the file.
	File string `yaml:"file"`
}

// Config is the complete build configuration.
type Config struct {
	Busybox            FileSource  `yaml:"busybox"`
	LinuxKernel        FileSource  `yaml:"linux_kernel"`
	SystemdBootBinary  FileSource  `yaml:"systemd_boot_binary"`
	RootfsSizeMB       int         `yaml:"rootfs_size_mb"`
	ExtraKernelCmdline string      `yaml:"extra_kernel_cmdline"`
	ExtraInitScript    string      `yaml:"extra_init_script"`
	ExtraBinFiles      []ExtraFile `yaml:"extra_bin_files"`
	InitrdCompression  string      `yaml:"initrd_compression,omitempty"`
}

// Default returns a new [Config] with default values. Busybox and the kernel
// are auto downloaded, systemd-boot is read from [DefaultSystemdBootPath].
func Default() Config {
	return Config{
		Busybox:     FileSource{Type: SourceAutoDownload},
		LinuxKernel: FileSource{Type: SourceAutoDownload},
		SystemdBootBinary: FileSource{
			Type: SourcePath,
			Path: DefaultSystemdBootPath,
		},
		RootfsSizeMB:       DefaultRootfsSizeMB,
		ExtraKernelCmdline: DefaultExtraKernelCmdline,
		ExtraBinFiles:      []ExtraFile{},
	}
}

// Compression returns the parsed initrd compression.
func (c *Config) Compression() (bootlet.Compression, error) {
	return bootlet.ParseCompression(c.InitrdCompression)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	sources := []struct {
		name       string
		source     FileSource
		defaultURL string
	}{
		{"busybox", c.Busybox, DefaultBusyboxURL},
		{"linux_kernel", c.LinuxKernel, DefaultLinuxKernelURL},
		{"systemd_boot_binary", c.SystemdBootBinary, DefaultSystemdBootURL},
	}

	for _, s := range sources {
		if err := s.source.validate(s.defaultURL); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, s.name, err)
		}
	}

	if c.RootfsSizeMB < minRootfsSizeMB || c.RootfsSizeMB > maxRootfsSizeMB {
		return fmt.Errorf("%w: rootfs_size_mb %d: %w [%d, %d]", ErrInvalid,
			c.RootfsSizeMB, ErrValueOutOfRange, minRootfsSizeMB, maxRootfsSizeMB)
	}

	targets := make(map[string]struct{}, len(c.ExtraBinFiles))

	for idx, file := range c.ExtraBinFiles {
		if file.Target == "" || file.File == "" {
			return fmt.Errorf("%w: extra_bin_files[%d]: %w", ErrInvalid, idx,
				ErrMissingValue)
		}

		target := strings.TrimPrefix(path.Clean("/"+file.Target), "/")
		if _, exists := targets[target]; exists {
			return fmt.Errorf("%w: %w: %s", ErrInvalid, ErrDuplicateTarget,
				file.Target)
		}

		targets[target] = struct{}{}
	}

	if _, err := c.Compression(); err != nil {
		return fmt.Errorf("%w: initrd_compression: %w", ErrInvalid, err)
	}

	return nil
}

// Load reads the configuration file at name from fsys. Fields missing in the
// file keep their default value. Unknown fields are rejected.
func Load(fsys afero.Fs, name string) (Config, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", name, err)
	}

	return cfg, nil
}

// Parse decodes and validates the YAML document in data on top of the
// defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode: %w", ErrInvalid, err)
	}

	if err == nil {
		var extra yaml.Node
		if decoder.Decode(&extra) == nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalid, errTrailingDocument)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes cfg as YAML to the file name in fsys.
func Save(fsys afero.Fs, name string, cfg Config) error {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := afero.WriteFile(fsys, name, buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
