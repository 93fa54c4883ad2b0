// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootlet

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/aibor/bootlet/internal/initramfs"
)

const (
	binDir        = "bin"
	busyboxPath   = "bin/busybox"
	busyboxTarget = "busybox"
	initPath      = "/init"
)

// BaseDirectories are created in this order before anything else. The name
// "syc" is what the images built so far contain. The default init script
// creates "/sys" itself before mounting sysfs.
//
//nolint:gochecknoglobals
var BaseDirectories = []string{"bin", "etc", "proc", "syc", "dev", "tmp"}

type rootfsState int

const (
	rootfsNotStarted rootfsState = iota
	rootfsBaseLaidOut
	rootfsBusyboxInstalled
	rootfsInitInstalled
	rootfsExtrasInstalled
	rootfsFinalized
	rootfsFailed
)

func (s rootfsState) String() string {
	switch s {
	case rootfsNotStarted:
		return "not started"
	case rootfsBaseLaidOut:
		return "base laid out"
	case rootfsBusyboxInstalled:
		return "busybox installed"
	case rootfsInitInstalled:
		return "init installed"
	case rootfsExtrasInstalled:
		return "extras installed"
	case rootfsFinalized:
		return "finalized"
	case rootfsFailed:
		return "failed"
	default:
		return fmt.Sprintf("rootfsState(%d)", int(s))
	}
}

// Rootfs assembles the initramfs archive.
//
// The steps must be called in order: [Rootfs.CreateBase],
// [Rootfs.InstallBusybox], [Rootfs.InstallInit], any number of
// [Rootfs.InstallExtraFile] and finally [Rootfs.Finalize]. Calling a step out
// of order fails with [ErrInvalidState]. Once a step failed, all further steps
// fail.
type Rootfs struct {
	archive *initramfs.Archive
	state   rootfsState
}

// NewRootfs creates a new empty [Rootfs].
func NewRootfs() *Rootfs {
	return &Rootfs{
		archive: initramfs.NewArchive(),
		state:   rootfsNotStarted,
	}
}

// CreateBase adds the [BaseDirectories].
func (r *Rootfs) CreateBase() error {
	return r.step("create base", rootfsBaseLaidOut, func() error {
		for _, dir := range BaseDirectories {
			if err := r.archive.AddDirectory(dir); err != nil {
				return err
			}
		}

		return nil
	}, rootfsNotStarted)
}

// InstallBusybox adds the busybox binary and a symlink for each command in
// the bin directory, in the given order.
func (r *Rootfs) InstallBusybox(binary []byte, commands []string) error {
	return r.step("install busybox", rootfsBusyboxInstalled, func() error {
		if err := r.archive.AddFile(busyboxPath, binary); err != nil {
			return err
		}

		for _, command := range commands {
			if command == "" || strings.Contains(command, "/") {
				return fmt.Errorf("%w: command name %q", ErrEncoding, command)
			}

			name := path.Join(binDir, command)
			if err := r.archive.AddSymlink(name, busyboxTarget); err != nil {
				return err
			}
		}

		return nil
	}, rootfsBaseLaidOut)
}

// InstallInit adds the init script as "/init".
func (r *Rootfs) InstallInit(script string) error {
	return r.step("install init", rootfsInitInstalled, func() error {
		return r.archive.AddFile(initPath, []byte(script))
	}, rootfsBusyboxInstalled)
}

// InstallExtraFile adds a regular file at target. Missing parent directories
// are added first.
func (r *Rootfs) InstallExtraFile(target string, data []byte) error {
	return r.step("install extra file", rootfsExtrasInstalled, func() error {
		if err := r.mkdirAll(path.Dir(target)); err != nil {
			return err
		}

		return r.archive.AddFile(target, data)
	}, rootfsInitInstalled, rootfsExtrasInstalled)
}

// Finalize finishes the archive and returns it.
func (r *Rootfs) Finalize() ([]byte, error) {
	var data []byte

	err := r.step("finalize", rootfsFinalized, func() error {
		var err error

		data, err = r.archive.Finish()

		return err
	}, rootfsInitInstalled, rootfsExtrasInstalled)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// mkdirAll adds directory entries for dir and all its parents that are not
// in the archive yet, outermost first.
func (r *Rootfs) mkdirAll(dir string) error {
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir == "" {
		return nil
	}

	current := ""

	for _, elem := range strings.Split(dir, "/") {
		current = path.Join(current, elem)

		if r.archive.Contains(current) {
			continue
		}

		if err := r.archive.AddDirectory(current); err != nil {
			return err
		}
	}

	return nil
}

func (r *Rootfs) step(
	op string,
	next rootfsState,
	fn func() error,
	allowed ...rootfsState,
) error {
	if !slices.Contains(allowed, r.state) {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidState, r.state)
	}

	if err := fn(); err != nil {
		r.state = rootfsFailed
		return fmt.Errorf("%s: %w", op, err)
	}

	r.state = next

	return nil
}

// ExtraFile is an additional file for the root filesystem.
type ExtraFile struct {
	// Path is the target path in the root filesystem.
	Path string
	Data []byte
}

// RootfsSpec describes the content of the root filesystem.
type RootfsSpec struct {
	Busybox         []byte
	BusyboxCommands []string
	InitScript      string
	ExtraFiles      []ExtraFile
}

// BuildRootfs runs all [Rootfs] steps for the given [RootfsSpec] and returns
// the finished archive. The busybox binary must not be empty.
func BuildRootfs(spec RootfsSpec) ([]byte, error) {
	if len(spec.Busybox) == 0 {
		return nil, fmt.Errorf("busybox: %w", ErrEmptyInput)
	}

	rootfs := NewRootfs()

	if err := rootfs.CreateBase(); err != nil {
		return nil, err
	}

	if err := rootfs.InstallBusybox(spec.Busybox, spec.BusyboxCommands); err != nil {
		return nil, err
	}

	if err := rootfs.InstallInit(spec.InitScript); err != nil {
		return nil, err
	}

	for _, file := range spec.ExtraFiles {
		if err := rootfs.InstallExtraFile(file.Path, file.Data); err != nil {
			return nil, err
		}
	}

	return rootfs.Finalize()
}
