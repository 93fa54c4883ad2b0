// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package templates provides the embedded default files of the boot image.
package templates

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed files
var _files embed.FS

//nolint:gochecknoglobals
var _templates = template.Must(template.New("").Option("missingkey=error").
	ParseFS(_files, "files/*.tmpl"))

// InitScript renders the init script of the root filesystem. extraInit is
// inserted before the final shell is executed.
func InitScript(extraInit string) (string, error) {
	return render("init.sh.tmpl", struct{ ExtraInit string }{extraInit})
}

// BootEntry renders the systemd-boot loader entry. extraKernelOpts is appended
// to the kernel command line.
func BootEntry(extraKernelOpts string) (string, error) {
	return render("bootlet.conf.tmpl", struct{ ExtraKernelOpts string }{
		extraKernelOpts,
	})
}

// LoaderConf returns the systemd-boot loader configuration.
func LoaderConf() (string, error) {
	data, err := _files.ReadFile("files/loader.conf")
	if err != nil {
		return "", fmt.Errorf("read loader.conf: %w", err)
	}

	return string(data), nil
}

// BusyboxCommands returns the busybox applets a symlink is created for, in
// installation order. Blank lines are ignored.
func BusyboxCommands() ([]string, error) {
	data, err := _files.ReadFile("files/busybox-list.txt")
	if err != nil {
		return nil, fmt.Errorf("read busybox list: %w", err)
	}

	commands := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			commands = append(commands, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan busybox list: %w", err)
	}

	return commands, nil
}

func render(name string, data any) (string, error) {
	var buf strings.Builder

	if err := _templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	return buf.String(), nil
}
