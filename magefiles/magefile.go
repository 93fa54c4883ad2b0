// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/magefile/mage/target"
)

const (
	configPath = "config.yaml"
	imagePath  = "bootlet.img"
	ovmfPath   = "/usr/share/ovmf/OVMF.fd"
)

var env map[string]string

func init() {
	env = make(map[string]string)

	gobin, exists := os.LookupEnv("GOBIN")
	if !exists {
		gobin = "./gobin"
	}

	if gobin != "" {
		p, err := filepath.Abs(gobin)
		if err == nil {
			gobin = p
		}
	}

	env["GOBIN"] = gobin
}

func bootletBinary() string {
	return filepath.Join(env["GOBIN"], "bootlet")
}

// Install bootlet to gobin directory.
func Install() error {
	return sh.RunWithV(env, "go", "install", "./cmd/bootlet")
}

// Run all unit tests with coverage.
func Test() error {
	return sh.RunV(
		"go", "test",
		"-race",
		"-timeout", "2m",
		"-cover",
		"-coverprofile", "/tmp/cover.out",
		"./...",
	)
}

// Write the default configuration unless present.
func Config() error {
	mg.Deps(Install)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	return sh.RunV(bootletBinary(), "--write-default-config",
		"--config-path", configPath)
}

// Build the partition image if the configuration changed.
func Image() error {
	mg.Deps(Config)

	mod, err := target.Path(imagePath, configPath)
	if err != nil {
		return err
	}

	if !mod {
		return nil
	}

	return sh.RunV(bootletBinary(), "-v",
		"--config-path", configPath,
		"--output-path", imagePath)
}

// Boot the partition image with QEMU and UEFI firmware. The firmware path
// can be set with OVMF.
func Boot() error {
	mg.Deps(Image)

	firmware := os.Getenv("OVMF")
	if firmware == "" {
		firmware = ovmfPath
	}

	return sh.RunV(
		"qemu-system-x86_64",
		"-machine", "q35",
		"-m", "512",
		"-nographic",
		"-bios", firmware,
		"-drive", fmt.Sprintf("format=raw,file=%s", imagePath),
	)
}

// Remove volatile files.
func Clean() error {
	for _, path := range []string{env["GOBIN"], imagePath} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}

	return nil
}
