// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const name = "bootlet"

// IO provides input and output details for the command.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
	// FS is used for all file access. The host filesystem if nil.
	FS afero.Fs
	// HTTPClient is used for downloads. [http.DefaultClient] if nil.
	HTTPClient *http.Client
}

func (cfg IO) withDefaults() IO {
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}

	if cfg.Stderr == nil {
		cfg.Stderr = io.Discard
	}

	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return cfg
}

func newRootCommand(cfg IO) *cobra.Command {
	flags := newFlags()

	root := &cobra.Command{
		Use:   name,
		Short: "Build a bootable FAT32 partition image",
		Long: `Build a single raw FAT32 partition image that boots a Linux kernel with
systemd-boot. The initramfs contains busybox, an init script and optional
extra files. Sources and options are read from a YAML configuration file.

Create a configuration with the defaults:
	bootlet --write-default-config --config-path config.yaml

Build an image:
	bootlet --config-path config.yaml --output-path bootlet.img`,
		Version:       version(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(cfg.Stderr, flags.logLevel())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), flags, cfg)
		},
	}

	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)

	flags.addBuildFlags(root.Flags())
	flags.addLogFlags(root.PersistentFlags())

	root.AddCommand(newInspectCommand(cfg))

	return root
}

func handleRunError(err error) int {
	slog.Error(err.Error())

	return 1
}

// Run is the main entry point for the CLI command. It returns the exit code.
func Run(ctx context.Context, args []string, cfg IO) int {
	cfg = cfg.withDefaults()

	// Until flags are parsed, only warnings and errors are logged.
	setupLogging(cfg.Stderr, slog.LevelWarn)

	root := newRootCommand(cfg)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	return buildInfo.Main.Version
}
