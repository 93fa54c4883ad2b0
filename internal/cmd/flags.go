// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"log/slog"

	"github.com/spf13/pflag"
)

const (
	defaultConfigPath = "config.yaml"

	parallelDownloadsDefault = 1
	parallelDownloadsMin     = 1
	parallelDownloadsMax     = 16
)

type flags struct {
	configPath         string
	outputPath         string
	writeDefaultConfig bool
	parallelDownloads  int

	debug   bool
	verbose bool
}

func newFlags() *flags {
	return &flags{
		configPath:        defaultConfigPath,
		parallelDownloads: parallelDownloadsDefault,
	}
}

func (f *flags) addBuildFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(
		&f.configPath,
		"config-path",
		"c",
		f.configPath,
		"configuration file to read, or to write with --write-default-config",
	)

	flagSet.StringVarP(
		&f.outputPath,
		"output-path",
		"o",
		f.outputPath,
		"file to write the partition image to",
	)

	flagSet.BoolVar(
		&f.writeDefaultConfig,
		"write-default-config",
		f.writeDefaultConfig,
		"write the default configuration to --config-path and exit",
	)

	flagSet.Var(
		&limitedIntValue{
			Value: &f.parallelDownloads,
			min:   parallelDownloadsMin,
			max:   parallelDownloadsMax,
		},
		"parallel-downloads",
		"number of sources resolved at the same time. Progress bars are "+
			"only shown if 1",
	)
}

func (f *flags) addLogFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVarP(
		&f.verbose,
		"verbose",
		"v",
		f.verbose,
		"enable informational output",
	)
}

func (f *flags) logLevel() slog.Level {
	switch {
	case f.debug:
		return slog.LevelDebug
	case f.verbose:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func (f *flags) showProgress() bool {
	return f.parallelDownloads == 1
}
