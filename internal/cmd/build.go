// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aibor/bootlet/internal/bootlet"
	"github.com/aibor/bootlet/internal/config"
	"github.com/aibor/bootlet/internal/source"
	"github.com/aibor/bootlet/internal/templates"
	"github.com/dustin/go-humanize"
)

func runBuild(ctx context.Context, flags *flags, cfg IO) error {
	if flags.writeDefaultConfig {
		err := config.Save(cfg.FS, flags.configPath, config.Default())
		if err != nil {
			return err
		}

		fmt.Fprintf(cfg.Stdout, "Default configuration written to %s\n",
			flags.configPath)

		return nil
	}

	if flags.outputPath == "" {
		return ErrMissingOutput
	}

	conf, err := config.Load(cfg.FS, flags.configPath)
	if err != nil {
		return err
	}

	err = Validate(cfg.FS, conf)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	spec, err := newSpec(ctx, conf, flags, cfg)
	if err != nil {
		return err
	}

	image, err := bootlet.Build(ctx, spec)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	err = writeOutput(cfg.FS, flags.outputPath, image)
	if err != nil {
		return err
	}

	slog.Info("Partition image written",
		slog.String("path", flags.outputPath),
		slog.String("size", humanize.IBytes(uint64(len(image)))),
	)

	fmt.Fprintf(cfg.Stdout, "Partition image written to %s\n", flags.outputPath)

	return nil
}

// newSpec resolves all sources and renders the templates of the
// configuration into a [bootlet.Spec].
func newSpec(
	ctx context.Context,
	conf config.Config,
	flags *flags,
	cfg IO,
) (bootlet.Spec, error) {
	var progress io.Writer
	if flags.showProgress() {
		progress = cfg.Stderr
	}

	resolverFor := func(src config.FileSource, defaultURL string) source.Resolver {
		if src.Type == config.SourcePath {
			return &source.LocalFile{FS: cfg.FS, Path: src.Path}
		}

		return &source.Download{
			URL:      src.URLOr(defaultURL),
			Client:   cfg.HTTPClient,
			Progress: progress,
		}
	}

	resolvers := []source.Resolver{
		resolverFor(conf.Busybox, config.DefaultBusyboxURL),
		resolverFor(conf.LinuxKernel, config.DefaultLinuxKernelURL),
		resolverFor(conf.SystemdBootBinary, config.DefaultSystemdBootURL),
	}

	for _, file := range conf.ExtraBinFiles {
		resolvers = append(resolvers, &source.LocalFile{FS: cfg.FS, Path: file.File})
	}

	data, err := source.ResolveAll(ctx, flags.parallelDownloads, resolvers...)
	if err != nil {
		return bootlet.Spec{}, fmt.Errorf("sources: %w", err)
	}

	extraFiles := make([]bootlet.ExtraFile, 0, len(conf.ExtraBinFiles))
	for idx, file := range conf.ExtraBinFiles {
		extraFiles = append(extraFiles, bootlet.ExtraFile{
			Path: file.Target,
			Data: data[3+idx],
		})
	}

	spec := bootlet.Spec{
		Rootfs: bootlet.RootfsSpec{
			Busybox:    data[0],
			ExtraFiles: extraFiles,
		},
		SizeMB:     conf.RootfsSizeMB,
		Bootloader: bootlet.BootloaderSpec{Binary: data[2]},
		Kernel:     data[1],
	}

	if err := renderTemplates(conf, &spec); err != nil {
		return bootlet.Spec{}, fmt.Errorf("templates: %w", err)
	}

	spec.Compression, err = conf.Compression()
	if err != nil {
		return bootlet.Spec{}, err
	}

	return spec, nil
}

func renderTemplates(conf config.Config, spec *bootlet.Spec) error {
	var err error

	spec.Rootfs.BusyboxCommands, err = templates.BusyboxCommands()
	if err != nil {
		return err
	}

	spec.Rootfs.InitScript, err = templates.InitScript(conf.ExtraInitScript)
	if err != nil {
		return err
	}

	spec.Bootloader.LoaderConf, err = templates.LoaderConf()
	if err != nil {
		return err
	}

	spec.Bootloader.EntryConf, err = templates.BootEntry(conf.ExtraKernelCmdline)
	if err != nil {
		return err
	}

	return nil
}
