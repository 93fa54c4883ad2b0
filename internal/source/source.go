// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

var (
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	ErrEmpty      = errors.New("source is empty")
)

// Resolver resolves a source into its content.
type Resolver interface {
	Resolve(ctx context.Context) ([]byte, error)
	// String describes the source for messages.
	String() string
}

// LocalFile is a [Resolver] reading a file from a filesystem.
type LocalFile struct {
	FS   afero.Fs
	Path string
}

// Resolve reads the file.
func (f *LocalFile) Resolve(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(f.FS, f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	return data, nil
}

func (f *LocalFile) String() string {
	return "file " + f.Path
}

// ResolveAll resolves all sources concurrently, with at most limit sources
// at the same time. A limit lower than 1 means 1. The results are in the
// order of the sources. Resolution stops at the first error. Empty results
// fail with [ErrEmpty].
func ResolveAll(ctx context.Context, limit int, sources ...Resolver) ([][]byte, error) {
	results := make([][]byte, len(sources))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(limit, 1))

	for idx, source := range sources {
		group.Go(func() error {
			data, err := source.Resolve(ctx)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", source, err)
			}

			if len(data) == 0 {
				return fmt.Errorf("resolve %s: %w", source, ErrEmpty)
			}

			results[idx] = data

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
