// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package source_test

import (
	"context"
	"io/fs"
	"sync/atomic"
	"testing"

	"github.com/aibor/bootlet/internal/source"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context) ([]byte, error)

func (f resolverFunc) Resolve(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

func (f resolverFunc) String() string {
	return "test source"
}

func static(data string) source.Resolver {
	return resolverFunc(func(_ context.Context) ([]byte, error) {
		return []byte(data), nil
	})
}

func TestLocalFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/boot/bzImage", []byte("KERNEL"), 0o644))

	t.Run("exists", func(t *testing.T) {
		file := &source.LocalFile{FS: fsys, Path: "/boot/bzImage"}

		data, err := file.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []byte("KERNEL"), data)
		assert.Equal(t, "file /boot/bzImage", file.String())
	})

	t.Run("missing", func(t *testing.T) {
		file := &source.LocalFile{FS: fsys, Path: "/boot/missing"}

		_, err := file.Resolve(context.Background())
		require.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestResolveAll(t *testing.T) {
	t.Run("order preserved", func(t *testing.T) {
		results, err := source.ResolveAll(context.Background(), 3,
			static("a"), static("b"), static("c"), static("d"))
		require.NoError(t, err)

		expected := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
		assert.Equal(t, expected, results)
	})

	t.Run("limit respected", func(t *testing.T) {
		var running, maxRunning atomic.Int32

		tracking := resolverFunc(func(_ context.Context) ([]byte, error) {
			current := running.Add(1)
			defer running.Add(-1)

			for {
				seen := maxRunning.Load()
				if current <= seen || maxRunning.CompareAndSwap(seen, current) {
					break
				}
			}

			return []byte("x"), nil
		})

		_, err := source.ResolveAll(context.Background(), 0,
			tracking, tracking, tracking, tracking)
		require.NoError(t, err)
		assert.EqualValues(t, 1, maxRunning.Load())
	})

	t.Run("error", func(t *testing.T) {
		failing := resolverFunc(func(_ context.Context) ([]byte, error) {
			return nil, assert.AnError
		})

		_, err := source.ResolveAll(context.Background(), 2, static("a"), failing)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := source.ResolveAll(context.Background(), 1, static(""))
		require.ErrorIs(t, err, source.ErrEmpty)
	})

	t.Run("none", func(t *testing.T) {
		results, err := source.ResolveAll(context.Background(), 1)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
