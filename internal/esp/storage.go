// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package esp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/diskfs/go-diskfs/backend"
)

var errNoOSFile = errors.New("memory storage has no backing file")

// memStorage is a [backend.Storage] over a fixed-size byte slice. It never
// grows the slice. The first failed write is recorded, so callers can tell
// capacity problems apart from other failures even if the filesystem
// implementation does not wrap the error.
type memStorage struct {
	buf    []byte
	offset int64
	fault  error
}

var (
	_ backend.Storage      = (*memStorage)(nil)
	_ backend.WritableFile = (*memStorage)(nil)
)

func newMemStorage(buf []byte) *memStorage {
	return &memStorage{buf: buf}
}

func (s *memStorage) size() int64 {
	return int64(len(s.buf))
}

// Stat implements [fs.File].
func (s *memStorage) Stat() (fs.FileInfo, error) {
	return storageInfo{size: s.size()}, nil
}

// Read implements [io.Reader].
func (s *memStorage) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.offset)
	s.offset += int64(n)

	return n, err
}

// ReadAt implements [io.ReaderAt].
func (s *memStorage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrIO, off)
	}

	if off >= s.size() {
		return 0, io.EOF
	}

	n := copy(p, s.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// WriteAt implements [io.WriterAt]. Writes that do not fit entirely into the
// buffer are rejected without modifying it.
func (s *memStorage) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, s.record(fmt.Errorf("%w: negative offset %d", ErrIO, off))
	}

	if off+int64(len(p)) > s.size() {
		return 0, s.record(fmt.Errorf(
			"%w: write of %d bytes at offset %d exceeds %d bytes",
			ErrCapacity, len(p), off, s.size()))
	}

	return copy(s.buf[off:], p), nil
}

// Seek implements [io.Seeker].
func (s *memStorage) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.offset + offset
	case io.SeekEnd:
		abs = s.size() + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", ErrIO, whence)
	}

	if abs < 0 {
		return 0, fmt.Errorf("%w: negative position %d", ErrIO, abs)
	}

	s.offset = abs

	return abs, nil
}

// Close implements [io.Closer]. The buffer stays usable.
func (s *memStorage) Close() error {
	return nil
}

// Sys implements [backend.Storage]. There is no OS file behind the buffer.
func (s *memStorage) Sys() (*os.File, error) {
	return nil, errNoOSFile
}

// Writable implements [backend.Storage].
func (s *memStorage) Writable() (backend.WritableFile, error) {
	return s, nil
}

func (s *memStorage) record(err error) error {
	if s.fault == nil {
		s.fault = err
	}

	return err
}

type storageInfo struct {
	size int64
}

func (i storageInfo) Name() string       { return "esp" }
func (i storageInfo) Size() int64        { return i.size }
func (i storageInfo) Mode() fs.FileMode  { return 0o600 }
func (i storageInfo) ModTime() time.Time { return time.Time{} }
func (i storageInfo) IsDir() bool        { return false }
func (i storageInfo) Sys() any           { return nil }
