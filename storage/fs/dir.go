// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fs

import (
	"context"
	"os"
	"path/filepath"
)

// DirFS stores files under a local directory. Metadata is discarded.
type DirFS string

// NewWriter creates the directories leading to name and returns a
// Writer to a temporary file that replaces name when closed.
func (dir DirFS) NewWriter(_ context.Context, name string, _ map[string]string) (Writer, error) {
	path := filepath.Join(string(dir), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	return &dirFile{File: f, path: path}, nil
}

type dirFile struct {
	*os.File
	path string
}

func (f *dirFile) Close() error {
	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	if err := os.Rename(f.File.Name(), f.path); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	return nil
}

func (f *dirFile) CloseWithError(error) error {
	f.File.Close()
	return os.Remove(f.File.Name())
}
