// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs implements the fs.FS interface using Google Cloud Storage.
package gcs

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/pqcbench/kemperf/storage/fs"
	"google.golang.org/api/option"
)

// impl is an fs.FS backed by Google Cloud Storage.
type impl struct {
	bucket *storage.BucketHandle
}

// NewFS constructs an FS that writes to the provided bucket.
func NewFS(ctx context.Context, bucketName string, opts ...option.ClientOption) (fs.FS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &impl{client.Bucket(bucketName)}, nil
}

// NewWriter returns a Writer for an object in the bucket. The
// "Content-Type" metadata key, if present, sets the object's content
// type; the other keys become object metadata.
func (fs *impl) NewWriter(ctx context.Context, name string, metadata map[string]string) (fs.Writer, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := fs.bucket.Object(name).NewWriter(ctx)
	meta := make(map[string]string)
	for k, v := range metadata {
		if k == "Content-Type" {
			w.ContentType = v
			continue
		}
		meta[k] = v
	}
	if len(meta) > 0 {
		w.Metadata = meta
	}
	return &wrapWriter{Writer: w, cancel: cancel}, nil
}

// wrapWriter cancels an upload by cancelling its context.
type wrapWriter struct {
	*storage.Writer
	cancel context.CancelFunc
}

func (w *wrapWriter) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

func (w *wrapWriter) CloseWithError(error) error {
	w.cancel()
	w.Writer.Close()
	return nil
}
