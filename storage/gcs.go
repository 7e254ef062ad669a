/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package storage moves build input archives in and out of Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/cowdogmoo/cloudbuild-action/errors"
)

// ObjectStore uploads and deletes single objects.
type ObjectStore interface {
	// Upload copies localFile to bucket/key.
	Upload(ctx context.Context, bucket, localFile, key string) error
	// Delete removes bucket/key.
	Delete(ctx context.Context, bucket, key string) error
}

// GCS is an ObjectStore backed by Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

var _ ObjectStore = (*GCS)(nil)

// NewGCS creates a Cloud Storage client. Authentication and endpoint come
// from opts.
func NewGCS(ctx context.Context, opts ...option.ClientOption) (*GCS, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Close releases the underlying client.
func (s *GCS) Close() error {
	return s.client.Close()
}

// Upload copies localFile to bucket/key as a gzip object. A failed copy
// cancels the write so no partial object is committed.
func (s *GCS) Upload(ctx context.Context, bucket, localFile, key string) error {
	detail := fmt.Sprintf("%s to %s/%s", localFile, bucket, key)

	f, err := os.Open(localFile)
	if err != nil {
		return errors.Wrap("upload", detail, err)
	}
	defer func() { _ = f.Close() }()

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(bucket).Object(key).NewWriter(writeCtx)
	w.ContentType = "application/gzip"
	if _, err := io.Copy(w, f); err != nil {
		cancel()
		_ = w.Close()
		return errors.Wrap("upload", detail, err)
	}
	if err := w.Close(); err != nil {
		return errors.Wrap("upload", detail, err)
	}
	return nil
}

// Delete removes bucket/key.
func (s *GCS) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return errors.Wrap("delete", bucket+"/"+key, err)
	}
	return nil
}
