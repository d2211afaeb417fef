// Package objectstoretest provides an in-memory objectstore.Store for tests.
package objectstoretest

import (
	"context"
	"io"
	"sync"

	"github.com/fkhayef/ensamble/internal/objectstore"
)

// Upload is one recorded call to Fake.Upload
type Upload struct {
	Bucket string
	Path   string
	Body   []byte
	Size   int64
	Opts   objectstore.Options
}

// Fake records uploads and fails them all with Err when it is set
type Fake struct {
	mu      sync.Mutex
	Err     error
	uploads []Upload
}

func (f *Fake) Upload(_ context.Context, bucket, path string, body io.Reader, size int64, opts objectstore.Options) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, Upload{Bucket: bucket, Path: path, Body: data, Size: size, Opts: opts})
	return f.Err
}

func (f *Fake) PublicURL(bucket, path string) string {
	return "https://storage.test/" + bucket + "/" + path
}

// Uploads returns the recorded uploads
func (f *Fake) Uploads() []Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Upload(nil), f.uploads...)
}
