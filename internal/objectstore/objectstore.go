// Package objectstore uploads draft assets to a hosted object store and
// resolves their public URLs.
package objectstore

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

const (
	BucketCompanyImages  = "company_images"
	BucketProjectScripts = "project_scripts"
)

// ErrObjectExists is returned when a non-overwriting upload hits an existing object
var ErrObjectExists = errors.New("object already exists")

// Options controls a single upload
type Options struct {
	Overwrite   bool
	ContentType string
}

// Store is the object storage client used by the commit flows
type Store interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, opts Options) error
	PublicURL(bucket, path string) string
}

// escapePath escapes each segment of an object path
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
