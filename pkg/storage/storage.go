// Package storage persists exported archives to a local directory or an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// FileStore stores whole files by name.
//
// Names are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Put writes data under name, replacing any existing file, and returns
	// the file's location as a URI.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// Get reads the named file. A missing file yields an error wrapping
	// fs.ErrNotExist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, name string) (bool, error)
}

// S3Options holds connection settings for s3:// destinations.
type S3Options struct {
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty" json:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty" json:"secret_key,omitempty"`
}

// Open returns the store named by uri.
//
//	file:///var/exports     local directory
//	./exports               local directory (no scheme)
//	s3://bucket/prefix      S3 bucket, optional key prefix
func Open(uri string, s3opts S3Options) (FileStore, error) {
	if !strings.Contains(uri, "://") {
		return NewLocal(uri)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("storage: parse %q: %w", uri, err)
	}
	switch u.Scheme {
	case "file":
		return NewLocal(u.Path)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: %q has no bucket", uri)
		}
		return NewS3(NewS3Client(s3opts), u.Host, strings.Trim(u.Path, "/")), nil
	}
	return nil, fmt.Errorf("storage: unsupported scheme %q", u.Scheme)
}
