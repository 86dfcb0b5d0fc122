package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob not found")

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	SignedURL(ctx context.Context, key string) (string, error) // fs returns "file://..." for dev
}

// cleanKey normalizes a slash-separated key and rejects ones escaping the
// store root.
func cleanKey(key string) (string, error) {
	slashed := strings.ReplaceAll(key, "\\", "/")
	k := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if k == "" || k == "." {
		return "", errors.New("empty key")
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", errors.New("invalid key")
		}
	}
	return k, nil
}

// ReportKey is where a learner's rendered result for one attempt lives.
func ReportKey(userID, setID, attemptID string) string {
	return path.Join("reports", userID, setID, attemptID+".html")
}
