package backend

import (
	"context"
	"fmt"
	"strings"
)

// PathStore persists one JSON document per path. List returns the
// direct children of a prefix keyed by their last path segment.
type PathStore interface {
	Get(ctx context.Context, path string) (string, error)
	Set(ctx context.Context, path string, value string) error
	List(ctx context.Context, prefix string) (map[string]string, error)
}

// BlobStore persists opaque payloads addressed the same way.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// ValidatePath rejects keys the hierarchical key space cannot hold:
// empty paths, leading or trailing slashes, empty segments.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			return fmt.Errorf("malformed path %q", path)
		}
	}
	return nil
}

// childKey extracts the child id from a path under prefix, e.g.
// ("reports", "reports/abc") yields "abc".
func childKey(prefix, path string) string {
	return strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
}
