// Package backend defines the abstract contract the lifecycle layer
// consumes: an identity service, a path-addressed record store and a
// blob store, reached through one explicitly constructed client.
package backend

import (
	"context"
	"errors"

	"github.com/bantay-barangay/backend/internal/rawvalue"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("account already exists")
	ErrNotAuthenticated   = errors.New("no active session")
	ErrNotFound           = errors.New("path not found")
)

// Service is the backend surface the application depends on. Paths are
// slash-delimited hierarchical keys ("reports/{id}", "users/{id}",
// "reports" for the whole collection).
type Service interface {
	// Authenticate verifies credentials and opens a session, returning
	// the session identifier.
	Authenticate(ctx context.Context, email, password string) (string, error)

	// Register creates a credential pair and opens a session for it.
	Register(ctx context.Context, email, password string) (string, error)

	// EndSession tears down the active session, if any.
	EndSession()

	// CurrentSessionID returns the active session identifier.
	CurrentSessionID() (string, bool)

	// IsAuthenticated reports whether a session is active.
	IsAuthenticated() bool

	// ReadAt returns the record at path, or nil when nothing is stored
	// there. Reading a collection path returns a map keyed by child id.
	ReadAt(ctx context.Context, path string) (rawvalue.Value, error)

	// WriteAt overwrites the record at path in full.
	WriteAt(ctx context.Context, path string, value rawvalue.Value) error

	// UploadBlob stores the payload at path and returns its locator.
	UploadBlob(ctx context.Context, data []byte, path string) (string, error)

	// DownloadBlob fetches the payload stored at path.
	DownloadBlob(ctx context.Context, path string) ([]byte, error)
}
