package document

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded file bodies under a storage path
type ObjectStorage interface {
	// Put writes body under key. body is rewound by the caller before the call.
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	// Delete removes key; a missing key is not an error
	Delete(ctx context.Context, key string) error
	// URL returns where clients can fetch key
	URL(key string) string
}
