// Package objstore is a thin interface over the external object-storage
// service. It issues presigned write URLs, probes object metadata, and
// uploads or deletes objects on behalf of the server. Store-specific
// failures are translated into common.ErrStorageUnavailable.
package objstore

import (
	"context"
	"time"
)

// ObjectInfo is the result of a metadata probe.
type ObjectInfo struct {
	// Exists reports whether an object is present under the key.
	Exists bool
	// Size is the object size in bytes, 0 when the object is absent.
	Size int64
}

// Gateway is the object-store contract used by the upload flows.
type Gateway interface {
	// PresignPut returns a time-limited URL authorizing exactly one PUT of
	// the given content type to the given key.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// Probe checks object existence and size. An absent object yields
	// ObjectInfo{Exists: false} and a nil error.
	Probe(ctx context.Context, key string) (ObjectInfo, error)

	// PublicURL derives the object's public URL without contacting the store.
	PublicURL(key string) string

	// Delete removes the object under key. Absence of the object is not an
	// error.
	Delete(ctx context.Context, key string) error

	// PutBytes uploads the payload synchronously and returns the same public
	// URL a presigned PUT would have produced. Only the fallback upload path
	// uses it.
	PutBytes(ctx context.Context, key, contentType string, data []byte) (string, error)
}
