// Package media handles uploaded user imagery (avatars, cover images). The
// HTTP layer hands it a stream; it stores the object and returns a public URL.
package media

import (
	"context"
	"io"
)

// Uploader persists an uploaded object and returns a publicly reachable URL
// for it. Implementations must be safe for concurrent use.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
