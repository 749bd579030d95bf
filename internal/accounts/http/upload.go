package http

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tubeworks/accounts/internal/accounts/media"
	"github.com/tubeworks/accounts/pkg/idx"
)

// maxMultipartMemory bounds how much of a multipart body is buffered in
// memory before spilling to disk.
const maxMultipartMemory = 10 << 20 // 10 MiB

// uploadFormFile streams a multipart file field to the object store and
// returns its public URL. A missing field surfaces as http.ErrMissingFile so
// callers can decide whether the field was required.
func uploadFormFile(ctx context.Context, up media.Uploader, r *http.Request, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := prefix + "/" + idx.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	return up.Upload(ctx, key, file, header.Size, contentType)
}
