// internal/adapters/out/gcs/helper_repository_gcs.go
package gcs

import (
	"fmt"
	"mime"
	"strings"
)

// publicURL builds https://storage.googleapis.com/<bucket>/<object>.
// objectPath の先頭の "/" は除去
func publicURL(bucket, objectPath string) string {
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", strings.TrimSpace(bucket), obj)
}

// allowedImageTypes are the content types accepted for product images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// normalizeContentType strips parameters and lowercases the media type.
func normalizeContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(ct))
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
