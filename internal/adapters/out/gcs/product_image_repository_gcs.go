// internal/adapters/out/gcs/product_image_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	"storefront/internal/infra/logging"
)

// ErrUnsupportedImageType is returned for uploads that are not jpeg/png/webp/gif.
var ErrUnsupportedImageType = common.NewError(common.ErrInvalidArgument, "Unsupported image type")

// ProductImageRepositoryGCS stores product images as public objects.
//
// Object layout: products/<productId>/<imageId><ext>
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	log    *logrus.Entry
}

var _ usecase.ProductImageStoragePort = (*ProductImageRepositoryGCS)(nil)

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
		log:    logging.For("product_image_gcs"),
	}
}

// Upload streams r into the bucket and returns the public URL.
func (r *ProductImageRepositoryGCS) Upload(ctx context.Context, objectPath, contentType string, rd io.Reader) (string, error) {
	ct := normalizeContentType(contentType)
	if !allowedImageTypes[ct] {
		return "", ErrUnsupportedImageType
	}
	if r.Client == nil {
		return "", errors.New("ProductImageRepositoryGCS: nil storage client")
	}
	if r.Bucket == "" {
		return "", errors.New("ProductImageRepositoryGCS: bucket is empty")
	}
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" {
		return "", errors.New("ProductImageRepositoryGCS: objectPath is empty")
	}

	w := r.Client.Bucket(r.Bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = ct
	w.CacheControl = "public, max-age=86400"

	n, err := io.Copy(w, rd)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", objectPath, err)
	}

	url := publicURL(r.Bucket, objectPath)
	r.log.Infof("[product_image_gcs] uploaded object=%s bytes=%d", objectPath, n)
	return url, nil
}
