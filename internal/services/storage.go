package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// StorageService issues short-lived signed URLs for direct-to-bucket image
// uploads, so image bytes never pass through this backend.
type StorageService struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewStorageService initializes the Firebase app and resolves the upload
// bucket.
func NewStorageService(ctx context.Context, credPath, bucketName string) (*StorageService, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("resolve bucket: %w", err)
	}
	return &StorageService{bucket: bucket, bucketName: bucketName}, nil
}

// SignedUpload is a one-shot upload grant plus the URL the object will be
// served from afterwards.
type SignedUpload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Pathname  string `json:"pathname"`
}

// SignUpload validates the content type and returns a signed PUT URL valid
// for 15 minutes. A random suffix keeps concurrent uploads from colliding.
func (s *StorageService) SignUpload(pathname, contentType string) (*SignedUpload, error) {
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		return nil, NewValidationError("content type must be image/jpeg, image/png or image/webp")
	}

	base := strings.TrimSuffix(path.Base(pathname), path.Ext(pathname))
	if base == "" || base == "." {
		base = "upload"
	}
	object := fmt.Sprintf("posts/%s-%s%s", Slugify(base), uuid.NewString()[:8], ext)

	url, err := s.bucket.SignedURL(object, &storage.SignedURLOptions{
		Method:      "PUT",
		Expires:     time.Now().Add(15 * time.Minute),
		ContentType: contentType,
		Scheme:      storage.SigningSchemeV4,
	})
	if err != nil {
		return nil, fmt.Errorf("sign upload url: %w", err)
	}

	return &SignedUpload{
		UploadURL: url,
		PublicURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, object),
		Pathname:  object,
	}, nil
}
