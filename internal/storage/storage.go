// Package storage stores binary artifacts (photos, annotations, report files)
// in named buckets and hands out public URLs for them.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Buckets used by the application
const (
	BucketPhotos  = "inspection-photos"
	BucketImages  = "inspection-images"
	BucketReports = "inspection-reports"
)

// Content types of the stored artifacts
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Blob is the contract for artifact storage
type Blob interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PublicURL(bucket, key string) string
	Remove(ctx context.Context, bucket string, keys ...string) error
}

// cleanKey normalises an object key and rejects keys escaping the bucket
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if key == "" || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

// LastSegment returns the file name part of a public URL or key
func LastSegment(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
