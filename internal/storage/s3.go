package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds configuration for S3Store
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (MinIO, Supabase S3, LocalStack)
	Prefix   string // Optional key prefix
	// PublicURL is the base URL objects are served from. Derived from the endpoint when empty.
	PublicURL string
}

// S3Store keeps every logical bucket under its own key prefix of one S3 bucket
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Store creates an S3-backed blob store
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    prefix,
		publicURL: publicURL,
	}, nil
}

func (s *S3Store) objectKey(bucket, key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return s.prefix + bucket + "/" + k, nil
}

// Upload writes data under bucket/key, replacing any existing object
func (s *S3Store) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	objectKey, err := s.objectKey(bucket, key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s failed: %w", objectKey, err)
	}
	return nil
}

// PublicURL returns the URL the object is served from
func (s *S3Store) PublicURL(bucket, key string) string {
	objectKey, err := s.objectKey(bucket, key)
	if err != nil {
		return ""
	}
	return s.publicURL + "/" + objectKey
}

// Remove deletes the given keys, continuing past individual failures
func (s *S3Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	var errs []error
	for _, key := range keys {
		objectKey, err := s.objectKey(bucket, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("s3 delete %s failed: %w", objectKey, err))
		}
	}
	return errors.Join(errs...)
}
