// Package storage implements the photo upload store on S3-compatible
// object storage. Keys are opaque to the rest of the application; callers
// persist the key and resolve it to a servable URL on demand.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dyilmaz/community-backend/internal/config"
)

const urlExpiry = 15 * time.Minute

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Store(ctx context.Context, cfg config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
	}, nil
}

// Save uploads the photo and returns its storage key. The original filename
// only contributes its extension; the key itself is random.
func (s *S3Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := newStorageKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return key, nil
}

// URL resolves a storage key to a presigned GET URL.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(urlExpiry))
	if err != nil {
		return "", fmt.Errorf("presign photo url: %w", err)
	}
	return req.URL, nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	return err
}

func newStorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("photos/%d/%02d/%v%s", d.Year(), d.Month(), uuid.New(), path.Ext(filename))
}
