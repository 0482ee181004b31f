// Package storage uploads menu images to Cloudflare R2 through its S3 API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/config"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PutObjectAPI is the subset of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type R2Client struct {
	client  PutObjectAPI
	bucket  string
	baseURL string
}

// NewR2Client builds an S3 client pointed at the R2 endpoint in cfg.
func NewR2Client(ctx context.Context, cfg config.R2Config) (*R2Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})
	return NewR2ClientWithAPI(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

// NewR2ClientWithAPI wraps an existing S3 API client.
func NewR2ClientWithAPI(api PutObjectAPI, bucket, baseURL string) *R2Client {
	return &R2Client{client: api, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// UploadImage stores an item image under menu/<itemID>/ and returns its
// public URL. Each upload gets a fresh object name so caches never serve a
// stale image.
func (r *R2Client) UploadImage(ctx context.Context, itemID string, body io.Reader, contentType string) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}
	key := path.Join("menu", itemID, uuid.NewString()+ext)

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", r.baseURL, key), nil
}
