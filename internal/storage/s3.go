// Package storage uploads product images to object storage and hands back
// publicly resolvable URLs for the catalog to reference.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgconfig "github.com/nespinosaoimpa-wq/Olmoind/pkg/config"
)

const keyPrefix = "products/"

type Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

func NewS3Client(ctx context.Context, cfg *pkgconfig.Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}
	if cfg.LocalMode {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.LocalMode && cfg.AssetEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AssetEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewUploader serves uploads into bucket. baseURL is the public prefix the
// bucket resolves under; when empty, the regional S3 URL is used.
func NewUploader(client *s3.Client, bucket, baseURL, region string, logger *zap.Logger) *Uploader {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Uploader{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Upload stores the image under a timestamped unique key and returns its
// public URL. Names never collide, so existing objects are never replaced.
func (u *Uploader) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("%s%d-%s%s", keyPrefix, time.Now().UnixMilli(), uuid.NewString()[:8], extensionFor(contentType))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	url := u.baseURL + "/" + key
	u.logger.Info("Asset uploaded",
		zap.String("key", key),
		zap.String("url", url))
	return url, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
