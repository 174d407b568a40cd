package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tutor-hub/internal/config"
)

// Uploader recibe un stream y devuelve la URL publica del objeto.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error)
}

// S3Uploader sube archivos a un bucket S3 (o compatible).
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	endpoint  string
	useSSL    bool
}

func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	if cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 bucket and credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(normalizeEndpoint(cfg.S3Endpoint, cfg.S3UseSSL))
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: cfg.S3PublicURL,
		endpoint:  cfg.S3Endpoint,
		useSSL:    cfg.S3UseSSL,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := strings.TrimPrefix(path.Join(folder, filename), "/")
	if key == "" {
		return "", fmt.Errorf("file key is required")
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", err
	}
	return u.objectURL(key), nil
}

func (u *S3Uploader) objectURL(key string) string {
	base := strings.TrimSuffix(u.publicURL, "/")
	if base == "" {
		base = buildBaseURL(u.endpoint, u.bucket, u.useSSL)
	}
	return base + "/" + key
}

func normalizeEndpoint(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint
}

func buildBaseURL(endpoint, bucket string, useSSL bool) string {
	ep := normalizeEndpoint(endpoint, useSSL)
	parsed, err := url.Parse(ep)
	if err != nil {
		return strings.TrimSuffix(ep, "/") + "/" + bucket
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/" + bucket
	return parsed.String()
}
