package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"dmchat/internal/pkg/logx"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client implements ObjectStore against S3-compatible storage.
type s3Client struct {
	cfg      ServiceConfig
	baseURL  string
	s3Client *s3.Client
	uploader *manager.Uploader
}

// newS3Client initializes the S3 client using a custom configuration that supports S3-compatible endpoints.
func newS3Client(ctx context.Context, cfg ServiceConfig) (*s3Client, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client configuration: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Client{
		cfg:      cfg,
		baseURL:  publicBase(cfg),
		s3Client: client,
		uploader: manager.NewUploader(client),
	}, nil
}

func publicBase(cfg ServiceConfig) string {
	if cfg.S3PublicBaseURL != "" {
		return strings.TrimRight(cfg.S3PublicBaseURL, "/")
	}
	return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3BucketName
}

// Store uploads body under key and returns its public URL.
func (c *s3Client) Store(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.S3BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload of %s failed: %w", key, err)
	}

	return c.baseURL + "/" + key, nil
}

// Delete removes the file specified by the given key from the bucket.
func (c *s3Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	})

	if err != nil {
		logx.Warn("S3 delete failed", "key", key, "error", err.Error())
		return fmt.Errorf("s3 delete of %s failed: %w", key, err)
	}

	return nil
}

// KeyFromURL strips the public base from publicURL.
func (c *s3Client) KeyFromURL(publicURL string) (string, bool) {
	prefix := c.baseURL + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}

	key, err := url.PathUnescape(strings.TrimPrefix(publicURL, prefix))
	if err != nil || key == "" {
		return "", false
	}

	return key, true
}
