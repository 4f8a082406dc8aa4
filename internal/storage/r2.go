// Package storage talks to the S3-compatible bucket (Cloudflare R2) that
// holds post images and avatars.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lumio_social/internal/config"
	"lumio_social/internal/model"
)

// Bucket is one R2 bucket plus the public origin that serves it.
type Bucket struct {
	client    *s3.Client
	presign   *s3.PresignClient
	name      string
	publicURL string
}

// NewR2Bucket builds a bucket client from cfg. It returns
// model.ErrMediaDisabled when any R2 setting is missing.
func NewR2Bucket(ctx context.Context, cfg *config.Config) (*Bucket, error) {
	if !cfg.MediaEnabled() {
		return nil, model.ErrMediaDisabled
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://" + cfg.R2AccountID + ".r2.cloudflarestorage.com")
		o.UsePathStyle = true
	})
	return &Bucket{
		client:    client,
		presign:   s3.NewPresignClient(client),
		name:      cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// URL is the public address of key.
func (b *Bucket) URL(key string) string {
	return b.publicURL + "/" + key
}

func (b *Bucket) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.name),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PresignPut signs a PUT for key. A positive size is bound into the
// signature so the client cannot upload more.
func (b *Bucket) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	req, err := b.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
