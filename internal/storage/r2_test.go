package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lumio_social/internal/config"
	"lumio_social/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		R2AccountID:       "account",
		R2AccessKeyID:     "AKIDEXAMPLE",
		R2SecretAccessKey: "secret",
		R2BucketName:      "lumio",
		R2PublicURL:       "https://media.example.com/",
	}
}

func TestNewR2Bucket_Disabled(t *testing.T) {
	_, err := NewR2Bucket(context.Background(), &config.Config{R2AccountID: "only-this"})
	if !errors.Is(err, model.ErrMediaDisabled) {
		t.Fatalf("Expected ErrMediaDisabled, got: %v", err)
	}
}

func TestBucket_PresignPut(t *testing.T) {
	b, err := NewR2Bucket(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewR2Bucket: %v", err)
	}

	url, err := b.PresignPut(context.Background(), "images/abc/x.png", model.ContentTypePNG, 2048, 5*time.Minute)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}
	if !strings.HasPrefix(url, "https://account.r2.cloudflarestorage.com/lumio/images/abc/x.png?") {
		t.Errorf("url = %q, want path-style R2 endpoint", url)
	}
	if !strings.Contains(url, "X-Amz-Signature=") || !strings.Contains(url, "X-Amz-Expires=300") {
		t.Errorf("url is not presigned for 5 minutes: %q", url)
	}
}

func TestBucket_URL(t *testing.T) {
	b, _ := NewR2Bucket(context.Background(), testConfig())

	if got := b.URL("avatars/k.jpg"); got != "https://media.example.com/avatars/k.jpg" {
		t.Errorf("URL = %q", got)
	}
}
