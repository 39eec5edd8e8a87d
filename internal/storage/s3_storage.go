package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ikkim/cartcore-backend/config"
	"github.com/ikkim/cartcore-backend/pkg/logger"
)

// S3Storage resolves product thumbnail keys stored in an S3 bucket.
type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
	baseURL string
	expiry  time.Duration
}

func NewS3Storage(ctx context.Context, cfg *config.S3Config) (*S3Storage, error) {
	var awsCfg aws.Config

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = loaded
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	logger.Info("S3 thumbnail storage configured", map[string]interface{}{
		"bucket":   cfg.Bucket,
		"region":   cfg.Region,
		"base_url": cfg.BaseURL,
	})

	return &S3Storage{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		expiry:  expiry,
	}, nil
}

// ThumbnailURL returns a loadable URL for key. Absolute URLs pass through;
// with a base URL (CloudFront or public bucket) the key is appended to it,
// otherwise a presigned GET URL is issued.
func (s *S3Storage) ThumbnailURL(ctx context.Context, key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	key = strings.TrimLeft(key, "/")

	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign thumbnail %q: %w", key, err)
	}
	return req.URL, nil
}
