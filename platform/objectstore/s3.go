package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3 struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3 loads the default AWS credential chain. S3_ENDPOINT points the
// client at a local S3-compatible service and switches to path-style URLs.
func NewS3(ctx context.Context, bucket, region, publicBaseURL string) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("objectstore: S3_BUCKET is required for s3 mode")
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("objectstore: aws config: %w", err)
	}

	endpoint := strings.TrimSpace(os.Getenv("S3_ENDPOINT"))
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	base := publicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3{client: client, bucket: bucket, baseURL: base}, nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("objectstore: s3 put %s: %w", key, err)
	}
	return joinURL(s.baseURL, key), nil
}
