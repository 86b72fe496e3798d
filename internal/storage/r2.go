package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"vodworks/internal/config"
)

// R2Adapter talks to Cloudflare R2 through its S3-compatible API.
type R2Adapter struct {
	client *s3.S3
	bucket string
}

// NewR2 creates a new R2 storage adapter.
func NewR2(cfg *config.Config) (*R2Adapter, error) {
	sc := cfg.Storage
	if sc.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for R2 storage")
	}
	if sc.AccessKey == "" || sc.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required for R2 storage")
	}
	if sc.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for R2 storage")
	}

	region := sc.Region
	if region == "" {
		region = "auto"
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(sc.AccessKey, sc.SecretKey, ""),
		Endpoint:         aws.String(sc.Endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 session: %w", err)
	}

	return &R2Adapter{client: s3.New(sess), bucket: sc.Bucket}, nil
}

func (a *R2Adapter) Kind() Kind { return KindR2 }

func (a *R2Adapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) {
			switch aerr.Code() {
			case s3.ErrCodeNoSuchKey, "NotFound":
				return false, nil
			}
		}
		return false, fmt.Errorf("head object %s: %w", key, err)
	}
	return true, nil
}

func (a *R2Adapter) GetBuffer(ctx context.Context, key string) ([]byte, error) {
	out, err := a.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

func (a *R2Adapter) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := a.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

var _ Adapter = (*R2Adapter)(nil)
