// utils/r2.go
package utils

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of the S3 client the bucket source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// CatalogBucket reads the catalog bundle from a Cloudflare R2 bucket.
type CatalogBucket struct {
	client ObjectGetter
	bucket string
	key    string
}

// R2Config addresses the bundle object.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Key             string
}

func NewCatalogBucket(ctx context.Context, rc R2Config) (*CatalogBucket, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			rc.AccessKeyID, rc.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", rc.AccountID))
	})
	return NewCatalogBucketWithClient(client, rc.Bucket, rc.Key), nil
}

func NewCatalogBucketWithClient(client ObjectGetter, bucket, key string) *CatalogBucket {
	return &CatalogBucket{client: client, bucket: bucket, key: key}
}

// Open streams the bundle object. The caller closes the body.
func (b *CatalogBucket) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return out.Body, nil
}
