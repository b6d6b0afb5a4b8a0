// Package storage writes Parquet objects to S3 and enumerates the bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/laranjao/datalake-etl/internal/config"
)

const parquetContentType = "application/vnd.apache.parquet"

type uploaderAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type listAPI interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// Client uploads objects to a single bucket and lists its contents.
type Client struct {
	bucket   string
	prefix   string
	uploader uploaderAPI
	s3       listAPI
}

// New builds a Client from the pipeline configuration. Placeholder
// credentials fall back to the SDK's default credential chain.
func New(cfg *config.Config) (*Client, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.HasStaticCredentials() {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &Client{
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		uploader: s3manager.NewUploader(sess),
		s3:       s3.New(sess),
	}, nil
}

// Bucket returns the destination bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectKey returns the bucket key for a given year's Parquet file,
// e.g. "bronze/dados_2015.parquet".
func (c *Client) ObjectKey(year string) string {
	if c.prefix == "" {
		return fmt.Sprintf("dados_%s.parquet", year)
	}
	return fmt.Sprintf("%s/dados_%s.parquet", c.prefix, year)
}

// Upload writes body to the year's object key, overwriting any existing
// object. It returns the key written.
func (c *Client) Upload(ctx context.Context, year string, body []byte) (string, error) {
	key := c.ObjectKey(year)

	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(parquetContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", c.bucket, key, err)
	}

	return key, nil
}

// List returns all object keys currently in the bucket, sorted.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var keys []string

	err := c.s3.ListObjectsV2PagesWithContext(ctx,
		&s3.ListObjectsV2Input{Bucket: aws.String(c.bucket)},
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				keys = append(keys, aws.StringValue(obj.Key))
			}
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("list s3://%s: %w", c.bucket, err)
	}

	sort.Strings(keys)
	return keys, nil
}
