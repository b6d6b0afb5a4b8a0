package storage

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laranjao/datalake-etl/internal/config"
)

type fakeUploader struct {
	inputs []*s3manager.UploadInput
	bodies [][]byte
	err    error
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &s3manager.UploadOutput{}, nil
}

type fakeLister struct {
	pages [][]string
	err   error
}

func (f *fakeLister) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	if f.err != nil {
		return f.err
	}
	for i, page := range f.pages {
		out := &s3.ListObjectsV2Output{}
		for _, key := range page {
			out.Contents = append(out.Contents, &s3.Object{Key: aws.String(key)})
		}
		if !fn(out, i == len(f.pages)-1) {
			break
		}
	}
	return nil
}

func testClient(up uploaderAPI, ls listAPI) *Client {
	return &Client{bucket: "laranjao-datalakeaws", prefix: "bronze", uploader: up, s3: ls}
}

func TestObjectKey(t *testing.T) {
	c := testClient(nil, nil)
	assert.Equal(t, "bronze/dados_2015.parquet", c.ObjectKey("2015"))

	c.prefix = ""
	assert.Equal(t, "dados_2015.parquet", c.ObjectKey("2015"))
}

func TestUpload(t *testing.T) {
	up := &fakeUploader{}
	c := testClient(up, nil)

	key, err := c.Upload(context.Background(), "2017", []byte("parquet-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "bronze/dados_2017.parquet", key)
	require.Len(t, up.inputs, 1)
	assert.Equal(t, "laranjao-datalakeaws", aws.StringValue(up.inputs[0].Bucket))
	assert.Equal(t, "bronze/dados_2017.parquet", aws.StringValue(up.inputs[0].Key))
	assert.Equal(t, []byte("parquet-bytes"), up.bodies[0])
}

func TestUploadError(t *testing.T) {
	up := &fakeUploader{err: assert.AnError}
	c := testClient(up, nil)

	_, err := c.Upload(context.Background(), "2017", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestListPaginatesAndSorts(t *testing.T) {
	ls := &fakeLister{pages: [][]string{
		{"bronze/dados_2016.parquet", "bronze/dados_2015.parquet"},
		{"bronze/dados_2020.parquet"},
	}}
	c := testClient(nil, ls)

	keys, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bronze/dados_2015.parquet",
		"bronze/dados_2016.parquet",
		"bronze/dados_2020.parquet",
	}, keys)
}

func TestListError(t *testing.T) {
	c := testClient(nil, &fakeLister{err: assert.AnError})
	_, err := c.List(context.Background())
	require.Error(t, err)
}

func TestNewUsesDefaultChainForPlaceholderCreds(t *testing.T) {
	cfg := &config.Config{
		Bucket:          "laranjao-datalakeaws",
		Region:          "us-east-2",
		AccessKeyID:     config.PlaceholderAccessKeyID,
		SecretAccessKey: config.PlaceholderSecretAccessKey,
		Prefix:          "bronze",
	}

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "laranjao-datalakeaws", c.Bucket())
}
