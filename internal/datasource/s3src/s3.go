// Package s3src implements a datasource.Catalog over the CSV objects under an
// S3 (or S3-compatible, e.g. R2/MinIO) bucket prefix.
package s3src

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mfonekpo/springer-capital/internal/datasource"
)

// Config selects the bucket and how to reach it.
type Config struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint overrides the service endpoint for S3-compatible stores. Path
	// style addressing is enabled when set.
	Endpoint string
	// AccessKeyID/SecretAccessKey switch to static credentials; when empty the
	// default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// API is the subset of *s3.Client used by Bucket.
type API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Bucket lists and opens CSV objects under one prefix.
type Bucket struct {
	api    API
	bucket string
	prefix string
}

var _ datasource.Catalog = (*Bucket)(nil)

// New builds an S3 client from cfg and returns a catalog over its prefix.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3src: bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3src: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithAPI(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, bucket, prefix string) *Bucket {
	return &Bucket{api: api, bucket: bucket, prefix: prefix}
}

// List pages through the prefix and returns its .csv objects sorted by key.
func (b *Bucket) List(ctx context.Context) ([]datasource.Object, error) {
	p := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})

	var out []datasource.Object
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3src: list s3://%s/%s: %w", b.bucket, b.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !datasource.IsCSV(key) {
				continue
			}
			out = append(out, datasource.Object{Key: key, Name: datasource.StemOf(key)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Open fetches one object. The caller closes the returned body.
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	res, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3src: get s3://%s/%s: %w", b.bucket, key, err)
	}
	return res.Body, nil
}
