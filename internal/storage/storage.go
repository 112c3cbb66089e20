// Package storage fetches uploaded resume documents from an S3-compatible
// object store. Cloudflare R2 works through the same API behind a custom
// endpoint.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config carries the connection settings for one bucket. Endpoint overrides
// the AWS default for S3-compatible providers; R2 uses
// https://<account>.r2.cloudflarestorage.com. Empty credentials fall back to
// the ambient AWS credential chain.
type Config struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

// Configured reports whether an object store is set up at all. Deployments
// without one simply cannot resolve resume keys.
func (c Config) Configured() bool {
	return c.Bucket != ""
}

// S3Store resolves object keys to document bytes.
type S3Store struct {
	client *s3.Client
	bucket string
}

// New builds a store over cfg's bucket.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage requires a bucket name")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Fetch downloads the object at key and returns its bytes along with the
// bare filename derived from the key.
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("fetching object %q: %w", key, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, "", fmt.Errorf("reading object %q: %w", key, err)
	}
	return buf.Bytes(), path.Base(key), nil
}
