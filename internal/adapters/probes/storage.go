package probes

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/equihire/equihire-core/internal/core"
)

// BucketHeader is the subset of *s3.Client the storage probe uses.
type BucketHeader interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// StorageConfig locates an S3-compatible bucket (Cloudflare R2 in production).
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// StorageProbe checks that the CV bucket exists and the credentials can reach it.
type StorageProbe struct {
	client BucketHeader
	bucket string
}

var _ core.IntegrationProbe = (*StorageProbe)(nil)

// NewStorageProbe builds an S3 client for R2. Incomplete configuration yields a probe that reports "not configured".
func NewStorageProbe(ctx context.Context, cfg StorageConfig) (*StorageProbe, error) {
	if cfg.Bucket == "" || cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return &StorageProbe{}, nil
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return NewStorageProbeWithClient(client, cfg.Bucket), nil
}

// NewStorageProbeWithClient wraps an existing client (useful for tests).
func NewStorageProbeWithClient(client BucketHeader, bucket string) *StorageProbe {
	return &StorageProbe{client: client, bucket: bucket}
}

func (p *StorageProbe) Info() core.ProbeInfo { return StorageInfo }

func (p *StorageProbe) Check(ctx context.Context) core.ProbeResult {
	if p.client == nil || p.bucket == "" {
		return notConfigured()
	}
	out, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)})
	if err != nil {
		return failure("head bucket", err)
	}
	if out == nil {
		return failure("head bucket", errors.New("empty response"))
	}

	region := aws.ToString(out.BucketRegion)
	if region == "" {
		region = "auto"
	}
	return connected("bucket reachable",
		metric("Bucket", p.bucket),
		metric("Region", region),
	)
}
