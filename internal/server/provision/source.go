package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
)

// S3Settings locate an S3 (or MinIO) endpoint. Empty keys fall back to
// the default AWS credential chain.
type S3Settings struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
}

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Getter = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

func parseS3URL(source string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(source, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 source must look like s3://bucket/key, got %q", common.ErrInvalidSeed, source)
	}
	return bucket, key, nil
}

func s3Client(ctx context.Context, settings S3Settings) (objectGetter, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(settings.Region)}
	if settings.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKey,
			settings.SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3Getter(cfg, func(o *s3.Options) {
		if settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ReadSource returns the raw seed from a local path or s3://bucket/key.
func ReadSource(ctx context.Context, source string, settings S3Settings) ([]byte, error) {
	if !strings.HasPrefix(source, "s3://") {
		return os.ReadFile(source)
	}

	bucket, key, err := parseS3URL(source)
	if err != nil {
		return nil, err
	}

	client, err := s3Client(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", source, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// LoadSeed reads and parses the seed at source.
func LoadSeed(ctx context.Context, source string, settings S3Settings) ([]SeedUser, error) {
	data, err := ReadSource(ctx, source, settings)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}
