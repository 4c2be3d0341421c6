package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/codeGROOVE-dev/retry"
)

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Object   string `toml:"object"`
	Endpoint string `toml:"endpoint"`
}

// ObjectAPI is the part of the S3 client the backend needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SpacesBackend keeps the document as one object in a DigitalOcean Spaces (or any S3) bucket.
type SpacesBackend struct {
	client ObjectAPI
	bucket string
	key    string
}

func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*s3.Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: endpoint}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load spaces config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewSpacesBackend(client ObjectAPI, bucket, key string) *SpacesBackend {
	if key == "" {
		key = "slotbot/database.json"
	}
	return &SpacesBackend{
		client: client,
		bucket: bucket,
		key:    strings.TrimPrefix(key, "/"),
	}
}

func (b *SpacesBackend) Name() string { return "spaces:" + b.bucket + "/" + b.key }

func (b *SpacesBackend) Read(ctx context.Context) ([]byte, error) {
	var (
		data     []byte
		notFound bool
	)
	err := retry.Do(
		func() error {
			out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(b.bucket),
				Key:    aws.String(b.key),
			})
			if err != nil {
				var nsk *types.NoSuchKey
				if errors.As(err, &nsk) {
					notFound = true
					return retry.Unrecoverable(ErrNotExist)
				}
				return fmt.Errorf("get object: %w", err)
			}
			defer out.Body.Close()

			data, err = io.ReadAll(out.Body)
			if err != nil {
				return fmt.Errorf("read object body: %w", err)
			}
			return nil
		},
		b.retryOptions(ctx, "read")...,
	)
	if notFound {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("load after retries: %w", err)
	}
	return data, nil
}

func (b *SpacesBackend) Write(ctx context.Context, data []byte) error {
	err := retry.Do(
		func() error {
			_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(b.bucket),
				Key:         aws.String(b.key),
				Body:        bytes.NewReader(data),
				ContentType: aws.String("application/json"),
				ACL:         types.ObjectCannedACLPrivate,
			})
			if err != nil {
				return fmt.Errorf("put object: %w", err)
			}
			return nil
		},
		b.retryOptions(ctx, "write")...,
	)
	if err != nil {
		return fmt.Errorf("save after retries: %w", err)
	}
	return nil
}

func (b *SpacesBackend) retryOptions(ctx context.Context, op string) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10 * time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying store operation after error",
				slog.String("type", "db"),
				slog.String("op", op),
				slog.Uint64("attempt", uint64(n)),
				slog.String("key", b.key),
				slog.Any("error", err))
		}),
	}
}
