package ml

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

const s3Scheme = "s3://"

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArtifactStore reads and writes model artifacts addressed by a local path or an s3://bucket/key URI.
type ArtifactStore struct {
	awsCfg *config.AWSConfig
	logger logger.Logger

	once   sync.Once
	client objectAPI
	err    error
}

// NewArtifactStore creates a store. The S3 client is only built when an s3:// URI is used.
func NewArtifactStore(awsCfg *config.AWSConfig, log logger.Logger) *ArtifactStore {
	return &ArtifactStore{awsCfg: awsCfg, logger: log.WithComponent("artifact-store")}
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func (s *ArtifactStore) s3Client(ctx context.Context) (objectAPI, error) {
	s.once.Do(func() {
		if s.client != nil {
			return
		}
		var opts []func(*awsconfig.LoadOptions) error
		if s.awsCfg != nil && s.awsCfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s.awsCfg.Region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			s.err = errors.ErrUnavailable.WithMessage("unable to load AWS SDK config").WithCause(err)
			return
		}
		o := s3.Options{
			Region:       cfg.Region,
			Credentials:  cfg.Credentials,
			HTTPClient:   cfg.HTTPClient,
			BaseEndpoint: cfg.BaseEndpoint,
		}
		if s.awsCfg != nil {
			if s.awsCfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.awsCfg.Endpoint)
			}
			o.UsePathStyle = s.awsCfg.UsePathStyle
		}
		s.client = s3.New(o)
	})
	return s.client, s.err
}

// Read returns the bytes stored at uri.
func (s *ArtifactStore) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, isS3 := ParseS3URI(uri)
	if !isS3 {
		data, err := os.ReadFile(uri)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.ErrModel.WithMessage("artifact not found: " + uri).WithCause(err)
			}
			return nil, errors.Storage("read artifact", err)
		}
		return data, nil
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to fetch artifact from S3", err, logger.Fields{"bucket": bucket, "key": key})
		return nil, errors.Storage("fetch artifact", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Storage("read artifact body", err)
	}
	s.logger.Info(ctx, "Artifact fetched from S3", logger.Fields{"bucket": bucket, "key": key, "bytes": len(data)})
	return data, nil
}

// Write stores data at uri, creating parent directories for local paths.
func (s *ArtifactStore) Write(ctx context.Context, uri string, data []byte) error {
	bucket, key, isS3 := ParseS3URI(uri)
	if !isS3 {
		if err := os.MkdirAll(filepath.Dir(uri), 0o755); err != nil {
			return errors.Storage("create artifact directory", err)
		}
		if err := os.WriteFile(uri, data, 0o644); err != nil {
			return errors.Storage("write artifact", err)
		}
		return nil
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to upload artifact to S3", err, logger.Fields{"bucket": bucket, "key": key})
		return errors.Storage("upload artifact", err)
	}
	s.logger.Info(ctx, "Artifact uploaded to S3", logger.Fields{"bucket": bucket, "key": key, "bytes": len(data)})
	return nil
}

// LoadArtifact reads and validates the pipeline stored at uri.
func (s *ArtifactStore) LoadArtifact(ctx context.Context, uri string) (*Pipeline, error) {
	data, err := s.Read(ctx, uri)
	if err != nil {
		return nil, err
	}
	return LoadPipeline(bytes.NewReader(data))
}

// SaveArtifact serializes p to uri.
func (s *ArtifactStore) SaveArtifact(ctx context.Context, uri string, p *Pipeline) error {
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		return err
	}
	return s.Write(ctx, uri, buf.Bytes())
}
