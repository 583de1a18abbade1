package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"arango-etl/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// S3Store lists and fetches ingest files from an S3 bucket. All remote calls
// go through the same retry loop so transient failures don't bubble up as
// run-fatal discovery errors.
type S3Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	stream   string
	retryCfg config.RetryConfig
}

// NewS3Store establishes an S3 client for the configured bucket. A custom
// endpoint switches the client to path-style addressing when requested, which
// minio and localstack need.
func NewS3Store(ctx context.Context, cfg config.S3Config, stream string, retryCfg config.RetryConfig) (*S3Store, error) {
	if retryCfg.Attempts == 0 {
		retryCfg.Attempts = 3
	}
	if retryCfg.DelayMS == 0 {
		retryCfg.DelayMS = 1500
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   prefix,
		stream:   stream,
		retryCfg: retryCfg,
	}, nil
}

// List walks the bucket from just before the predicate's start and returns
// every descriptor whose embedded timestamp matches. Keys that don't parse
// are logged and skipped; a failed listing call is returned to the caller.
func (s *S3Store) List(ctx context.Context, p Predicate) ([]FileDescriptor, error) {
	// Keys embed fixed-width millisecond timestamps, so lexicographic object
	// order tracks time order and StartAfter can seek close to the window.
	startAfter := s.prefix + Key(s.stream, p.Start().Add(-time.Millisecond))

	var (
		files []FileDescriptor
		token *string
	)

	for {
		out, err := s.listPage(ctx, startAfter, token)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", s.bucket, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			fd, err := ParseKey(key)
			if err != nil {
				logrus.Warnf("skipping unparseable object key | key=%s err=%v", key, err)
				continue
			}
			if !p.Contains(fd.Timestamp) {
				continue
			}
			fd.Size = aws.ToInt64(obj.Size)
			files = append(files, fd)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return files, nil
}

func (s *S3Store) listPage(ctx context.Context, startAfter string, token *string) (*s3.ListObjectsV2Output, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:            aws.String(s.bucket),
		Prefix:            aws.String(s.prefix + s.stream + "."),
		StartAfter:        aws.String(startAfter),
		ContinuationToken: token,
	}

	var (
		out *s3.ListObjectsV2Output
		err error
	)
	for attempt := 1; attempt <= s.retryCfg.Attempts; attempt++ {
		out, err = s.client.ListObjectsV2(ctx, input)
		if err == nil {
			return out, nil
		}

		logrus.Warnf("ListObjectsV2 failed (attempt %d/%d): %v", attempt, s.retryCfg.Attempts, err)

		if attempt < s.retryCfg.Attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(s.retryCfg.DelayMS) * time.Millisecond):
			}
		}
	}
	return nil, err
}

// Fetch downloads one object with retry logic and returns its raw bytes.
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retryCfg.Attempts; attempt++ {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			data, err := io.ReadAll(out.Body)
			out.Body.Close()
			if err == nil {
				return data, nil
			}
			lastErr = err
		} else {
			lastErr = err
		}

		logrus.Warnf("GetObject failed (attempt %d/%d) | key=%s err=%v", attempt, s.retryCfg.Attempts, key, lastErr)

		if attempt < s.retryCfg.Attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(s.retryCfg.DelayMS) * time.Millisecond):
			}
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", key, lastErr)
}
