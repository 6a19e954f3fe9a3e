package planstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ab0utbla-k/cloudwatch-alarm-reconciler/internal/plan"
)

// S3API defines the S3 operations required for plan transport.
type S3API interface {
	GetObject(
		ctx context.Context,
		input *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)

	PutObject(
		ctx context.Context,
		input *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the plan in an S3 object.
type S3Store struct {
	client S3API
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Store creates an S3Store for the given bucket and key.
func NewS3Store(client S3API, bucket, key string, logger *slog.Logger) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger,
	}
}

func (s *S3Store) Load(ctx context.Context) (*plan.Plan, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, s.key)
		}
		return nil, fmt.Errorf("cannot get plan s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	p, err := plan.Decode(out.Body, s.logger)
	if err != nil {
		return nil, fmt.Errorf("cannot decode plan s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return p, nil
}

func (s *S3Store) Save(ctx context.Context, p *plan.Plan) error {
	var buf bytes.Buffer
	if err := plan.Encode(&buf, p); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("cannot put plan s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
