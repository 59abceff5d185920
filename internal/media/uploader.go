package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Imohh/portfolio-backend/internal/config"
)

// Uploader externalizes an inline embedded image to durable storage and
// returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, dataURI string) (string, error)
}

// ObjectPutter is the slice of the S3 API the uploader needs. *s3.Client
// satisfies it.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client  ObjectPutter
	bucket  string
	baseURL string
}

func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			// Custom endpoint for S3-compatible backends (e.g. MinIO).
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimRight(cfg.S3PublicBaseURL, "/"),
	}, nil
}

// NewS3UploaderWithClient wires a caller-supplied client; tests use it to
// substitute a fake.
func NewS3UploaderWithClient(client ObjectPutter, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *S3Uploader) Upload(ctx context.Context, folder, dataURI string) (string, error) {
	contentType, data, err := ParseDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("parse data URI: %w", err)
	}

	key := folder + "/" + uuid.New().String() + "." + extFromContentType(contentType)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return u.baseURL + "/" + key, nil
}
