package keys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/blinkdrive/blinkauth/internal/common"
)

// ObjectStore is the part of *s3.Client the S3 source needs.
type ObjectStore interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Settings locate the key object in an S3-compatible store.
type S3Settings struct {
	Bucket       string
	Object       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3 keeps the signing key as an object. When the object does not exist yet a
// new random key is generated and uploaded, so every later start reuses it.
type S3 struct {
	client ObjectStore
	bucket string
	object string
}

func NewS3(client ObjectStore, bucket, object string) *S3 {
	return &S3{client: client, bucket: bucket, object: object}
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Client builds an *s3.Client for MinIO-style endpoints with static
// credentials and path-style addressing.
func NewS3Client(ctx context.Context, st S3Settings) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(st.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(st.AccessKey, st.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if st.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(st.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

func (s *S3) Key(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.object),
	})
	if err == nil {
		defer out.Body.Close()
		raw, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, fmt.Errorf("read signing key object: %w", err)
		}
		defer common.WipeByteArray(raw)
		return Static{Secret: raw}.Key(ctx)
	}
	if !isNoSuchKey(err) {
		return nil, fmt.Errorf("fetch signing key object: %w", err)
	}

	key, err := Ephemeral{}.Key(ctx)
	if err != nil {
		return nil, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.object),
		Body:        bytes.NewReader(key),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return nil, fmt.Errorf("store signing key object: %w", err)
	}
	return key, nil
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}
