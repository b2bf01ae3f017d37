// Package storage puts files into S3-compatible object storage and hands out
// presigned download links. The portal stores admin shipment exports here.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrNotConfigured = errors.New("storage: not configured")
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrInvalidKey    = errors.New("storage: invalid key")
	ErrNotFound      = errors.New("storage: object not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrPresignFailed = errors.New("storage: presign failed")
)

// DefaultURLExpiry is the lifetime of presigned links.
const DefaultURLExpiry = 15 * time.Minute

// Config is read from the environment. An empty bucket disables storage.
type Config struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
}

func (c Config) Enabled() bool { return c.Bucket != "" }

func (c Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("%w: bucket, access key and secret key are required", ErrInvalidConfig)
	}
	return nil
}

// Object describes a stored file.
type Object struct {
	Key         string
	ContentType string
	Size        int64
}

// Storage is the subset of object storage the portal needs.
type Storage interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (*Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a presigned GET link that saves as filename.
	DownloadURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
}

// S3 implements Storage on the AWS SDK.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New builds an S3 client with static credentials. Endpoint and PathStyle
// select S3-compatible services such as MinIO.
func New(cfg Config) (*S3, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})
	return &S3{client: client, presign: s3.NewPresignClient(client), bucket: cfg.Bucket}, nil
}

func (s *S3) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (*Object, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return nil, classify(err, ErrUploadFailed)
	}
	return &Object{Key: key, ContentType: contentType, Size: size}, nil
}

func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, classify(err, ErrNotFound)
	}
	return out.Body, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return classify(err, ErrDeleteFailed)
	}
	return nil
}

func (s *S3) DownloadURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	in := &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}
	if filename != "" {
		in.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", filename))
	}
	req, err := s.presign.PresignGetObject(ctx, in, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", classify(err, ErrPresignFailed)
	}
	return req.URL, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9\-_./]`)

// CleanKey normalizes key into a relative slash-separated path without
// traversal segments or unsafe characters.
func CleanKey(key string) (string, error) {
	key = unsafeKeyChars.ReplaceAllString(strings.TrimSpace(key), "_")
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

// classify maps SDK errors onto package sentinels; fallback covers the rest.
func classify(err, fallback error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

var _ Storage = (*S3)(nil)
